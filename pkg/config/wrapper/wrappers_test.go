package wrapper

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solexplorer/staking-server/pkg/config"
	"github.com/solexplorer/staking-server/pkg/config/memory"
)

func TestValueConfig_Fallbacks(t *testing.T) {
	ctx := context.Background()
	source := memory.NewConfig(nil)
	c := NewUint64Config(source, 6)

	// Unset sources yield the default
	val, err := c.GetSafe(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 6, val)

	source.SetValue(uint64(9))
	assert.EqualValues(t, 9, c.Get(ctx))

	// Source errors yield the last observed value
	source.SetError(errors.New("induced"))
	val, err = c.GetSafe(ctx)
	assert.Error(t, err)
	assert.EqualValues(t, 9, val)
	assert.EqualValues(t, 9, c.Get(ctx))

	// So do conversion errors
	source.SetError(nil)
	source.SetValue([]byte("nine"))
	val, err = c.GetSafe(ctx)
	assert.Error(t, err)
	assert.EqualValues(t, 9, val)

	source.SetValue("9")
	val, err = c.GetSafe(ctx)
	assert.Equal(t, ErrUnsupportedConversion, err)
	assert.EqualValues(t, 9, val)

	// Clearing the source restores the default
	source.SetValue(nil)
	assert.EqualValues(t, 6, c.Get(ctx))

	c.Shutdown()
	_, err = c.GetSafe(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}

func TestConversions(t *testing.T) {
	for _, tc := range []struct {
		name     string
		convert  func(interface{}) (interface{}, error)
		raw      interface{}
		expected interface{}
		err      bool
	}{
		{"int64 bytes", erase(ToInt64), []byte("-9223372036854775808"), int64(math.MinInt64), false},
		{"int64 padded bytes", erase(ToInt64), []byte(" 5\n"), int64(5), false},
		{"int64 native", erase(ToInt64), int64(7), int64(7), false},
		{"int64 int", erase(ToInt64), 7, int64(7), false},
		{"int64 invalid", erase(ToInt64), []byte("seven"), nil, true},
		{"int64 unsupported", erase(ToInt64), 7.0, nil, true},

		{"uint64 bytes", erase(ToUint64), []byte("18446744073709551615"), uint64(math.MaxUint64), false},
		{"uint64 native", erase(ToUint64), uint64(6), uint64(6), false},
		{"uint64 uint", erase(ToUint64), uint(6), uint64(6), false},
		{"uint64 uint8", erase(ToUint64), uint8(6), uint64(6), false},
		{"uint64 negative", erase(ToUint64), []byte("-1"), nil, true},
		{"uint64 unsupported", erase(ToUint64), 6, nil, true},

		{"float64 bytes", erase(ToFloat64), []byte("0.25"), 0.25, false},
		{"float64 native", erase(ToFloat64), 1.5, 1.5, false},
		{"float64 invalid", erase(ToFloat64), []byte("fast"), nil, true},
		{"float64 unsupported", erase(ToFloat64), float32(1.5), nil, true},

		{"string bytes", erase(ToString), []byte(" https://api.devnet.solana.com "), "https://api.devnet.solana.com", false},
		{"string native", erase(ToString), "value", "value", false},
		{"string unsupported", erase(ToString), 1234, nil, true},

		{"duration bytes", erase(ToDuration), []byte("15s"), 15 * time.Second, false},
		{"duration native", erase(ToDuration), time.Minute, time.Minute, false},
		{"duration invalid", erase(ToDuration), []byte("soon"), nil, true},
		{"duration unsupported", erase(ToDuration), int64(time.Second), nil, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := tc.convert(tc.raw)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestTypedConstructors(t *testing.T) {
	ctx := context.Background()

	assert.EqualValues(t, -1, NewInt64Config(memory.NewConfig(-1), 5).Get(ctx))
	assert.Equal(t, 2.5, NewFloat64Config(memory.NewConfig(2.5), 1).Get(ctx))
	assert.Equal(t, "override", NewStringConfig(memory.NewConfig("override"), "default").Get(ctx))
	assert.Equal(t, time.Minute, NewDurationConfig(memory.NewConfig(time.Minute), time.Second).Get(ctx))
	assert.Equal(t, time.Second, NewDurationConfig(memory.NewConfig(nil), time.Second).Get(ctx))
}

func erase[T any](convert func(interface{}) (T, error)) func(interface{}) (interface{}, error) {
	return func(raw interface{}) (interface{}, error) {
		return convert(raw)
	}
}
