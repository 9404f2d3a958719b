package binary

import (
	"crypto/ed25519"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldHelpers_RoundTrip(t *testing.T) {
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	for i := range key {
		key[i] = byte(i)
	}
	optional := uint64(42)

	buf := make([]byte, 32+8+8+4+1+1+(4+32)+(4+8))

	var offset int
	PutKey32(buf[offset:], key, &offset)
	PutUint64(buf[offset:], math.MaxUint64, &offset)
	PutInt64(buf[offset:], -1700000000, &offset)
	PutUint32(buf[offset:], 7, &offset)
	PutUint8(buf[offset:], 254, &offset)
	PutBool(buf[offset:], true, &offset)
	PutOptionalKey32(buf[offset:], key, &offset, 4)
	PutOptionalUint64(buf[offset:], &optional, &offset, 4)
	require.Equal(t, len(buf), offset)

	var (
		actualKey      ed25519.PublicKey
		actualU64      uint64
		actualI64      int64
		actualU32      uint32
		actualU8       uint8
		actualBool     bool
		actualOptKey   ed25519.PublicKey
		actualOptional *uint64
	)

	offset = 0
	GetKey32(buf[offset:], &actualKey, &offset)
	GetUint64(buf[offset:], &actualU64, &offset)
	GetInt64(buf[offset:], &actualI64, &offset)
	GetUint32(buf[offset:], &actualU32, &offset)
	GetUint8(buf[offset:], &actualU8, &offset)
	GetBool(buf[offset:], &actualBool, &offset)
	GetOptionalKey32(buf[offset:], &actualOptKey, &offset, 4)
	GetOptionalUint64(buf[offset:], &actualOptional, &offset, 4)
	require.Equal(t, len(buf), offset)

	assert.EqualValues(t, key, actualKey)
	assert.EqualValues(t, uint64(math.MaxUint64), actualU64)
	assert.EqualValues(t, -1700000000, actualI64)
	assert.EqualValues(t, 7, actualU32)
	assert.EqualValues(t, 254, actualU8)
	assert.True(t, actualBool)
	assert.EqualValues(t, key, actualOptKey)
	require.NotNil(t, actualOptional)
	assert.EqualValues(t, 42, *actualOptional)
}

func TestGetBool(t *testing.T) {
	var offset int
	var v bool

	GetBool([]byte{0}, &v, &offset)
	assert.False(t, v)

	GetBool([]byte{2}, &v, &offset)
	assert.True(t, v)
	assert.Equal(t, 2, offset)
}
