package wrapper

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/solexplorer/staking-server/pkg/config"
)

// ErrUnsupportedConversion indicates the wrapper does not implement conversion from the source type
var ErrUnsupportedConversion = errors.New("config: wrapper conversion from source type not implemented")

// ConvertFunc converts a raw config.Config value into T.
type ConvertFunc[T any] func(raw interface{}) (T, error)

// ValueConfig adapts an untyped config.Config into a config.Value.
//
// An unset source yields the default value. Source or conversion failures
// yield the last successfully observed value alongside the error.
type ValueConfig[T any] struct {
	source       config.Config
	defaultValue T
	convert      ConvertFunc[T]

	stateMu   sync.RWMutex
	lastValue T
}

// New returns a typed wrapper around source.
func New[T any](source config.Config, defaultValue T, convert ConvertFunc[T]) *ValueConfig[T] {
	return &ValueConfig[T]{
		source:       source,
		defaultValue: defaultValue,
		convert:      convert,
		lastValue:    defaultValue,
	}
}

// GetSafe implements config.Value.GetSafe
func (c *ValueConfig[T]) GetSafe(ctx context.Context) (T, error) {
	raw, err := c.source.Get(ctx)
	if err == config.ErrNoValue {
		c.setLastValue(c.defaultValue)
		return c.defaultValue, nil
	} else if err != nil {
		return c.getLastValue(), err
	}

	value, err := c.convert(raw)
	if err != nil {
		return c.getLastValue(), err
	}

	c.setLastValue(value)
	return value, nil
}

// Get implements config.Value.Get
func (c *ValueConfig[T]) Get(ctx context.Context) T {
	val, _ := c.GetSafe(ctx)
	return val
}

// Shutdown implements config.Value.Shutdown
func (c *ValueConfig[T]) Shutdown() {
	c.source.Shutdown()
}

func (c *ValueConfig[T]) getLastValue() T {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.lastValue
}

func (c *ValueConfig[T]) setLastValue(value T) {
	c.stateMu.Lock()
	c.lastValue = value
	c.stateMu.Unlock()
}

// NewInt64Config returns a new int64 config utility wrapper
func NewInt64Config(source config.Config, defaultValue int64) config.Int64 {
	return New(source, defaultValue, ToInt64)
}

// NewUint64Config returns a new uint64 config utility wrapper
func NewUint64Config(source config.Config, defaultValue uint64) config.Uint64 {
	return New(source, defaultValue, ToUint64)
}

// NewFloat64Config returns a new float64 config utility wrapper
func NewFloat64Config(source config.Config, defaultValue float64) config.Float64 {
	return New(source, defaultValue, ToFloat64)
}

// NewStringConfig returns a new string config utility wrapper
func NewStringConfig(source config.Config, defaultValue string) config.String {
	return New(source, defaultValue, ToString)
}

// NewDurationConfig returns a new duration config utility wrapper
func NewDurationConfig(source config.Config, defaultValue time.Duration) config.Duration {
	return New(source, defaultValue, ToDuration)
}

func ToInt64(raw interface{}) (int64, error) {
	switch typed := raw.(type) {
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(typed)), 10, 64)
	case int64:
		return typed, nil
	case int:
		return int64(typed), nil
	default:
		return 0, ErrUnsupportedConversion
	}
}

func ToUint64(raw interface{}) (uint64, error) {
	switch typed := raw.(type) {
	case []byte:
		return strconv.ParseUint(strings.TrimSpace(string(typed)), 10, 64)
	case uint64:
		return typed, nil
	case uint:
		return uint64(typed), nil
	case uint8:
		return uint64(typed), nil
	default:
		return 0, ErrUnsupportedConversion
	}
}

func ToFloat64(raw interface{}) (float64, error) {
	switch typed := raw.(type) {
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(typed)), 64)
	case float64:
		return typed, nil
	default:
		return 0, ErrUnsupportedConversion
	}
}

func ToString(raw interface{}) (string, error) {
	switch typed := raw.(type) {
	case []byte:
		return strings.TrimSpace(string(typed)), nil
	case string:
		return typed, nil
	default:
		return "", ErrUnsupportedConversion
	}
}

func ToDuration(raw interface{}) (time.Duration, error) {
	switch typed := raw.(type) {
	case []byte:
		return time.ParseDuration(strings.TrimSpace(string(typed)))
	case time.Duration:
		return typed, nil
	default:
		return 0, ErrUnsupportedConversion
	}
}
