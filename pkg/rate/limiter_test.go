package rate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestNoLimiter(t *testing.T) {
	l := &NoLimiter{}
	for i := 0; i < 10000; i++ {
		allowed, err := l.Allow("")
		assert.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestLocalRateLimiter(t *testing.T) {
	now := time.Now()

	l := NewLocalRateLimiter(rate.Limit(2))
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		allowed, err := l.Allow("a")
		assert.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := l.Allow("a")
	assert.NoError(t, err)
	assert.False(t, allowed)

	// Ensure key partitioning is valid
	for i := 0; i < 2; i++ {
		allowed, err := l.Allow("b")
		assert.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err = l.Allow("b")
	assert.NoError(t, err)
	assert.False(t, allowed)

	now = now.Add(time.Second)
	allowed, err = l.Allow("a")
	assert.NoError(t, err)
	assert.True(t, allowed)
}

func TestLocalRateLimiter_FractionalRate(t *testing.T) {
	now := time.Now()

	l := NewLocalRateLimiter(rate.Limit(0.5))
	l.now = func() time.Time { return now }

	allowed, _ := l.Allow("a")
	assert.True(t, allowed)

	allowed, _ = l.Allow("a")
	assert.False(t, allowed)

	now = now.Add(2 * time.Second)
	allowed, _ = l.Allow("a")
	assert.True(t, allowed)
}

func TestLocalRateLimiter_Prune(t *testing.T) {
	now := time.Now()

	l := NewLocalRateLimiterWithBurst(rate.Limit(1), 1)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(time.Minute)
	l.Allow("b")
	assert.Equal(t, 2, l.Size())

	assert.Equal(t, 1, l.Prune(30*time.Second))
	assert.Equal(t, 1, l.Size())

	// b is still tracked, so its bucket remains empty
	allowed, _ := l.Allow("b")
	assert.False(t, allowed)

	// a starts over with a full bucket
	allowed, _ = l.Allow("a")
	assert.True(t, allowed)
}
