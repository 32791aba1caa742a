package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLimiterIsPerKey(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newKeyedLimiter(60, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, l.allow("10.0.0.1"))
}

func TestKeyedLimiterSweepsIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newKeyedLimiter(60, 1)
	l.now = func() time.Time { return now }

	for i := 0; i < limiterSweepSize; i++ {
		l.allow(string(rune('a' + i%26)) + time.Duration(i).String())
	}
	now = now.Add(limiterIdleTTL + time.Second)
	l.allow("fresh")
	assert.Len(t, l.limiters, 1)
}
