package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

func TestRateLimiter_PerKeyBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 2, logger.NewNopLogger())
	defer rl.Stop()

	assert.True(t, rl.Allow("ip:1"))
	assert.True(t, rl.Allow("ip:1"))
	assert.False(t, rl.Allow("ip:1"))

	assert.True(t, rl.Allow("ip:2"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, 1, logger.NewNopLogger())
	defer rl.Stop()

	for range 50 {
		assert.True(t, rl.Allow("ip:1"))
	}
}

func TestRateLimiter_CleanupEvictsIdleKeys(t *testing.T) {
	rl := NewRateLimiter(1, 1, logger.NewNopLogger())
	defer rl.Stop()

	assert.True(t, rl.Allow("ip:1"))
	assert.False(t, rl.Allow("ip:1"))

	rl.mu.Lock()
	rl.lastSeen["ip:1"] = time.Now().Add(-time.Hour)
	rl.mu.Unlock()
	rl.cleanup(time.Minute)

	assert.True(t, rl.Allow("ip:1"))
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, 1, logger.NewNopLogger())
	rl.Stop()
	rl.Stop()
}
