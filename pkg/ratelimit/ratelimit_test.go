package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_AllowsBurstThenBlocks(t *testing.T) {
	l := New(3, time.Hour)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("1.2.3.4"), "attempt %d", i+1)
	}
	assert.False(t, l.Allow("1.2.3.4"))
	assert.Greater(t, l.RetryAfterSeconds("1.2.3.4"), 0)

	// Other keys are independent.
	assert.True(t, l.Allow("5.6.7.8"))
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Hour)
	defer l.Stop()

	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))

	l.Reset("k")
	assert.True(t, l.Allow("k"))
	assert.Equal(t, 0, l.RetryAfterSeconds("unknown"))
}

func TestLimiter_CleanupDropsIdleKeys(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	l.Allow("k")
	l.cleanup(time.Now().Add(2 * time.Minute))

	l.mu.Lock()
	_, ok := l.entries["k"]
	l.mu.Unlock()
	assert.False(t, ok)
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := New(1, time.Minute)
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestExtractIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", ExtractIP(r))

	r.RemoteAddr = "10.0.0.8"
	assert.Equal(t, "10.0.0.8", ExtractIP(r))
}

func TestFormatRetryMessage(t *testing.T) {
	assert.Equal(t, "2 minute(s)", FormatRetryMessage(120))
	assert.Equal(t, "45 second(s)", FormatRetryMessage(45))
}
