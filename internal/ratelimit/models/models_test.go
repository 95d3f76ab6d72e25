package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewIPRateLimitKey(t *testing.T) {
	assert.Equal(t, "ratelimit:ip:192.0.2.1:risk_profile", NewIPRateLimitKey("192.0.2.1", "risk_profile"))
	assert.Equal(t, "ratelimit:ip:__1:risk_profile", NewIPRateLimitKey("::1", "risk_profile"))
	assert.Equal(t, "ratelimit:ip:a_b:c_d", NewIPRateLimitKey("a:b", "c:d"))
}

func TestDenied(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

	result := Denied(10, now.Add(1500*time.Millisecond), now)
	assert.False(t, result.Allowed)
	assert.Equal(t, 10, result.Limit)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, 2, result.RetryAfter)

	assert.Equal(t, 30, Denied(10, now.Add(30*time.Second), now).RetryAfter)
	assert.Equal(t, 1, Denied(10, now, now).RetryAfter)
}
