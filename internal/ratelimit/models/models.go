package models

import "time"

// RateLimitResult is the outcome of one bucket check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// Denied builds a rejected result. RetryAfter is rounded up to whole seconds
// and is at least one.
func Denied(limit int, resetAt, now time.Time) *RateLimitResult {
	retry := int(resetAt.Sub(now).Seconds())
	if resetAt.Sub(now) > time.Duration(retry)*time.Second {
		retry++
	}
	return &RateLimitResult{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: max(retry, 1),
	}
}
