package models

import "strings"

const keyPrefix = "ratelimit"

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// so a crafted identifier containing ':' cannot address another bucket.
// IPv6 addresses are affected too: "::1" becomes "__1".
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// NewIPRateLimitKey is the bucket key for one client IP on one route.
func NewIPRateLimitKey(ip, route string) string {
	return keyPrefix + ":ip:" + SanitizeKeySegment(ip) + ":" + SanitizeKeySegment(route)
}
