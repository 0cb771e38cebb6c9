package models

import "time"

// LoginRateLimit is one persisted sliding-window counter per client
// fingerprint. The key is an opaque hash of IP and user-agent; the raw
// values are never stored.
type LoginRateLimit struct {
	Key            string     `json:"key"`
	Count          int        `json:"count"`
	FirstAttemptAt time.Time  `json:"first_attempt_at"`
	BlockedUntil   *time.Time `json:"blocked_until,omitempty"`
}

// RateLimitState is the answer to "may this fingerprint try to log in?".
type RateLimitState struct {
	Limited           bool `json:"limited"`
	RetryAfterSeconds int  `json:"retry_after_seconds,omitempty"`
}
