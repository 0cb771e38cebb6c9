package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"nomod-backend/internal/database"
	"nomod-backend/internal/models"
)

// Login throttling policy: a sliding window of failed attempts per client
// fingerprint, with a lockout once the window fills. Records idle for four
// windows are garbage collected on next read.
const (
	rateLimitWindow    = 15 * time.Minute
	rateLimitMax       = 5
	rateLimitLockout   = 15 * time.Minute
	rateLimitStaleness = 4 * rateLimitWindow
)

// RateLimiter tracks failed login attempts in persisted per-fingerprint
// counters. Concurrent failures for one key are read-then-write and not
// serialized; throttling is best effort.
type RateLimiter struct {
	repo *database.RateLimitRepo

	now func() time.Time
}

// NewRateLimiter creates a rate limiter over the persisted counters.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		repo: database.NewRateLimitRepo(),
		now:  time.Now,
	}
}

// Fingerprint derives the rate-limit bucket key from client IP and a
// truncated user-agent. Only the hash ever reaches storage or logs.
func Fingerprint(ip, userAgent string) string {
	if len(userAgent) > 64 {
		userAgent = userAgent[:64]
	}
	sum := sha256.Sum256([]byte(ip + "|" + userAgent))
	return hex.EncodeToString(sum[:])
}

// CheckState reports whether the fingerprint is currently locked out. Storage
// failures on this path report "not limited": an infrastructure blip must
// never lock a legitimate user out.
func (rl *RateLimiter) CheckState(key string) models.RateLimitState {
	rec, err := rl.repo.Get(key)
	if err != nil {
		// Includes ErrRateLimitNotFound: no record, no limit.
		return models.RateLimitState{}
	}

	now := rl.now()

	// Abandoned counter; collect it opportunistically.
	if now.Sub(rec.FirstAttemptAt) > rateLimitStaleness {
		_ = rl.repo.Delete(key)
		return models.RateLimitState{}
	}

	if rec.BlockedUntil != nil {
		if rec.BlockedUntil.After(now) {
			remaining := rec.BlockedUntil.Sub(now)
			return models.RateLimitState{
				Limited:           true,
				RetryAfterSeconds: int((remaining + time.Second - 1) / time.Second),
			}
		}
		// Lockout served; clear the block but keep the attempt history.
		rec.BlockedUntil = nil
		_ = rl.repo.Upsert(rec)
	}

	return models.RateLimitState{}
}

// RecordFailure counts one failed attempt and reports the resulting state.
// Unlike CheckState this path fails closed: a failure we cannot persist is a
// failure we would otherwise lose, so write errors propagate.
func (rl *RateLimiter) RecordFailure(key string) (models.RateLimitState, error) {
	now := rl.now()

	rec, err := rl.repo.Get(key)
	if err != nil {
		if !errors.Is(err, database.ErrRateLimitNotFound) {
			return models.RateLimitState{}, err
		}
		rec = &models.LoginRateLimit{Key: key, Count: 0, FirstAttemptAt: now}
	}

	if now.Sub(rec.FirstAttemptAt) > rateLimitWindow {
		// Window elapsed; this failure starts a fresh one.
		rec.Count = 1
		rec.FirstAttemptAt = now
		rec.BlockedUntil = nil
	} else {
		rec.Count++
	}

	if rec.Count >= rateLimitMax {
		blocked := now.Add(rateLimitLockout)
		rec.BlockedUntil = &blocked
		if err := rl.repo.Upsert(rec); err != nil {
			return models.RateLimitState{}, err
		}
		return models.RateLimitState{
			Limited:           true,
			RetryAfterSeconds: int(rateLimitLockout.Seconds()),
		}, nil
	}

	if err := rl.repo.Upsert(rec); err != nil {
		return models.RateLimitState{}, err
	}
	return models.RateLimitState{}, nil
}

// Clear forgets the fingerprint's counter. Called on successful login.
func (rl *RateLimiter) Clear(key string) error {
	return rl.repo.Delete(key)
}
