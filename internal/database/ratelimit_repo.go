package database

import (
	"database/sql"
	"errors"

	"nomod-backend/internal/models"
)

var ErrRateLimitNotFound = errors.New("rate limit record not found")

// RateLimitRepo persists login rate-limit counters, one row per client
// fingerprint.
type RateLimitRepo struct{}

// NewRateLimitRepo creates a new rate limit repository
func NewRateLimitRepo() *RateLimitRepo {
	return &RateLimitRepo{}
}

// Get retrieves the counter for a fingerprint
func (r *RateLimitRepo) Get(key string) (*models.LoginRateLimit, error) {
	rec := &models.LoginRateLimit{}
	var blockedUntil sql.NullTime

	err := DB.QueryRow(`
		SELECT key, count, first_attempt_at, blocked_until
		FROM login_rate_limits WHERE key = ?
	`, key).Scan(&rec.Key, &rec.Count, &rec.FirstAttemptAt, &blockedUntil)
	if err == sql.ErrNoRows {
		return nil, ErrRateLimitNotFound
	}
	if err != nil {
		return nil, err
	}
	if blockedUntil.Valid {
		t := blockedUntil.Time
		rec.BlockedUntil = &t
	}
	return rec, nil
}

// Upsert writes the counter for a fingerprint, replacing any existing row.
func (r *RateLimitRepo) Upsert(rec *models.LoginRateLimit) error {
	_, err := DB.Exec(`
		INSERT INTO login_rate_limits (key, count, first_attempt_at, blocked_until)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET count = ?, first_attempt_at = ?, blocked_until = ?
	`, rec.Key, rec.Count, rec.FirstAttemptAt, rec.BlockedUntil,
		rec.Count, rec.FirstAttemptAt, rec.BlockedUntil)
	return err
}

// Delete removes the counter for a fingerprint. Idempotent.
func (r *RateLimitRepo) Delete(key string) error {
	_, err := DB.Exec("DELETE FROM login_rate_limits WHERE key = ?", key)
	return err
}
