package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomod-backend/internal/models"
)

func TestRateLimitRepo_UpsertAndGet(t *testing.T) {
	setupTestDB(t)
	repo := NewRateLimitRepo()

	first := time.Now().UTC().Truncate(time.Second)
	rec := &models.LoginRateLimit{Key: "fp-1", Count: 1, FirstAttemptAt: first}
	require.NoError(t, repo.Upsert(rec))

	got, err := repo.Get("fp-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
	assert.Nil(t, got.BlockedUntil)

	// Second upsert replaces the row, including the lockout timestamp.
	blocked := first.Add(15 * time.Minute)
	rec.Count = 5
	rec.BlockedUntil = &blocked
	require.NoError(t, repo.Upsert(rec))

	got, err = repo.Get("fp-1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Count)
	require.NotNil(t, got.BlockedUntil)
	assert.True(t, got.BlockedUntil.Equal(blocked))
}

func TestRateLimitRepo_GetMissing(t *testing.T) {
	setupTestDB(t)
	repo := NewRateLimitRepo()

	_, err := repo.Get("no-such-key")
	assert.ErrorIs(t, err, ErrRateLimitNotFound)
}

func TestRateLimitRepo_Delete_Idempotent(t *testing.T) {
	setupTestDB(t)
	repo := NewRateLimitRepo()

	rec := &models.LoginRateLimit{Key: "fp-1", Count: 3, FirstAttemptAt: time.Now()}
	require.NoError(t, repo.Upsert(rec))

	require.NoError(t, repo.Delete("fp-1"))
	_, err := repo.Get("fp-1")
	assert.ErrorIs(t, err, ErrRateLimitNotFound)

	require.NoError(t, repo.Delete("fp-1"))
}
