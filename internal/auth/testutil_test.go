package auth

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"nomod-backend/internal/database"
)

// setupDB points the package-global connection at a fresh in-memory
// database with the full schema applied. The single connection keeps the
// in-memory database alive for the whole test.
func setupDB(t *testing.T) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		_ = db.Close()
	})

	require.NoError(t, database.Migrate())
}
