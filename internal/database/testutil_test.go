package database

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestDB swaps the package-global connection for a fresh in-memory
// database with migrations applied. A single connection keeps the in-memory
// database alive across queries.
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	prev := DB
	DB = db
	t.Cleanup(func() {
		DB = prev
		_ = db.Close()
	})

	require.NoError(t, Migrate())
}
