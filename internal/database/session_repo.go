package database

import (
	"database/sql"
	"errors"
	"time"

	"nomod-backend/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// SessionRepo handles admin session database operations. Expiry decisions
// live in the auth service so the clock can be injected; this layer only
// stores and retrieves rows.
type SessionRepo struct{}

// NewSessionRepo creates a new session repository
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{}
}

const sessionColumns = `id, user_id, token_hash, role, created_at, expires_at, last_seen_at, user_agent`

func scanSession(row interface{ Scan(...any) error }) (*models.Session, error) {
	session := &models.Session{}
	var userAgent sql.NullString

	err := row.Scan(
		&session.ID, &session.UserID, &session.TokenHash, &session.Role,
		&session.CreatedAt, &session.ExpiresAt, &session.LastSeenAt, &userAgent,
	)
	if err != nil {
		return nil, err
	}
	if userAgent.Valid {
		session.UserAgent = userAgent.String
	}
	return session, nil
}

// Create inserts a new session row.
func (r *SessionRepo) Create(session *models.Session) error {
	result, err := DB.Exec(`
		INSERT INTO admin_sessions (user_id, token_hash, role, created_at, expires_at, last_seen_at, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, session.UserID, session.TokenHash, session.Role,
		session.CreatedAt, session.ExpiresAt, session.LastSeenAt, session.UserAgent)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	session.ID = id

	return nil
}

// GetByTokenHash retrieves a session by its hashed token
func (r *SessionRepo) GetByTokenHash(tokenHash string) (*models.Session, error) {
	session, err := scanSession(DB.QueryRow(
		`SELECT `+sessionColumns+` FROM admin_sessions WHERE token_hash = ?`, tokenHash))
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetByUserID retrieves all sessions for a user, newest first
func (r *SessionRepo) GetByUserID(userID int64) ([]*models.Session, error) {
	rows, err := DB.Query(`
		SELECT `+sessionColumns+` FROM admin_sessions
		WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// TouchLastSeen records session activity.
func (r *SessionRepo) TouchLastSeen(id int64, at time.Time) error {
	_, err := DB.Exec("UPDATE admin_sessions SET last_seen_at = ? WHERE id = ?", at, id)
	return err
}

// Delete deletes a session by ID
func (r *SessionRepo) Delete(id int64) error {
	_, err := DB.Exec("DELETE FROM admin_sessions WHERE id = ?", id)
	return err
}

// DeleteByTokenHash deletes a session by its token hash. Idempotent: deleting
// an absent session is not an error.
func (r *SessionRepo) DeleteByTokenHash(tokenHash string) error {
	_, err := DB.Exec("DELETE FROM admin_sessions WHERE token_hash = ?", tokenHash)
	return err
}

// DeleteAllForUser deletes all sessions for a user
func (r *SessionRepo) DeleteAllForUser(userID int64) error {
	_, err := DB.Exec("DELETE FROM admin_sessions WHERE user_id = ?", userID)
	return err
}

// DeleteOrphaned removes sessions whose owning user is missing or inactive.
func (r *SessionRepo) DeleteOrphaned() (int64, error) {
	result, err := DB.Exec(`
		DELETE FROM admin_sessions WHERE user_id NOT IN (
			SELECT id FROM admin_users WHERE is_active = 1
		)
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteExpired removes all sessions that expired before the given time.
func (r *SessionRepo) DeleteExpired(now time.Time) (int64, error) {
	result, err := DB.Exec("DELETE FROM admin_sessions WHERE expires_at <= ?", now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountByUserID returns the number of sessions held by a user
func (r *SessionRepo) CountByUserID(userID int64) (int, error) {
	var count int
	err := DB.QueryRow(
		"SELECT COUNT(*) FROM admin_sessions WHERE user_id = ?", userID,
	).Scan(&count)
	return count, err
}

// Count returns the total number of sessions across all users
func (r *SessionRepo) Count() (int, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM admin_sessions").Scan(&count)
	return count, err
}

// TrimUserSessions deletes a user's oldest sessions, keeping at most keep rows.
func (r *SessionRepo) TrimUserSessions(userID int64, keep int) error {
	_, err := DB.Exec(`
		DELETE FROM admin_sessions WHERE user_id = ? AND id NOT IN (
			SELECT id FROM admin_sessions WHERE user_id = ?
			ORDER BY created_at DESC LIMIT ?
		)
	`, userID, userID, keep)
	return err
}

// TrimGlobalSessions deletes the oldest sessions across all users, keeping
// at most keep rows.
func (r *SessionRepo) TrimGlobalSessions(keep int) error {
	_, err := DB.Exec(`
		DELETE FROM admin_sessions WHERE id NOT IN (
			SELECT id FROM admin_sessions ORDER BY created_at DESC LIMIT ?
		)
	`, keep)
	return err
}
