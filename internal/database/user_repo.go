package database

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"nomod-backend/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrLastActiveAdmin   = errors.New("cannot remove the last active admin")
)

// UserRepo handles admin user database operations
type UserRepo struct{}

// NewUserRepo creates a new user repository
func NewUserRepo() *UserRepo {
	return &UserRepo{}
}

const userColumns = `id, email, name, role, password_hash, password_salt, is_active,
       created_at, updated_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	var lastLogin sql.NullTime

	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Role,
		&user.PasswordHash, &user.PasswordSalt, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt, &lastLogin,
	)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLoginAt = &t
	}
	return user, nil
}

// Create creates a new admin user. Email is normalized to lowercase.
func (r *UserRepo) Create(user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	result, err := DB.Exec(`
		INSERT INTO admin_users (email, name, role, password_hash, password_salt, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.Email, user.Name, user.Role, user.PasswordHash, user.PasswordSalt, user.IsActive)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrUserAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepo) GetByID(id int64) (*models.User, error) {
	user, err := scanUser(DB.QueryRow(
		`SELECT `+userColumns+` FROM admin_users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepo) GetByEmail(email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := scanUser(DB.QueryRow(
		`SELECT `+userColumns+` FROM admin_users WHERE email = ?`, email))
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// List retrieves all admin users
func (r *UserRepo) List() ([]*models.User, error) {
	rows, err := DB.Query(`SELECT ` + userColumns + ` FROM admin_users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// Update updates a user's mutable fields
func (r *UserRepo) Update(user *models.User) error {
	user.UpdatedAt = time.Now()

	result, err := DB.Exec(`
		UPDATE admin_users SET
			name = ?,
			role = ?,
			is_active = ?,
			password_hash = ?,
			password_salt = ?,
			updated_at = ?
		WHERE id = ?
	`, user.Name, user.Role, user.IsActive, user.PasswordHash, user.PasswordSalt, user.UpdatedAt, user.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Delete deletes a user. Sessions cascade at the schema level.
func (r *UserRepo) Delete(id int64) error {
	result, err := DB.Exec("DELETE FROM admin_users WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// UpdateLastLogin updates the user's last login timestamp
func (r *UserRepo) UpdateLastLogin(id int64) error {
	_, err := DB.Exec("UPDATE admin_users SET last_login_at = ? WHERE id = ?", time.Now(), id)
	return err
}

// Count returns the total number of users
func (r *UserRepo) Count() (int, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM admin_users").Scan(&count)
	return count, err
}

// CountActiveAdmins returns the number of active users with the admin role.
// Callers use it to refuse role downgrades and deletions that would leave
// the system without an administrator.
func (r *UserRepo) CountActiveAdmins() (int, error) {
	var count int
	err := DB.QueryRow(
		"SELECT COUNT(*) FROM admin_users WHERE role = ? AND is_active = 1",
		models.RoleAdmin,
	).Scan(&count)
	return count, err
}
