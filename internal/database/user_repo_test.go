package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomod-backend/internal/models"
)

func newUser(email string, role models.Role, active bool) *models.User {
	return &models.User{
		Email:        email,
		Name:         "Test User",
		Role:         role,
		PasswordHash: "hash",
		PasswordSalt: "salt",
		IsActive:     active,
	}
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	setupTestDB(t)
	repo := NewUserRepo()

	user := newUser("Admin@Example.com", models.RoleAdmin, true)
	require.NoError(t, repo.Create(user))
	assert.NotZero(t, user.ID)
	assert.Equal(t, "admin@example.com", user.Email, "email should be normalized on create")

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", got.Email)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.True(t, got.IsActive)
	assert.Nil(t, got.LastLoginAt)
}

func TestUserRepo_GetByEmail_CaseInsensitive(t *testing.T) {
	setupTestDB(t)
	repo := NewUserRepo()

	require.NoError(t, repo.Create(newUser("admin@example.com", models.RoleAdmin, true)))

	got, err := repo.GetByEmail("ADMIN@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", got.Email)

	_, err = repo.GetByEmail("nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	setupTestDB(t)
	repo := NewUserRepo()

	require.NoError(t, repo.Create(newUser("admin@example.com", models.RoleAdmin, true)))

	err := repo.Create(newUser("ADMIN@EXAMPLE.COM", models.RoleEditor, true))
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUserRepo_Update(t *testing.T) {
	setupTestDB(t)
	repo := NewUserRepo()

	user := newUser("editor@example.com", models.RoleEditor, true)
	require.NoError(t, repo.Create(user))

	user.Name = "Renamed"
	user.Role = models.RoleAdmin
	user.IsActive = false
	require.NoError(t, repo.Update(user))

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.False(t, got.IsActive)

	missing := newUser("ghost@example.com", models.RoleEditor, true)
	missing.ID = 9999
	assert.ErrorIs(t, repo.Update(missing), ErrUserNotFound)
}

func TestUserRepo_Delete(t *testing.T) {
	setupTestDB(t)
	repo := NewUserRepo()

	user := newUser("editor@example.com", models.RoleEditor, true)
	require.NoError(t, repo.Create(user))

	require.NoError(t, repo.Delete(user.ID))
	_, err := repo.GetByID(user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, repo.Delete(user.ID), ErrUserNotFound)
}

func TestUserRepo_UpdateLastLogin(t *testing.T) {
	setupTestDB(t)
	repo := NewUserRepo()

	user := newUser("admin@example.com", models.RoleAdmin, true)
	require.NoError(t, repo.Create(user))
	require.NoError(t, repo.UpdateLastLogin(user.ID))

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
}

func TestUserRepo_CountActiveAdmins(t *testing.T) {
	setupTestDB(t)
	repo := NewUserRepo()

	require.NoError(t, repo.Create(newUser("a1@example.com", models.RoleAdmin, true)))
	require.NoError(t, repo.Create(newUser("a2@example.com", models.RoleAdmin, false)))
	require.NoError(t, repo.Create(newUser("e1@example.com", models.RoleEditor, true)))

	count, err := repo.CountActiveAdmins()
	require.NoError(t, err)
	assert.Equal(t, 1, count, "inactive admins and editors do not count")

	total, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestUserRepo_List(t *testing.T) {
	setupTestDB(t)
	repo := NewUserRepo()

	require.NoError(t, repo.Create(newUser("b@example.com", models.RoleEditor, true)))
	require.NoError(t, repo.Create(newUser("a@example.com", models.RoleAdmin, true)))

	users, err := repo.List()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email, "listed in email order")
	assert.Equal(t, "b@example.com", users[1].Email)
}
