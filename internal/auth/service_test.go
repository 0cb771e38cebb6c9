package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomod-backend/internal/database"
	"nomod-backend/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	setupDB(t)
	return NewService([]byte("test-secret"), false)
}

func createTestUser(t *testing.T, email, password string, role models.Role, active bool) *models.User {
	t.Helper()

	hash, salt, err := HashPassword(password, "")
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		Name:         "Test User",
		Role:         role,
		PasswordHash: hash,
		PasswordSalt: salt,
		IsActive:     active,
	}
	require.NoError(t, database.NewUserRepo().Create(user))
	return user
}

func TestLogin_Success(t *testing.T) {
	svc := newTestService(t)
	createTestUser(t, "editor@example.com", "password123", models.RoleEditor, true)

	user, err := svc.Login("editor@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "editor@example.com", user.Email)

	// Login stamps last_login_at.
	reloaded, err := database.NewUserRepo().GetByID(user.ID)
	require.NoError(t, err)
	assert.NotNil(t, reloaded.LastLoginAt)
}

func TestLogin_CaseInsensitiveEmail(t *testing.T) {
	svc := newTestService(t)
	createTestUser(t, "Admin@Example.COM", "password123", models.RoleAdmin, true)

	user, err := svc.Login("admin@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
}

func TestLogin_FailuresCollapseToInvalidCredentials(t *testing.T) {
	svc := newTestService(t)
	createTestUser(t, "user@example.com", "password123", models.RoleEditor, true)
	createTestUser(t, "inactive@example.com", "password123", models.RoleEditor, false)

	// Wrong password, unknown user, and inactive user are indistinguishable.
	_, err := svc.Login("user@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("inactive@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssueAndValidateSession(t *testing.T) {
	svc := newTestService(t)
	user := createTestUser(t, "user@example.com", "password123", models.RoleEditor, true)

	token, session, err := svc.IssueSession(user, "test-agent/1.0")
	require.NoError(t, err)
	assert.Len(t, token, 64) // 32 random bytes, hex encoded
	assert.Equal(t, models.RoleEditor, session.Role)
	assert.Equal(t, "test-agent/1.0", session.UserAgent)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	// The raw token never reaches storage.
	_, err = database.NewSessionRepo().GetByTokenHash(token)
	assert.ErrorIs(t, err, database.ErrSessionNotFound)
}

func TestValidateToken_Expiry(t *testing.T) {
	svc := newTestService(t)
	user := createTestUser(t, "user@example.com", "password123", models.RoleEditor, true)

	issued := time.Now()
	svc.now = func() time.Time { return issued }

	token, _, err := svc.IssueSession(user, "")
	require.NoError(t, err)

	// One second before expiry the session is still good.
	svc.now = func() time.Time { return issued.Add(SessionTTL - time.Second) }
	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.NotNil(t, got)

	// One second after expiry it is gone, and the row is deleted.
	svc.now = func() time.Time { return issued.Add(SessionTTL + time.Second) }
	got, err = svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, got)

	count, err := database.NewSessionRepo().CountByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestValidateToken_UnknownOrEmpty(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.ValidateToken("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.ValidateToken("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestValidateToken_DeactivatedUser(t *testing.T) {
	svc := newTestService(t)
	user := createTestUser(t, "user@example.com", "password123", models.RoleEditor, true)

	token, _, err := svc.IssueSession(user, "")
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, database.NewUserRepo().Update(user))

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, got)

	// The prune sweep removed the orphaned session row.
	count, err := database.NewSessionRepo().CountByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestValidateToken_DeletedUserCascades(t *testing.T) {
	svc := newTestService(t)
	admin := createTestUser(t, "admin@example.com", "password123", models.RoleAdmin, true)
	victim := createTestUser(t, "victim@example.com", "password123", models.RoleEditor, true)
	_ = admin

	token, _, err := svc.IssueSession(victim, "")
	require.NoError(t, err)

	require.NoError(t, database.NewUserRepo().Delete(victim.ID))

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIssueSession_PerUserCap(t *testing.T) {
	svc := newTestService(t)
	user := createTestUser(t, "user@example.com", "password123", models.RoleEditor, true)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		at := base.Add(time.Duration(i) * time.Second)
		svc.now = func() time.Time { return at }
		_, _, err := svc.IssueSession(user, "")
		require.NoError(t, err)
	}

	count, err := database.NewSessionRepo().CountByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, count)

	// The newest sessions survive eviction: the last issued token validates.
	lastAt := base.Add(30 * time.Second)
	svc.now = func() time.Time { return lastAt }
	token, _, err := svc.IssueSession(user, "")
	require.NoError(t, err)

	svc.now = time.Now
	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestClearSession_Idempotent(t *testing.T) {
	svc := newTestService(t)
	user := createTestUser(t, "user@example.com", "password123", models.RoleEditor, true)

	token, _, err := svc.IssueSession(user, "")
	require.NoError(t, err)

	require.NoError(t, svc.ClearSession(token))
	require.NoError(t, svc.ClearSession(token)) // second delete is a no-op
	require.NoError(t, svc.ClearSession(""))

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTokenHash_KeyedBySecret(t *testing.T) {
	setupDB(t)
	a := NewService([]byte("secret-a"), false)
	b := NewService([]byte("secret-b"), false)

	assert.NotEqual(t, a.TokenHash("token"), b.TokenHash("token"))
	assert.Equal(t, a.TokenHash("token"), a.TokenHash("token"))
}

func TestSessionCookie(t *testing.T) {
	setupDB(t)
	svc := NewService([]byte("secret"), true)

	cookie := svc.SessionCookie("tok")
	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, "tok", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, 28800, cookie.MaxAge)

	cleared := svc.ClearedSessionCookie()
	assert.Equal(t, "", cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge)
}
