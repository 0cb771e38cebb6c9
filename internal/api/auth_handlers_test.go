package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomod-backend/internal/auth"
	"nomod-backend/internal/config"
	"nomod-backend/internal/database"
	"nomod-backend/internal/models"
)

// setupServer wires the full route table against a fresh in-memory database
// and returns the echo instance tests issue requests to.
func setupServer(t *testing.T) *echo.Echo {
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

	cfg := &config.Config{
		Env:            "development",
		MediaDir:       t.TempDir(),
		MaxUploadBytes: 1024 * 1024,
	}
	svc := auth.NewService([]byte("test-secret"), false)

	e := echo.New()
	RegisterRoutes(e.Group("/api"), svc, cfg)
	return e
}

func createAdmin(t *testing.T, email, password string) *models.User {
	t.Helper()

	hash, salt, err := auth.HashPassword(password, "")
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		Name:         "Admin",
		Role:         models.RoleAdmin,
		PasswordHash: hash,
		PasswordSalt: salt,
		IsActive:     true,
	}
	require.NoError(t, database.NewUserRepo().Create(user))
	return user
}

// postJSON issues a same-origin JSON POST.
func postJSON(e *echo.Echo, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Host = "example.com"
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("User-Agent", "test-agent")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func getJSON(e *echo.Echo, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Host = "example.com"
	req.Header.Set("User-Agent", "test-agent")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestLoginLogoutFlow(t *testing.T) {
	e := setupServer(t)
	createAdmin(t, "admin@example.com", "correct horse battery")

	// Wrong password and unknown email produce the same generic error.
	rec := postJSON(e, "/api/auth/login", `{"email":"admin@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")

	rec = postJSON(e, "/api/auth/login", `{"email":"nobody@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")

	// Successful login sets an HttpOnly cookie and omits the hash fields.
	rec = postJSON(e, "/api/auth/login", `{"email":"ADMIN@example.com","password":"correct horse battery"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password_hash")

	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Len(t, cookie.Value, 64)

	// The cookie introspects as an authenticated admin.
	rec = getJSON(e, "/api/auth/session", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var info models.SessionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.True(t, info.Authenticated)
	require.NotNil(t, info.Role)
	assert.Equal(t, "admin", *info.Role)

	// Logout clears the cookie and invalidates the session.
	rec = postJSON(e, "/api/auth/logout", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := sessionCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	rec = getJSON(e, "/api/auth/session", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	info = models.SessionInfo{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.False(t, info.Authenticated)
	assert.Nil(t, info.Role)
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	e := setupServer(t)
	createAdmin(t, "admin@example.com", "correct horse battery")

	for i := 0; i < 4; i++ {
		rec := postJSON(e, "/api/auth/login", `{"email":"admin@example.com","password":"wrong"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	// The fifth failure locks the fingerprint out.
	rec := postJSON(e, "/api/auth/login", `{"email":"admin@example.com","password":"wrong"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "900", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "try again in 15 minutes")

	// Even the correct password is refused while locked out.
	rec = postJSON(e, "/api/auth/login", `{"email":"admin@example.com","password":"correct horse battery"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLoginCrossOriginBlocked(t *testing.T) {
	e := setupServer(t)
	createAdmin(t, "admin@example.com", "correct horse battery")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"admin@example.com","password":"correct horse battery"}`))
	req.Host = "example.com"
	req.Header.Set("Origin", "https://evil.com")
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "request blocked")
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	e := setupServer(t)

	rec := getJSON(e, "/api/users")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = getJSON(e, "/api/posts")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEditorCannotManageUsers(t *testing.T) {
	e := setupServer(t)
	createAdmin(t, "admin@example.com", "correct horse battery")

	hash, salt, err := auth.HashPassword("editor password", "")
	require.NoError(t, err)
	editor := &models.User{
		Email:        "editor@example.com",
		Name:         "Editor",
		Role:         models.RoleEditor,
		PasswordHash: hash,
		PasswordSalt: salt,
		IsActive:     true,
	}
	require.NoError(t, database.NewUserRepo().Create(editor))

	rec := postJSON(e, "/api/auth/login", `{"email":"editor@example.com","password":"editor password"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)

	rec = getJSON(e, "/api/users", cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Content routes remain open to editors.
	rec = getJSON(e, "/api/posts", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}
