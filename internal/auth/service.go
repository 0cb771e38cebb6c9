package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"nomod-backend/internal/database"
	"nomod-backend/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Session policy. The raw bearer token travels only in the cookie; the store
// keeps its HMAC digest.
const (
	SessionCookieName  = "nomod_admin_session"
	SessionTTL         = 8 * time.Hour
	maxSessionsPerUser = 20
	maxSessionsGlobal  = 5000
)

// Service handles credential verification and session lifecycle
type Service struct {
	userRepo    *database.UserRepo
	sessionRepo *database.SessionRepo
	secret      []byte
	secure      bool // Secure flag on cookies (production)

	now func() time.Time
}

// NewService creates a new auth service. The secret keys the HMAC under
// session token hashes; secure controls the cookie Secure attribute.
func NewService(secret []byte, secure bool) *Service {
	return &Service{
		userRepo:    database.NewUserRepo(),
		sessionRepo: database.NewSessionRepo(),
		secret:      secret,
		secure:      secure,
		now:         time.Now,
	}
}

// Login verifies credentials and returns the user. Unknown email, wrong
// password, and inactive accounts all collapse to ErrInvalidCredentials so
// callers cannot enumerate users. Storage errors propagate.
func (s *Service) Login(email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if !VerifyPassword(password, user.PasswordHash, user.PasswordSalt) {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

// IssueSession mints a session for the user and returns the raw token. The
// caller delivers the token via SessionCookie and never sees it again.
func (s *Service) IssueSession(user *models.User, userAgent string) (string, *models.Session, error) {
	// Sessions of deactivated or deleted users are dead weight; sweep them
	// on every issue so they cannot accumulate.
	if _, err := s.sessionRepo.DeleteOrphaned(); err != nil {
		return "", nil, err
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", nil, err
	}
	token := hex.EncodeToString(tokenBytes)

	// Per-user cap: keep the newest maxSessionsPerUser-1 so the insert below
	// lands exactly at the cap.
	count, err := s.sessionRepo.CountByUserID(user.ID)
	if err != nil {
		return "", nil, err
	}
	if count >= maxSessionsPerUser {
		if err := s.sessionRepo.TrimUserSessions(user.ID, maxSessionsPerUser-1); err != nil {
			return "", nil, err
		}
	}

	now := s.now()
	session := &models.Session{
		UserID:     user.ID,
		TokenHash:  s.TokenHash(token),
		Role:       user.Role,
		CreatedAt:  now,
		ExpiresAt:  now.Add(SessionTTL),
		LastSeenAt: now,
		UserAgent:  userAgent,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return "", nil, err
	}

	// Global ceiling across all users.
	total, err := s.sessionRepo.Count()
	if err != nil {
		return "", nil, err
	}
	if total > maxSessionsGlobal {
		if err := s.sessionRepo.TrimGlobalSessions(maxSessionsGlobal); err != nil {
			return "", nil, err
		}
	}

	return token, session, nil
}

// ValidateToken resolves a session token to its active user. It returns
// (nil, nil) for anything that just means "not authenticated" — missing
// token, unknown hash, expired session, inactive or deleted user. Storage
// errors propagate and the caller must treat them as not authenticated.
func (s *Service) ValidateToken(token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	if _, err := s.sessionRepo.DeleteOrphaned(); err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetByTokenHash(s.TokenHash(token))
	if err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}

	now := s.now()
	if !session.ExpiresAt.After(now) {
		if err := s.sessionRepo.Delete(session.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	user, err := s.userRepo.GetByID(session.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, nil
	}

	if err := s.sessionRepo.TouchLastSeen(session.ID, now); err != nil {
		return nil, err
	}

	return user, nil
}

// ClearSession deletes the session matching the token. Idempotent.
func (s *Service) ClearSession(token string) error {
	if token == "" {
		return nil
	}
	return s.sessionRepo.DeleteByTokenHash(s.TokenHash(token))
}

// TokenHash computes the HMAC-SHA256 digest stored in place of the raw token.
func (s *Service) TokenHash(token string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// SessionCookie builds the cookie that carries the raw bearer token.
func (s *Service) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionTTL.Seconds()),
	}
}

// ClearedSessionCookie builds the cookie that removes the session cookie.
func (s *Service) ClearedSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}
