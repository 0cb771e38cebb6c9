package models

import "time"

// Session represents an authenticated admin session. Only the HMAC digest of
// the bearer token is stored; the raw token lives in the browser cookie.
type Session struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	TokenHash  string    `json:"-"`    // Never expose in JSON
	Role       Role      `json:"role"` // snapshot at issuance
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionInfo is the introspection payload for the current cookie.
type SessionInfo struct {
	Authenticated bool    `json:"authenticated"`
	Role          *string `json:"role"`
	Name          *string `json:"name"`
}
