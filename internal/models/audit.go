package models

import "time"

// AuditLog represents a record of admin actions
type AuditLog struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Details   string    `json:"details"` // JSON string
	IPAddress string    `json:"ip_address,omitempty"`
}

// Common audit actions
const (
	ActionLogin         = "login"
	ActionLogout        = "logout"
	ActionUserCreate    = "user.create"
	ActionUserUpdate    = "user.update"
	ActionUserDelete    = "user.delete"
	ActionPostCreate    = "post.create"
	ActionPostUpdate    = "post.update"
	ActionPostDelete    = "post.delete"
	ActionMediaUpload   = "media.upload"
	ActionMediaDelete   = "media.delete"
	ActionCategoryWrite = "category.write"
)

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	UserID    *int64
	Action    string
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
}
