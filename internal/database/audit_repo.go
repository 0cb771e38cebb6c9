package database

import (
	"encoding/json"
	"time"

	"nomod-backend/internal/models"
)

// AuditRepo handles audit log database operations
type AuditRepo struct{}

// NewAuditRepo creates a new audit repository
func NewAuditRepo() *AuditRepo {
	return &AuditRepo{}
}

// Create creates a new audit log entry
func (r *AuditRepo) Create(entry *models.AuditLog) error {
	result, err := DB.Exec(`
		INSERT INTO audit_logs (timestamp, user_id, email, action, target, details, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.Timestamp, entry.UserID, entry.Email, entry.Action, entry.Target, entry.Details, entry.IPAddress)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

// Log is a convenience method to create an audit entry with current timestamp
func (r *AuditRepo) Log(userID int64, email, action, target string, details any, ipAddress string) error {
	var detailsJSON string
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			detailsJSON = "{}"
		} else {
			detailsJSON = string(b)
		}
	}

	entry := &models.AuditLog{
		Timestamp: time.Now(),
		UserID:    userID,
		Email:     email,
		Action:    action,
		Target:    target,
		Details:   detailsJSON,
		IPAddress: ipAddress,
	}
	return r.Create(entry)
}

// List retrieves audit logs with pagination and optional filters
func (r *AuditRepo) List(filter models.AuditFilter) ([]*models.AuditLog, int, error) {
	baseQuery := "FROM audit_logs WHERE 1=1"
	args := []any{}

	if filter.UserID != nil {
		baseQuery += " AND user_id = ?"
		args = append(args, *filter.UserID)
	}
	if filter.Action != "" {
		baseQuery += " AND action = ?"
		args = append(args, filter.Action)
	}
	if !filter.StartTime.IsZero() {
		baseQuery += " AND timestamp >= ?"
		args = append(args, filter.StartTime)
	}
	if !filter.EndTime.IsZero() {
		baseQuery += " AND timestamp <= ?"
		args = append(args, filter.EndTime)
	}

	var total int
	if err := DB.QueryRow("SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT id, timestamp, user_id, email, action, target, details, ip_address " + baseQuery
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		entry := &models.AuditLog{}
		err := rows.Scan(
			&entry.ID, &entry.Timestamp, &entry.UserID, &entry.Email,
			&entry.Action, &entry.Target, &entry.Details, &entry.IPAddress,
		)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, entry)
	}

	return logs, total, rows.Err()
}
