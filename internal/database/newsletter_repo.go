package database

import (
	"database/sql"
	"errors"
	"strings"

	"nomod-backend/internal/models"
)

var ErrSubscriberNotFound = errors.New("subscriber not found")

// NewsletterRepo handles newsletter subscriber database operations
type NewsletterRepo struct{}

// NewNewsletterRepo creates a new newsletter repository
func NewNewsletterRepo() *NewsletterRepo {
	return &NewsletterRepo{}
}

// Subscribe records a signup. Re-subscribing an existing address is a no-op.
func (r *NewsletterRepo) Subscribe(email string) (*models.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := DB.Exec(`
		INSERT INTO subscribers (email) VALUES (?)
		ON CONFLICT(email) DO NOTHING
	`, email)
	if err != nil {
		return nil, err
	}

	sub := &models.Subscriber{}
	err = DB.QueryRow(`
		SELECT id, email, subscribed_at FROM subscribers WHERE email = ?
	`, email).Scan(&sub.ID, &sub.Email, &sub.SubscribedAt)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// List retrieves all subscribers, newest first
func (r *NewsletterRepo) List() ([]*models.Subscriber, error) {
	rows, err := DB.Query(`
		SELECT id, email, subscribed_at FROM subscribers ORDER BY subscribed_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscriber
	for rows.Next() {
		sub := &models.Subscriber{}
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.SubscribedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

// Delete removes a subscriber by email
func (r *NewsletterRepo) Delete(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	result, err := DB.Exec("DELETE FROM subscribers WHERE email = ?", email)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSubscriberNotFound
	}

	return nil
}

// Count returns the number of subscribers
func (r *NewsletterRepo) Count() (int, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM subscribers").Scan(&count)
	return count, err
}

// GetByEmail retrieves a subscriber by email
func (r *NewsletterRepo) GetByEmail(email string) (*models.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	sub := &models.Subscriber{}
	err := DB.QueryRow(`
		SELECT id, email, subscribed_at FROM subscribers WHERE email = ?
	`, email).Scan(&sub.ID, &sub.Email, &sub.SubscribedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSubscriberNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}
