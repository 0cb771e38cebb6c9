package models

import "time"

// Subscriber represents a newsletter signup captured from the public site.
type Subscriber struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// SubscribeRequest represents the public newsletter signup body
type SubscribeRequest struct {
	Email string `json:"email"`
}
