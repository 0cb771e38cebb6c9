package models

import "time"

// PostStatus represents the publication state of a post
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether the status is one of the known values.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Post represents a blog post
type Post struct {
	ID          int64      `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Content     string     `json:"content"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	AuthorID    int64      `json:"author_id"`
	Status      PostStatus `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Category represents a post taxonomy entry
type Category struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreatePostRequest represents the request body for creating a post
type CreatePostRequest struct {
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	Excerpt    string     `json:"excerpt"`
	Content    string     `json:"content"`
	CategoryID *int64     `json:"category_id,omitempty"`
	Status     PostStatus `json:"status"`
}

// UpdatePostRequest represents the request body for updating a post
type UpdatePostRequest struct {
	Slug       *string     `json:"slug,omitempty"`
	Title      *string     `json:"title,omitempty"`
	Excerpt    *string     `json:"excerpt,omitempty"`
	Content    *string     `json:"content,omitempty"`
	CategoryID *int64      `json:"category_id,omitempty"`
	Status     *PostStatus `json:"status,omitempty"`
}

// PostFilter narrows post listings.
type PostFilter struct {
	Status     PostStatus
	CategoryID *int64
	Limit      int
	Offset     int
}
