package database

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"nomod-backend/internal/models"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrSlugTaken        = errors.New("slug already in use")
	ErrCategoryInUse    = errors.New("category still referenced by posts")
	ErrCategoryNotFound = errors.New("category not found")
)

// PostRepo handles blog post database operations
type PostRepo struct{}

// NewPostRepo creates a new post repository
func NewPostRepo() *PostRepo {
	return &PostRepo{}
}

const postColumns = `id, slug, title, excerpt, content, category_id, author_id, status,
       published_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	post := &models.Post{}
	var excerpt sql.NullString
	var categoryID sql.NullInt64
	var publishedAt sql.NullTime

	err := row.Scan(
		&post.ID, &post.Slug, &post.Title, &excerpt, &post.Content,
		&categoryID, &post.AuthorID, &post.Status,
		&publishedAt, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if excerpt.Valid {
		post.Excerpt = excerpt.String
	}
	if categoryID.Valid {
		id := categoryID.Int64
		post.CategoryID = &id
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		post.PublishedAt = &t
	}
	return post, nil
}

// Create creates a new post
func (r *PostRepo) Create(post *models.Post) error {
	result, err := DB.Exec(`
		INSERT INTO posts (slug, title, excerpt, content, category_id, author_id, status, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, post.Slug, post.Title, post.Excerpt, post.Content,
		post.CategoryID, post.AuthorID, post.Status, post.PublishedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrSlugTaken
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	post.ID = id

	return nil
}

// GetByID retrieves a post by ID
func (r *PostRepo) GetByID(id int64) (*models.Post, error) {
	post, err := scanPost(DB.QueryRow(
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// GetBySlug retrieves a post by slug
func (r *PostRepo) GetBySlug(slug string) (*models.Post, error) {
	post, err := scanPost(DB.QueryRow(
		`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug))
	if err == sql.ErrNoRows {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// List retrieves posts matching the filter, newest first
func (r *PostRepo) List(filter models.PostFilter) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.CategoryID != nil {
		query += " AND category_id = ?"
		args = append(args, *filter.CategoryID)
	}
	query += " ORDER BY created_at DESC"
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
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

// Update updates a post
func (r *PostRepo) Update(post *models.Post) error {
	post.UpdatedAt = time.Now()

	result, err := DB.Exec(`
		UPDATE posts SET
			slug = ?,
			title = ?,
			excerpt = ?,
			content = ?,
			category_id = ?,
			status = ?,
			published_at = ?,
			updated_at = ?
		WHERE id = ?
	`, post.Slug, post.Title, post.Excerpt, post.Content,
		post.CategoryID, post.Status, post.PublishedAt, post.UpdatedAt, post.ID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrSlugTaken
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPostNotFound
	}

	return nil
}

// Delete deletes a post
func (r *PostRepo) Delete(id int64) error {
	result, err := DB.Exec("DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPostNotFound
	}

	return nil
}
