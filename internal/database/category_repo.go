package database

import (
	"database/sql"
	"strings"

	"nomod-backend/internal/models"
)

// CategoryRepo handles category database operations
type CategoryRepo struct{}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo() *CategoryRepo {
	return &CategoryRepo{}
}

// Create creates a new category
func (r *CategoryRepo) Create(cat *models.Category) error {
	result, err := DB.Exec(`
		INSERT INTO categories (slug, name, description) VALUES (?, ?, ?)
	`, cat.Slug, cat.Name, cat.Description)
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
	cat.ID = id

	return nil
}

// GetByID retrieves a category by ID
func (r *CategoryRepo) GetByID(id int64) (*models.Category, error) {
	cat := &models.Category{}
	var description sql.NullString

	err := DB.QueryRow(`
		SELECT id, slug, name, description, created_at FROM categories WHERE id = ?
	`, id).Scan(&cat.ID, &cat.Slug, &cat.Name, &description, &cat.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	if description.Valid {
		cat.Description = description.String
	}
	return cat, nil
}

// List retrieves all categories ordered by name
func (r *CategoryRepo) List() ([]*models.Category, error) {
	rows, err := DB.Query(`
		SELECT id, slug, name, description, created_at FROM categories ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []*models.Category
	for rows.Next() {
		cat := &models.Category{}
		var description sql.NullString
		if err := rows.Scan(&cat.ID, &cat.Slug, &cat.Name, &description, &cat.CreatedAt); err != nil {
			return nil, err
		}
		if description.Valid {
			cat.Description = description.String
		}
		cats = append(cats, cat)
	}

	return cats, rows.Err()
}

// Update updates a category
func (r *CategoryRepo) Update(cat *models.Category) error {
	result, err := DB.Exec(`
		UPDATE categories SET slug = ?, name = ?, description = ? WHERE id = ?
	`, cat.Slug, cat.Name, cat.Description, cat.ID)
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
		return ErrCategoryNotFound
	}

	return nil
}

// Delete deletes a category. Categories still referenced by posts are
// refused with ErrCategoryInUse; reassign the posts first.
func (r *CategoryRepo) Delete(id int64) error {
	var refs int
	if err := DB.QueryRow(
		"SELECT COUNT(*) FROM posts WHERE category_id = ?", id,
	).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return ErrCategoryInUse
	}

	result, err := DB.Exec("DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
