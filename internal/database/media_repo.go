package database

import (
	"database/sql"
	"errors"

	"nomod-backend/internal/models"
)

var ErrMediaNotFound = errors.New("media file not found")

// MediaRepo handles media file database operations. The file bytes live on
// disk; this tracks the metadata.
type MediaRepo struct{}

// NewMediaRepo creates a new media repository
func NewMediaRepo() *MediaRepo {
	return &MediaRepo{}
}

// Create records an uploaded file
func (r *MediaRepo) Create(m *models.MediaFile) error {
	_, err := DB.Exec(`
		INSERT INTO media_files (id, original_name, stored_name, content_type, size_bytes, uploaded_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, m.OriginalName, m.StoredName, m.ContentType, m.SizeBytes, m.UploadedBy)
	return err
}

// GetByID retrieves a media file record by ID
func (r *MediaRepo) GetByID(id string) (*models.MediaFile, error) {
	m := &models.MediaFile{}
	err := DB.QueryRow(`
		SELECT id, original_name, stored_name, content_type, size_bytes, uploaded_by, created_at
		FROM media_files WHERE id = ?
	`, id).Scan(&m.ID, &m.OriginalName, &m.StoredName, &m.ContentType, &m.SizeBytes, &m.UploadedBy, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrMediaNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List retrieves all media file records, newest first
func (r *MediaRepo) List() ([]*models.MediaFile, error) {
	rows, err := DB.Query(`
		SELECT id, original_name, stored_name, content_type, size_bytes, uploaded_by, created_at
		FROM media_files ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.MediaFile
	for rows.Next() {
		m := &models.MediaFile{}
		if err := rows.Scan(&m.ID, &m.OriginalName, &m.StoredName, &m.ContentType, &m.SizeBytes, &m.UploadedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, m)
	}

	return files, rows.Err()
}

// Delete removes a media file record
func (r *MediaRepo) Delete(id string) error {
	result, err := DB.Exec("DELETE FROM media_files WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrMediaNotFound
	}

	return nil
}
