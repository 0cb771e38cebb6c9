package models

import "time"

// MediaFile represents an uploaded asset. The file itself lives on disk
// under StoredName; OriginalName is what the uploader called it.
type MediaFile struct {
	ID           string    `json:"id"` // uuid
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedBy   int64     `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}
