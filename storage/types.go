package storage

import "time"

// Bucket is a named container for files.
type Bucket struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsPublic    bool      `json:"is_public"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FileInfo describes a stored file.
type FileInfo struct {
	ID          string    `json:"id"`
	BucketID    string    `json:"bucket_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateBucketOptions configures CreateBucket.
type CreateBucketOptions struct {
	IsPublic    bool
	Description string
}
