package ports

import (
	"context"
	"io"
)

type PhotoUpload struct {
	JobID       string
	PhotoType   string
	ContentType string
	Body        io.Reader
	Size        int64
}

type StoredPhoto struct {
	PhotoURL     string
	ThumbnailURL string
}

// PhotoStorage keeps packing evidence photos outside the database.
type PhotoStorage interface {
	Upload(ctx context.Context, photo PhotoUpload) (StoredPhoto, error)
}

// Lease is a short-lived, cross-instance mutual exclusion.
type Lease interface {
	// TryAcquire returns false without error when another holder owns key.
	TryAcquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
