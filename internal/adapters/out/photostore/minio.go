// Package photostore keeps packing evidence photos in a MinIO bucket.
// Thumbnails are rendered by the storage side under the thumbnails/ prefix;
// this package only hands out both URLs.
package photostore

import (
	"context"
	"fmt"
	"mime"
	"strings"

	"fulfillment/internal/core/ports"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const thumbnailPrefix = "thumbnails/"

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base the returned URLs are built on. Defaults to the
	// endpoint.
	PublicURL string
}

var _ ports.PhotoStorage = (*MinIOStorage)(nil)

type MinIOStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinIOStorage(cfg Config) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.Endpoint
	}
	return &MinIOStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinIOStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *MinIOStorage) Upload(ctx context.Context, photo ports.PhotoUpload) (ports.StoredPhoto, error) {
	key := objectKey(photo.JobID, photo.PhotoType, photo.ContentType, uuid.NewString())
	if _, err := s.client.PutObject(ctx, s.bucket, key, photo.Body, photo.Size, minio.PutObjectOptions{
		ContentType: photo.ContentType,
		UserMetadata: map[string]string{
			"job-id":     photo.JobID,
			"photo-type": photo.PhotoType,
		},
	}); err != nil {
		return ports.StoredPhoto{}, fmt.Errorf("upload photo: %w", err)
	}
	return ports.StoredPhoto{
		PhotoURL:     s.objectURL(key),
		ThumbnailURL: s.objectURL(thumbnailPrefix + key),
	}, nil
}

func (s *MinIOStorage) objectURL(key string) string {
	return s.publicURL + "/" + s.bucket + "/" + key
}

// objectKey lays photos out as packing/<jobId>/<type>-<id><ext>.
func objectKey(jobID, photoType, contentType, id string) string {
	ext := ".bin"
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	if contentType == "image/jpeg" {
		ext = ".jpg"
	}
	kind := strings.ToLower(strings.TrimSpace(photoType))
	if kind == "" {
		kind = "photo"
	}
	return fmt.Sprintf("packing/%s/%s-%s%s", jobID, kind, id, ext)
}
