package photostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "packing/job-1/package-abc.jpg", objectKey("job-1", "PACKAGE", "image/jpeg", "abc"))
	assert.Equal(t, "packing/job-1/photo-abc.png", objectKey("job-1", "", "image/png", "abc"))
	assert.Equal(t, "packing/job-1/seal-abc.bin", objectKey("job-1", "SEAL", "application/x-unknown-thing", "abc"))
}

func TestNewMinIOStorage_URLs(t *testing.T) {
	s, err := NewMinIOStorage(Config{
		Endpoint:  "minio:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "evidence",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://minio:9000/evidence/packing/j/a.jpg", s.objectURL("packing/j/a.jpg"))
	assert.Equal(t, "http://minio:9000/evidence/thumbnails/packing/j/a.jpg", s.objectURL(thumbnailPrefix+"packing/j/a.jpg"))

	s, err = NewMinIOStorage(Config{
		Endpoint:  "minio:9000",
		Bucket:    "evidence",
		UseSSL:    true,
		PublicURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/evidence/x.png", s.objectURL("x.png"))
}
