package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strings"
)

// ErrNotFound is returned by Get when the object does not exist.
var ErrNotFound = errors.New("object not found")

// ImageCacheControl is set on uploaded images. Keys embed the upload time and
// are never rewritten, so objects can be cached indefinitely.
const ImageCacheControl = "public, max-age=31536000, immutable"

const defaultContentType = "application/octet-stream"

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Storage is the image store used by the blog service and the image route.
type Storage struct {
	backend ObjectStorage
}

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Put uploads an image. A missing or generic content type is replaced by the
// one implied by the key's extension.
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" || contentType == defaultContentType {
		contentType = ContentTypeFor(key)
	}
	return s.backend.Put(ctx, key, r, size, contentType)
}

// Get opens a reader for an image.
func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes an image.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}

// Close releases the backend's client, if it holds one.
func (s *Storage) Close() error {
	if closer, ok := s.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ContentTypeFor guesses a content type from the key's extension.
func ContentTypeFor(key string) string {
	if contentType := mime.TypeByExtension(strings.ToLower(path.Ext(key))); contentType != "" {
		return contentType
	}
	return defaultContentType
}
