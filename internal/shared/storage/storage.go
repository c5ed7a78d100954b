// Package storage provides a bucket/key object store used for published
// showcases, previews, templates and uploaded media.
package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Bucket names.
const (
	BucketMedia     = "media"
	BucketShowcase  = "showcase"
	BucketTemplates = "templates"
	BucketPreviews  = "previews"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
)

// Object is a stored blob with its metadata.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	Data        []byte
	UpdatedAt   time.Time
}

// ObjectInfo describes a stored object without its content.
type ObjectInfo struct {
	Key         string
	ContentType string
	Size        int64
	UpdatedAt   time.Time
}

// ObjectStore is the storage port. Put replaces any existing object under the same key.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) (ObjectInfo, error)
	Get(ctx context.Context, bucket, key string) (*Object, error)
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, bucket, key string) error
	DeletePrefix(ctx context.Context, bucket, prefix string) (int, error)
}

// DetectContentType resolves the content type for key. Well known web extensions win
// over sniffing since text formats are ambiguous by content.
func DetectContentType(key string, data []byte) string {
	lower := strings.ToLower(key)
	switch {
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(lower, ".css"):
		return "text/css; charset=utf-8"
	case strings.HasSuffix(lower, ".js"), strings.HasSuffix(lower, ".mjs"):
		return "application/javascript; charset=utf-8"
	case strings.HasSuffix(lower, ".json"):
		return "application/json"
	case strings.HasSuffix(lower, ".svg"):
		return "image/svg+xml"
	}
	return mimetype.Detect(data).String()
}

// ValidateKey rejects empty keys and path traversal.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return ErrInvalidKey
		}
	}
	return nil
}
