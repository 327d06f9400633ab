package storage

import (
	"context"
	"io"
)

type StorageService interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	// PublicURL is the unauthenticated URL of key, or "" when the bucket is
	// not publicly served.
	PublicURL(key string) string
}
