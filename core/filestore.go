package core

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// ErrFileNotFound is returned by FileStore.Open for unknown keys.
var ErrFileNotFound = errors.New("file not found")

// FileStore is the object-storage contract: upload a blob under a key and get
// back a publicly servable URL. Backed by local disk in this repo; any hosted
// bucket service fits behind it.
type FileStore interface {
	// Save stores the blob and returns its public URL.
	Save(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	// URL returns the public URL for an already stored key.
	URL(key string) string
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
