package port

import (
	"context"
	"io"
)

type StoredFile struct {
	// URL is what clients fetch the file from
	URL string
	// Key identifies the file to the store for deletion
	Key string
}

type FileStore interface {
	Save(ctx context.Context, folder, filename string, r io.Reader) (StoredFile, error)
	Delete(ctx context.Context, key string) error
}
