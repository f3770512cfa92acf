// Package storage keeps uploaded files on local disk or in an S3 bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"replate-api/internal/config"
)

// Object is a stored file as seen by the janitor
type Object struct {
	Name    string
	URL     string
	ModTime time.Time
}

// FileStore saves uploads and addresses them by public URL
type FileStore interface {
	// Save writes r under name and returns the public URL
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	// Delete removes the file addressed by url. Unknown files are not an error.
	Delete(ctx context.Context, url string) error
	List(ctx context.Context) ([]Object, error)
}

// New builds the FileStore selected by cfg.Driver
func New(ctx context.Context, cfg config.StorageConfig) (FileStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalDir, cfg.PublicPrefix)
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.Driver)
	}
}
