package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"replate-api/internal/adapters/storage"
	"replate-api/internal/core/domain"

	"github.com/google/uuid"
)

// MaxUploadSize is the per-file limit for images
const MaxUploadSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// Upload is one file received from a multipart form
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Validate checks extension, declared content type and size
func (u *Upload) Validate() error {
	ext := strings.ToLower(filepath.Ext(u.Filename))
	want, ok := allowedImageTypes[ext]
	if !ok {
		return domain.NewValidationError("Only image files (jpeg, jpg, png, gif) are allowed")
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(u.ContentType, ";", 2)[0]))
	if ct != want && !(ct == "image/jpg" && want == "image/jpeg") {
		return domain.NewValidationError("Only image files (jpeg, jpg, png, gif) are allowed")
	}
	if u.Size > MaxUploadSize {
		return domain.NewValidationError("File too large. Maximum size is 5MB")
	}
	return nil
}

// objectName is <field>-<unix-ms>-<uuid>.<ext>
func (u *Upload) objectName(now time.Time) string {
	return fmt.Sprintf("%s-%d-%s%s", u.Field, now.UnixMilli(), uuid.NewString(), strings.ToLower(filepath.Ext(u.Filename)))
}

// uploadBatch saves files and can undo everything it saved
type uploadBatch struct {
	files storage.FileStore
	urls  []string
}

func (b *uploadBatch) save(ctx context.Context, u *Upload, now time.Time) (string, error) {
	url, err := b.files.Save(ctx, u.objectName(now), u.Reader, u.Size, u.ContentType)
	if err != nil {
		return "", err
	}
	b.urls = append(b.urls, url)
	return url, nil
}

// rollback removes every file saved so far. Failures are left to the janitor.
func (b *uploadBatch) rollback(ctx context.Context) {
	for _, url := range b.urls {
		deleteQuietly(ctx, b.files, url)
	}
	b.urls = nil
}
