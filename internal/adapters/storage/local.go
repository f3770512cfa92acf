package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local stores files in a directory served statically under prefix
type Local struct {
	dir    string
	prefix string
}

// NewLocal creates dir if needed
func NewLocal(dir, prefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage/local: create %s: %w", dir, err)
	}
	return &Local{dir: dir, prefix: "/" + strings.Trim(prefix, "/")}, nil
}

// Dir is the directory files are written to
func (l *Local) Dir() string { return l.dir }

// Prefix is the URL path files are served under
func (l *Local) Prefix() string { return l.prefix }

func (l *Local) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	name = filepath.Base(name)
	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage/local: create %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("storage/local: write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage/local: close %s: %w", name, err)
	}
	return l.prefix + "/" + name, nil
}

func (l *Local) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, l.prefix+"/") {
		return nil
	}
	// Base guards against traversal through a crafted URL
	name := filepath.Base(strings.TrimPrefix(url, l.prefix+"/"))
	err := os.Remove(filepath.Join(l.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Local) List(_ context.Context) ([]Object, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("storage/local: list: %w", err)
	}

	objects := make([]Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		objects = append(objects, Object{
			Name:    e.Name(),
			URL:     l.prefix + "/" + e.Name(),
			ModTime: info.ModTime(),
		})
	}
	return objects, nil
}
