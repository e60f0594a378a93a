package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ObjectStore is the managed store hosted images are uploaded to.
type ObjectStore interface {
	// Put stores data under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	// Owns reports whether url already points into this store.
	Owns(url string) bool
}

// LocalStore keeps images on disk below Root and serves them at PublicURL.
type LocalStore struct {
	Root      string
	PublicURL string
}

func NewLocalStore(root, publicURL string) *LocalStore {
	return &LocalStore{Root: root, PublicURL: strings.TrimRight(publicURL, "/")}
}

func (s *LocalStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := filepath.Clean("/" + key)
	destPath := filepath.Join(s.Root, clean)
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.PublicURL + filepath.ToSlash(clean), nil
}

func (s *LocalStore) Owns(url string) bool {
	return strings.HasPrefix(url, s.PublicURL+"/")
}
