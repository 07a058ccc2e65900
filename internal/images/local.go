package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps images on disk and serves them under baseURL + "/uploads/".
// With an empty baseURL the origin attached by WithBaseURL is used instead.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory images are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Put writes the image to dir/key.
func (s *LocalStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (*Stored, error) {
	key = filepath.Base(key)
	f, err := os.OpenFile(filepath.Join(s.dir, key), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close image file: %w", err)
	}

	baseURL := s.baseURL
	if baseURL == "" {
		baseURL = strings.TrimRight(baseURLFrom(ctx), "/")
	}
	return &Stored{Key: key, URL: baseURL + "/uploads/" + key}, nil
}

// Delete removes dir/key. A missing file is not an error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}
