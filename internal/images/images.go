// Package images stores bill photos uploaded with a new session.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrTooLarge        = errors.New("bill image is too large")
	ErrUnsupportedType = errors.New("bill image must be a JPEG, PNG, WebP, GIF or HEIC image")
)

// allowedTypes are matched against the sniffed content, not the client's header.
var allowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/heic", "image/heif"}

type baseURLKey struct{}

// WithBaseURL records the origin images are served from for this request.
// Stores configured without a fixed base URL build image URLs from it.
func WithBaseURL(ctx context.Context, baseURL string) context.Context {
	return context.WithValue(ctx, baseURLKey{}, baseURL)
}

func baseURLFrom(ctx context.Context) string {
	baseURL, _ := ctx.Value(baseURLKey{}).(string)
	return baseURL
}

// Stored identifies an image after upload.
type Stored struct {
	// Key is the store-specific name used to delete the image later.
	Key string
	// URL is where clients fetch the image.
	URL string
}

// Store persists image bytes under a key.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (*Stored, error)
	Delete(ctx context.Context, key string) error
}

// Uploader validates uploads and hands them to a Store.
type Uploader struct {
	store    Store
	maxBytes int64
}

// NewUploader creates an uploader that rejects images larger than maxBytes.
func NewUploader(store Store, maxBytes int64) *Uploader {
	return &Uploader{store: store, maxBytes: maxBytes}
}

// MaxBytes returns the upload size limit.
func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

// Upload reads the image, checks its size and sniffed type, and stores it
// under a fresh random key.
func (u *Uploader) Upload(ctx context.Context, r io.Reader) (*Stored, error) {
	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > u.maxBytes {
		return nil, ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !allowed(mtype) {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedType, mtype.String())
	}

	key := uuid.New().String() + mtype.Extension()
	stored, err := u.store.Put(ctx, key, mtype.String(), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	return stored, nil
}

// Delete removes a previously stored image. An empty key is a no-op.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return u.store.Delete(ctx, key)
}

func allowed(mtype *mimetype.MIME) bool {
	for _, t := range allowedTypes {
		if mtype.Is(t) {
			return true
		}
	}
	return false
}
