package blob

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	// ErrNotFound is returned by Open when no blob exists under the key.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidKey is returned for empty, absolute, or traversing keys.
	ErrInvalidKey = errors.New("invalid blob key")
	// ErrExists is returned by Put when a blob is already stored under the key.
	ErrExists = errors.New("blob already exists")
)

// Store writes byte payloads under caller-chosen keys and streams them back.
type Store interface {
	// Put is create-only: an existing key fails with ErrExists and is left
	// untouched.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Open returns a lazy stream over the blob. The caller must close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// CheckKey rejects keys that could escape a backend namespace.
func CheckKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if strings.HasPrefix(key, "/") || strings.HasPrefix(key, "\\") {
		return ErrInvalidKey
	}
	for _, segment := range strings.FieldsFunc(key, func(r rune) bool { return r == '/' || r == '\\' }) {
		if segment == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
