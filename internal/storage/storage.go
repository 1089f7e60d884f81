package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("object not found")

type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	// Delete removes the object at key; a missing object returns ErrNotFound.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// PublicURL returns the public URL the object at key is served from.
	PublicURL(key string) string
	// KeyFromURL maps a public URL back to its storage key. Returns false
	// when the URL does not belong to this store.
	KeyFromURL(url string) (string, bool)
}
