// Package uploads holds transient uploaded files between the HTTP layer and
// the bulk import pipeline. Every stored upload is addressed by a key and is
// expected to be removed once it has been processed.
package uploads

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("upload not found")

// Store persists an upload for the lifetime of one import.
type Store interface {
	Save(ctx context.Context, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}
