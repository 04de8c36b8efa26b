// Package storage provides the media storage backends.
package storage

import (
	"context"
	"io"
)

// Storage persists uploaded media under a storage name. Save must not
// return until the write is durable.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) error
}
