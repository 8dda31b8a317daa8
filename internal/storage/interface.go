package storage

import (
	"context"
	"errors"
)

var (
	ErrUnsupportedBackend = errors.New("storage: unsupported backend")
	ErrClosed             = errors.New("storage: store is closed")
)

// DocumentStore receives flat key-value records under a caller-chosen id.
type DocumentStore interface {
	Put(ctx context.Context, collection, id string, record map[string]any) error
	Close() error
}
