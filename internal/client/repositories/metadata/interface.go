// Package metadata is a small key/value table in the local database. The
// client keeps its cached identity and credential cookies there.
package metadata

import (
	"context"
	"errors"
)

// ErrNotFound is returned by GetJSON when the key is absent.
var ErrNotFound = errors.New("metadata key not found")

type Repository interface {
	// Get returns (nil, nil) when the key is absent. A present key
	// always yields a non-nil slice, empty for an empty value.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
