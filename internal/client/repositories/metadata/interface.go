package metadata

import (
	"context"
)

// Repository is a durable string-keyed byte store.
// Get returns common.ErrNotFound for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
