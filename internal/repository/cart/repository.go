package cart

import (
	"context"
)

// KeyPrefix namespaces cart snapshots; the user id is appended.
const KeyPrefix = "@bookshop_cart"

// Store keeps opaque cart snapshots keyed by session. Get returns
// domain.ErrNotFound when no snapshot exists.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
