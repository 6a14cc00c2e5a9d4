package cache

import "context"

// Store memoises stage results by deterministic key. It is an optimisation
// only: a miss must always be recoverable by recomputing the value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
