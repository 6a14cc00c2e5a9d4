package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nguyentantai21042004/protocol-flow/internal/config"
)

// New builds the store selected by cfg. When caching is disabled a store
// that never hits is returned.
func New(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		return Nop(), nil
	}

	switch cfg.Backend {
	case "file":
		return NewFileStore(cfg.Dir)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		return NewRedisStore(client, cfg.Redis.KeyPrefix), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}

type nopStore struct{}

// Nop returns a store that never hits and discards writes.
func Nop() Store { return nopStore{} }

func (nopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (nopStore) Put(context.Context, string, []byte) error         { return nil }
func (nopStore) Delete(context.Context, string) error              { return nil }
