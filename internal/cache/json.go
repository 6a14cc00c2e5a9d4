package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetJSON loads key and decodes it into a value of type T. The boolean is
// false on a miss.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var val T
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return val, false, err
	}
	if err := json.Unmarshal(raw, &val); err != nil {
		return val, false, fmt.Errorf("cache unmarshal %q: %w", key, err)
	}
	return val, true, nil
}

// PutJSON encodes val as JSON and stores it under key.
func PutJSON[T any](ctx context.Context, s Store, key string, val T) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("cache marshal %q: %w", key, err)
	}
	return s.Put(ctx, key, data)
}
