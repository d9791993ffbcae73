package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// GetJSON decodes the entry under key into v. A miss is (false, nil); an
// entry that does not decode is reported as [ErrCorrupt].
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%s: %w: %v", key, ErrCorrupt, err)
	}
	return true, nil
}

// SetJSON encodes v under key and returns the encoded size.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return 0, err
	}
	return len(data), nil
}
