// Package cache stores rendered images keyed by a hash of their parameters.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the data for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key hashes parts into a key of the form prefix:sha256.
func Key(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// New returns the named backend: "none", "memory" or "redis".
func New(ctx context.Context, backend, redisAddr string) (Cache, error) {
	switch backend {
	case "", "none":
		return NewNullCache(), nil
	case "memory":
		return NewMemoryCache(), nil
	case "redis":
		return NewRedisCache(ctx, RedisConfig{Addr: redisAddr})
	}
	return nil, fmt.Errorf("unknown cache backend %q (must be none, memory or redis)", backend)
}
