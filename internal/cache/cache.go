// Package cache is a short-lived result cache in front of the Douban fetch.
// Backing-store failures never reach the caller: reads degrade to a miss and
// writes to a no-op.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gowebpki/jcs"

	"github.com/mlorentedev/roastmydouban/internal/metrics"
)

// DefaultTTL is how long an entry lives after it is written.
const DefaultTTL = 7 * 24 * time.Hour

const keyPrefix = "@rmd/cache:douban"

// Store is the key-value backend. ok is false on a clean miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache reads and writes JSON payloads. A nil Store makes every Get a miss.
type Cache struct {
	store Store
	ttl   time.Duration
}

func New(store Store) *Cache {
	return &Cache{store: store, ttl: DefaultTTL}
}

// Key builds the composite key for a subject and content category.
func Key(subjectID, category string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, subjectID, category)
}

// Get returns the raw JSON stored at key.
func (c *Cache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	if c == nil || c.store == nil {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		slog.Error("cache: get failed", "key", key, "error", err)
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false
	}
	if !ok || !json.Valid(data) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return data, true
}

// GetInto decodes the entry at key into dst. Undecodable entries count as a miss.
func (c *Cache) GetInto(ctx context.Context, key string, dst any) bool {
	data, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.Error("cache: decode failed", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores value as canonical (RFC 8785) JSON with the cache TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.store == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		slog.Error("cache: marshal failed", "key", key, "error", err)
		return
	}
	canonical, err := jcs.Transform(data)
	if err != nil {
		slog.Error("cache: canonicalize failed", "key", key, "error", err)
		return
	}

	if err := c.store.Set(ctx, key, canonical, c.ttl); err != nil {
		slog.Error("cache: set failed", "key", key, "error", err)
	}
}
