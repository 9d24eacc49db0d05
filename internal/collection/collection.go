// Package collection serves a user's Douban history through the result cache.
package collection

import (
	"context"
	"log/slog"

	"github.com/mlorentedev/roastmydouban/internal/cache"
	"github.com/mlorentedev/roastmydouban/internal/douban"
	"github.com/mlorentedev/roastmydouban/internal/metrics"
)

// MinCacheable is the smallest record count worth caching. Thinner histories
// are fetched fresh every time.
const MinCacheable = 30

// Fetcher is the upstream source of interests.
type Fetcher interface {
	FetchAll(ctx context.Context, userID, category string) (douban.Collection, error)
}

type Service struct {
	fetcher Fetcher
	cache   *cache.Cache
}

func NewService(fetcher Fetcher, c *cache.Cache) *Service {
	return &Service{fetcher: fetcher, cache: c}
}

// Load returns the cached collection for (userID, category) or fetches it.
// Upstream errors are returned unchanged for the handler to classify.
func (s *Service) Load(ctx context.Context, userID, category string) (douban.Collection, error) {
	key := cache.Key(userID, category)

	var cached douban.Collection
	if s.cache.GetInto(ctx, key, &cached) {
		slog.Info("cache: hit", "key", key)
		return cached, nil
	}
	slog.Info("cache: miss, fetching from douban", "key", key)

	result, err := s.fetcher.FetchAll(ctx, userID, category)
	if err != nil {
		return douban.Collection{}, err
	}
	metrics.UpstreamItems.Observe(float64(result.Count))

	if result.Count >= MinCacheable {
		s.cache.Set(ctx, key, result)
	} else {
		slog.Info("cache: skipped", "key", key, "count", result.Count, "min", MinCacheable)
	}
	return result, nil
}
