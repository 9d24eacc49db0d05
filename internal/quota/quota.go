// Package quota enforces a fixed daily request ceiling per client address.
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mlorentedev/roastmydouban/internal/metrics"
)

// DefaultDailyLimit is the per-address ceiling used when none is configured.
const DefaultDailyLimit = 5

const keyPrefix = "@rmd/ratelimit"

// Counter atomically increments key and expires it at expireAt.
type Counter interface {
	Incr(ctx context.Context, key string, expireAt time.Time) (int64, error)
}

// Decision is the outcome of one check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
}

// Guard counts requests per (address, UTC day). It fails open when the
// address is unknown or the counter store errors.
type Guard struct {
	counter Counter
	limit   int
	now     func() time.Time
}

// Option configures a Guard.
type Option func(*Guard)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

func New(counter Counter, limit int, opts ...Option) *Guard {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	g := &Guard{counter: counter, limit: limit, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Limit returns the configured daily ceiling.
func (g *Guard) Limit() int { return g.limit }

// Identity is the counter identity for an address on the day containing t.
func Identity(clientIP string, t time.Time) string {
	return clientIP + ":" + t.UTC().Format("2006-01-02")
}

// Check counts one request for clientIP and reports whether it may proceed.
func (g *Guard) Check(ctx context.Context, clientIP string) Decision {
	if clientIP == "" || g.counter == nil {
		metrics.QuotaDecisions.WithLabelValues("fail_open").Inc()
		return Decision{Allowed: true, Limit: g.limit, Remaining: g.limit}
	}

	now := g.now().UTC()
	windowEnd := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	key := fmt.Sprintf("%s:%s", keyPrefix, Identity(clientIP, now))

	count, err := g.counter.Incr(ctx, key, windowEnd)
	if err != nil {
		slog.Error("quota: counter store unavailable, allowing request", "client_ip", clientIP, "error", err)
		metrics.QuotaDecisions.WithLabelValues("fail_open").Inc()
		return Decision{Allowed: true, Limit: g.limit, Remaining: g.limit}
	}

	if count > int64(g.limit) {
		metrics.QuotaDecisions.WithLabelValues("rejected").Inc()
		return Decision{Allowed: false, Limit: g.limit, Remaining: 0}
	}

	metrics.QuotaDecisions.WithLabelValues("allowed").Inc()
	return Decision{Allowed: true, Limit: g.limit, Remaining: g.limit - int(count)}
}
