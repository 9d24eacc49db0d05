// Package router picks an LLM provider for each generation request and
// retries once against a different provider when the first one fails.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/mlorentedev/roastmydouban/internal/adapter"
	"github.com/mlorentedev/roastmydouban/internal/credential"
	"github.com/mlorentedev/roastmydouban/internal/metrics"
)

// ErrNoProviderAvailable means no provider has a credential for this request.
var ErrNoProviderAvailable = errors.New("no LLM provider configured")

// GenerationError reports that every attempted provider failed.
type GenerationError struct {
	Attempts []error
}

func (e *GenerationError) Error() string {
	msgs := make([]string, len(e.Attempts))
	for i, err := range e.Attempts {
		msgs[i] = err.Error()
	}
	return "all providers failed: " + strings.Join(msgs, "; ")
}

func (e *GenerationError) Unwrap() []error { return e.Attempts }

// Selector returns an index in [0, n). n is always positive.
type Selector func(n int) int

// RandomSelector draws uniformly from src. Like src, it is not safe for
// concurrent use.
func RandomSelector(src rand.Source) Selector {
	r := rand.New(src)
	return func(n int) int { return r.Intn(n) }
}

// Descriptor is one member of the eligible pool.
type Descriptor struct {
	Provider   adapter.Provider
	Credential string
}

// Router holds the registered providers and their server-side credentials.
// It is immutable after construction.
type Router struct {
	providers []adapter.Provider
	defaults  credential.Set
	selectFn  Selector
}

// New builds a Router. A nil selector draws from the package-level math/rand source.
func New(providers []adapter.Provider, defaults credential.Set, sel Selector) *Router {
	if sel == nil {
		sel = rand.Intn
	}
	defs := make(credential.Set, len(defaults))
	for k, v := range defaults {
		defs[k] = v
	}
	return &Router{
		providers: append([]adapter.Provider(nil), providers...),
		defaults:  defs,
		selectFn:  sel,
	}
}

// Providers returns the registered providers in registration order.
func (r *Router) Providers() []adapter.Provider {
	return append([]adapter.Provider(nil), r.providers...)
}

// Pool returns the eligible pool for a request. When the caller supplied an
// override for any registered provider, the pool is restricted to the
// providers the caller named. Overrides that only name unregistered
// providers leave the server defaults in place.
func (r *Router) Pool(overrides credential.Set) []Descriptor {
	restrict := false
	for _, p := range r.providers {
		if overrides.Has(p.Name()) {
			restrict = true
			break
		}
	}
	var pool []Descriptor
	for _, p := range r.providers {
		if restrict && !overrides.Has(p.Name()) {
			continue
		}
		secret, ok := credential.Resolve(p.Name(), r.defaults[p.Name()], overrides)
		if !ok {
			continue
		}
		pool = append(pool, Descriptor{Provider: p, Credential: secret})
	}
	return pool
}

// Generate invokes one provider from the pool and, on failure, one backup.
func (r *Router) Generate(ctx context.Context, prompt string, overrides credential.Set) (adapter.Outcome, error) {
	pool := r.Pool(overrides)
	if len(pool) == 0 {
		slog.Warn("llm: no provider available", "overrides", overrides.Len())
		return adapter.Outcome{}, ErrNoProviderAvailable
	}

	primary := pool[r.selectFn(len(pool))]
	slog.Info("llm: selected provider", "provider", primary.Provider.Name(), "pool", len(pool))

	out, err := r.invoke(ctx, primary, prompt)
	if err == nil {
		return out, nil
	}
	slog.Error("llm: provider failed", "provider", primary.Provider.Name(), "error", err)

	backups := without(pool, primary.Provider.Name())
	if len(backups) == 0 {
		return adapter.Outcome{}, &GenerationError{Attempts: []error{err}}
	}

	backup := backups[r.selectFn(len(backups))]
	slog.Info("llm: falling back", "from", primary.Provider.Name(), "to", backup.Provider.Name())
	metrics.ProviderFallbacks.Inc()

	out, backupErr := r.invoke(ctx, backup, prompt)
	if backupErr == nil {
		return out, nil
	}
	slog.Error("llm: backup provider failed", "provider", backup.Provider.Name(), "error", backupErr)
	return adapter.Outcome{}, &GenerationError{Attempts: []error{err, backupErr}}
}

func (r *Router) invoke(ctx context.Context, d Descriptor, prompt string) (adapter.Outcome, error) {
	start := time.Now()
	out, err := d.Provider.Invoke(ctx, prompt, d.Credential)
	metrics.GenerationDuration.WithLabelValues(d.Provider.Name()).Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
		var perr *adapter.ProviderError
		if !errors.As(err, &perr) {
			err = &adapter.ProviderError{Provider: d.Provider.Name(), Err: err}
		}
	}
	metrics.ProviderInvocations.WithLabelValues(d.Provider.Name(), result).Inc()
	if err != nil {
		return adapter.Outcome{}, fmt.Errorf("invoke %s: %w", d.Provider.Name(), err)
	}
	return out, nil
}

func without(pool []Descriptor, name string) []Descriptor {
	out := make([]Descriptor, 0, len(pool))
	for _, d := range pool {
		if d.Provider.Name() != name {
			out = append(out, d)
		}
	}
	return out
}
