package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/mlorentedev/roastmydouban/internal/adapter"
	"github.com/mlorentedev/roastmydouban/internal/credential"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type quotaStatus struct {
	Backend    string `json:"backend"`
	DailyLimit int    `json:"daily_limit"`
}

type healthResponse struct {
	Status    string          `json:"status"`
	Providers map[string]bool `json:"providers"`
	Cache     string          `json:"cache"`
	Quota     quotaStatus     `json:"quota"`
}

// Health reports which providers have a server-side credential and whether
// the shared store answers. A nil store reports "disabled".
func Health(providers []adapter.Provider, defaults credential.Set, store Pinger, dailyLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configured := make(map[string]bool, len(providers))
		for _, p := range providers {
			configured[p.Name()] = defaults.Has(p.Name())
		}

		backend := "disabled"
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			backend = "ok"
			if err := store.Ping(ctx); err != nil {
				backend = "unavailable"
			}
		}

		writeJSON(w, http.StatusOK, healthResponse{
			Status:    "ok",
			Providers: configured,
			Cache:     backend,
			Quota:     quotaStatus{Backend: backend, DailyLimit: dailyLimit},
		})
	}
}
