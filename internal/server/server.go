package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mlorentedev/roastmydouban/internal/adapter"
	"github.com/mlorentedev/roastmydouban/internal/credential"
	"github.com/mlorentedev/roastmydouban/internal/handler"
	"github.com/mlorentedev/roastmydouban/internal/middleware"
)

// Deps are the services the routes need. Store may be nil when no Redis is configured.
type Deps struct {
	Loader     handler.Loader
	Roaster    handler.Roaster
	Quota      middleware.QuotaChecker
	Providers  []adapter.Provider
	Defaults   credential.Set
	Store      handler.Pinger
	DailyLimit int
	Middleware middleware.Options
}

// SetupMux wires handlers with the full middleware chain. Only the
// generation routes count against the daily quota.
func SetupMux(d Deps) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handler.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handler.MethodNotAllowed)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", handler.Health(d.Providers, d.Defaults, d.Store, d.DailyLimit)).Methods(http.MethodGet)
	api.HandleFunc("/models", handler.Models(d.Providers, d.Defaults)).Methods(http.MethodGet)
	api.HandleFunc("/fetch-douban", handler.Fetch(d.Loader)).Methods(http.MethodPost)

	// Quota wraps each handler; a nested subrouter turns wrong-method requests into 404s.
	limit := middleware.Quota(d.Quota)
	api.Handle("/roast", limit(handler.Roast(d.Roaster))).Methods(http.MethodPost)
	api.Handle("/compliment", limit(handler.Compliment(d.Roaster))).Methods(http.MethodPost)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.Use(middleware.RouteLabel)

	return middleware.Chain(r, d.Middleware)
}
