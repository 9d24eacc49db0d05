package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/mlorentedev/roastmydouban/internal/metrics"
)

// UnmatchedRoute labels requests no route claimed (404s, 405s).
const UnmatchedRoute = "unmatched"

type routeKey struct{}

// Metrics records request count by method, route template, and status code.
// The template comes from RouteLabel; without it every request is counted
// as UnmatchedRoute, which keeps the path label bounded.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := new(atomic.Pointer[string])
		ctx := context.WithValue(r.Context(), routeKey{}, route)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(ctx))

		label := UnmatchedRoute
		if p := route.Load(); p != nil {
			label = *p
		}
		metrics.RequestsTotal.WithLabelValues(r.Method, label, strconv.Itoa(sw.status)).Inc()
	})
}

// RouteLabel hands the matched route template back to Metrics. Register it
// with mux.Router.Use so it only runs once a route has matched.
func RouteLabel(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if route, ok := r.Context().Value(routeKey{}).(*atomic.Pointer[string]); ok {
			if cur := mux.CurrentRoute(r); cur != nil {
				if tmpl, err := cur.GetPathTemplate(); err == nil {
					route.Store(&tmpl)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
