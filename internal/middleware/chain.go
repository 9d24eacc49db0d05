package middleware

import (
	"net/http"
	"time"
)

// Options configures the global middleware stack.
type Options struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
	Timeout        time.Duration
}

// Chain wraps the handler with the full middleware stack.
// Order: CORS → RequestID → Logging → Metrics → MaxBytes → Timeout → mux.
// Metrics labels by route template only when the mux registers RouteLabel.
func Chain(handler http.Handler, opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}

	h := handler
	h = http.TimeoutHandler(h, opts.Timeout, `{"error":"request timeout"}`)
	h = MaxBytes(opts.MaxBodyBytes)(h)
	h = Metrics(h)
	h = Logging(h)
	h = RequestID(h)
	h = CORS(opts.AllowedOrigins)(h)
	return h
}

// MaxBytes limits the request body to n bytes.
func MaxBytes(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
