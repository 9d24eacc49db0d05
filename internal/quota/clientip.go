package quota

import (
	"net"
	"net/http"
	"strings"
)

// proxyHeaders are consulted in order before the connection address.
var proxyHeaders = []string{"X-Real-IP", "CF-Connecting-IP", "X-Vercel-Forwarded-For"}

// ClientIP returns the best-effort client address for r, or "" when none
// can be determined.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	for _, h := range proxyHeaders {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
			return v
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
