package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mlorentedev/roastmydouban/internal/quota"
)

// QuotaChecker decides whether a client may make another request today.
type QuotaChecker interface {
	Check(ctx context.Context, clientIP string) quota.Decision
}

type quotaResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

const quotaMessage = "请求太频繁啦，请休息一下，明天再试吧"

// Quota rejects requests over the daily ceiling with HTTP 429.
func Quota(guard QuotaChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := quota.ClientIP(r)
			d := guard.Check(r.Context(), ip)
			if !d.Allowed {
				slog.Warn("quota exceeded",
					"request_id", RequestIDFromContext(r.Context()),
					"client_ip", ip,
					"limit", d.Limit,
				)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(quotaResponse{Error: "rate limit exceeded", Message: quotaMessage})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
