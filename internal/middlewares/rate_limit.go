package middlewares

import (
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
)

//go:generate mockgen -source=rate_limit.go -destination=mock_rate_limit.go -package=middlewares

// RateCounter counts hits for a key inside a fixed window.
type RateCounter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimitErrorResponse is returned when a client exceeds its budget
// swagger:model RateLimitErrorResponse
type RateLimitErrorResponse struct {
	// Error message
	// default: Too many requests
	Error string `json:"error"`
}

// RateLimitMiddleware allows at most limit requests per client IP and window
// for the given scope. A limit of zero or less disables the check.
// Counter failures let the request through.
func RateLimitMiddleware(counter RateCounter, scope string, limit int64, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			count, ttl, err := counter.Increment(r.Context(), scope+":"+ip, window)
			if err != nil {
				logger.Log.Errorw("rate limiter unavailable", "scope", scope, "ip", ip, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			remaining := limit - count
			if remaining < 0 {
				remaining = 0
			}
			reset := strconv.Itoa(int(math.Ceil(ttl.Seconds())))

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", reset)

			if count > limit {
				logger.Log.Warnw("rate limit exceeded", "scope", scope, "ip", ip, "count", count)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", reset)
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(RateLimitErrorResponse{Error: "Too many requests"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr. chi's RealIP middleware has
// already replaced it with the forwarded address when one is present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
