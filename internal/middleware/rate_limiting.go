package middleware

import (
	"context"
	"net/http"

	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"

	"github.com/fitzonehq/fitzone/internal/telemetry/metrics"
	"github.com/fitzonehq/fitzone/pkg"
)

// RequestRateLimiter is implemented by redis_rate.Limiter
type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit limits the number of requests per minute per caller IP.
// Local callers are exempt.
func RateLimit(
	limiter RequestRateLimiter,
	routerName string,
	allowedPerMin int,
	metricsManager *metrics.Manager,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			userIP, err := pkg.ReadUserIP(r)
			if err != nil {
				log.Errorf("rate limit [%s]: read user IP: %s", routerName, err)
				next.ServeHTTP(w, r)
				return
			}

			if pkg.IPIsLocal(userIP) {
				next.ServeHTTP(w, r)
				return
			}

			res, err := limiter.Allow(r.Context(), routerName+"||"+userIP, redis_rate.PerMinute(allowedPerMin))
			if err != nil {
				// fail open, the limiter backend being down
				// should not lock everyone out
				log.Errorf("rate limit [%s]: %s", routerName, err)
				next.ServeHTTP(w, r)
				return
			}

			if res.Allowed <= 0 {
				metricsManager.CounterRateLimitedRequests.Inc()
				log.Warnf("rate limit [%s]: rejecting %s", routerName, userIP)
				pkg.WriteResponse(w, pkg.ContentType.Text, "calm down", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
