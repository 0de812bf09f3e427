package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fitzonehq/fitzone/internal/telemetry/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// RequestMetrics tracks request counts, in-flight requests and durations
func RequestMetrics(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			metricsManager.GaugeRequests.Inc()
			defer metricsManager.GaugeRequests.Dec()

			recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			start := time.Now()
			next.ServeHTTP(recorder, r)
			duration := time.Since(start)

			statusCode := strconv.Itoa(recorder.statusCode)
			metricsManager.CounterRequests.
				WithLabelValues(r.Method, statusCode).
				Inc()

			route := r.URL.Path
			if muxRoute := mux.CurrentRoute(r); muxRoute != nil {
				if name := muxRoute.GetName(); name != "" {
					route = name
				}
			}
			metricsManager.HistogramRequestDuration.
				WithLabelValues(route, r.Method, statusCode).
				Observe(duration.Seconds())
		})
	}
}
