package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds all the prometheus metrics of the service
type Manager struct {
	// CounterRequests: total count of handled requests
	CounterRequests *prometheus.CounterVec
	// CounterClassBookings: total count of created class bookings
	CounterClassBookings prometheus.Counter
	// CounterTrainerBookings: total count of created trainer bookings
	CounterTrainerBookings prometheus.Counter
	// CounterMembershipsSold: total count of purchased memberships
	CounterMembershipsSold prometheus.Counter
	// CounterHandleRequestPanic: count of panics during request handling
	CounterHandleRequestPanic prometheus.Counter
	// CounterRateLimitedRequests: count of rate limited (rejected) requests
	CounterRateLimitedRequests prometheus.Counter

	// GaugeRequests: number of requests being handled right now
	GaugeRequests prometheus.Gauge
	// GaugeLifeSignal: an oscillating value showing the service is alive
	GaugeLifeSignal prometheus.Gauge

	// HistogramRequestDuration: histogram of request durations
	HistogramRequestDuration *prometheus.HistogramVec
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)
	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "total_requests",
		}, []string{"method", "status"}),
		CounterClassBookings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "class_bookings_total",
		}),
		CounterTrainerBookings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "trainer_bookings_total",
		}),
		CounterMembershipsSold: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "memberships_sold_total",
		}),
		CounterHandleRequestPanic: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handle_request_panic",
		}),
		CounterRateLimitedRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rate_limited_requests",
		}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
		}),
		GaugeLifeSignal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "life_signal",
		}),
		HistogramRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status_code"}),
	}
}

// NewTestManager creates a metrics manager with a throwaway registry,
// meant to be used in tests
func NewTestManager() *Manager {
	return NewManager("test", "test", prometheus.NewRegistry())
}
