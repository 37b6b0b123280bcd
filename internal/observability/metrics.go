package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for the alert pipeline.
type Metrics struct {
	FeedPolls     *prometheus.CounterVec // labels: outcome={success,fetch_error,parse_error}
	AlertsCurrent prometheus.Gauge

	// Reverse-geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,rate_limited,error,skipped}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}

	// Notification fan-out metrics.
	NotificationsSent *prometheus.CounterVec // labels: target={topic,token}, outcome={success,error}

	// Expiry sweep metrics.
	SweepRuns    *prometheus.CounterVec // labels: outcome={success,error}
	SweepDeleted prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FeedPolls,
		m.AlertsCurrent,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.NotificationsSent,
		m.SweepRuns,
		m.SweepDeleted,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeedPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "missing_person_alert",
			Name:      "feed_polls_total",
			Help:      "CAP feed poll attempts by outcome.",
		}, []string{"outcome"}),
		AlertsCurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "missing_person_alert",
			Name:      "alerts_current",
			Help:      "Number of alerts in the current snapshot.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "missing_person_alert",
			Name:      "geocode_requests_total",
			Help:      "Reverse-geocoding resolutions by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "missing_person_alert",
			Name:      "geocode_cache_total",
			Help:      "Reverse-geocoding cache lookups by result.",
		}, []string{"result"}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "missing_person_alert",
			Name:      "notifications_sent_total",
			Help:      "Push notification deliveries by target and outcome.",
		}, []string{"target", "outcome"}),
		SweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "missing_person_alert",
			Name:      "sweep_runs_total",
			Help:      "Expiry sweep executions by outcome.",
		}, []string{"outcome"}),
		SweepDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "missing_person_alert",
			Name:      "sweep_deleted_total",
			Help:      "Total expired reports deleted by the sweeper.",
		}),
	}
}
