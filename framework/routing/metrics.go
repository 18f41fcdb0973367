package routing

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the dispatch metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "branch").
	Namespace string

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Metrics records one sample per dispatched request.
type Metrics struct {
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

// NewMetrics registers the router collectors on cfg.Registry.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if cfg.Namespace == "" {
		cfg.Namespace = "branch"
	}
	if cfg.Buckets == nil {
		cfg.Buckets = prometheus.DefBuckets
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		dispatchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "router",
			Name:      "dispatch_total",
			Help:      "Total number of requests dispatched by the router",
		}, []string{"route", "method", "status"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "router",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent matching, invoking and emitting a request",
			Buckets:   cfg.Buckets,
		}, []string{"route", "method"}),
	}
}

// observe is a no-op on a nil receiver so the router can run without metrics.
func (m *Metrics) observe(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.dispatchDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// routeLabel keeps label cardinality bounded: the route name when present,
// otherwise its template, never the concrete path.
func routeLabel(rt *Route) string {
	switch {
	case rt == nil:
		return "unmatched"
	case rt.Name != "":
		return rt.Name
	default:
		return "/" + rt.Path
	}
}
