package devtool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus sink.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reobserve").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus sink.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "reobserve",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// sinkMetrics holds the Prometheus collectors for the bridge.
type sinkMetrics struct {
	eventsTotal  *prometheus.CounterVec
	rendersTotal *prometheus.CounterVec
	vetoesTotal  *prometheus.CounterVec
}

func initSinkMetrics(config MetricsConfig) *sinkMetrics {
	factory := promauto.With(config.Registry)

	return &sinkMetrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total diagnostic events by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Approved re-renders by trigger type",
			ConstLabels: config.ConstLabels,
		}, []string{"render"}),

		vetoesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "vetoes_total",
			Help:        "Rejected updates by trigger type",
			ConstLabels: config.ConstLabels,
		}, []string{"render"}),
	}
}

// Metrics returns a Func that counts events in Prometheus collectors.
//
// Metrics collected:
//   - reobserve_events_total: Counter of diagnostic events by kind
//   - reobserve_renders_total: Counter of approved renders by trigger
//   - reobserve_vetoes_total: Counter of rejected updates by trigger
//
// Collectors register once per call, so construct one sink per registry.
func Metrics(opts ...MetricsOption) Func {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	m := initSinkMetrics(config)

	return func(e Event) {
		m.eventsTotal.WithLabelValues(string(e.Kind)).Inc()

		switch e.Kind {
		case KindRender:
			m.rendersTotal.WithLabelValues(string(e.Render)).Inc()
		case KindVeto:
			m.vetoesTotal.WithLabelValues(string(e.Render)).Inc()
		}
	}
}
