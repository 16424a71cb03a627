package metric

import (
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry owns a dedicated Prometheus registry with the client metrics and
// Go runtime collectors registered. One Registry per session keeps metric
// registration conflict-free when a process opens several sessions.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	metrics            *Metrics
}

// NewRegistry creates a registry with all client metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		prometheusRegistry: prometheus.NewRegistry(),
		metrics:            NewMetrics(),
	}

	for _, c := range r.metrics.collectors() {
		if err := r.prometheusRegistry.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !stderrors.As(err, &already) {
				// Registration of our own fresh collectors into a fresh
				// registry can only fail on a duplicate.
				panic(err)
			}
		}
	}

	r.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Metrics returns the client metrics.
func (r *Registry) Metrics() *Metrics {
	return r.metrics
}

// PrometheusRegistry returns the underlying Prometheus registry, for wiring
// into a promhttp handler or a push gateway by the embedding application.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}
