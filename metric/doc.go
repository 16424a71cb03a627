// Package metric provides Prometheus-based instrumentation for the
// GraphBridge client: bridge call counts and latencies, batch flush behavior,
// transport failures, and streaming activity.
//
// A Registry bundles a dedicated prometheus.Registry with the client metrics
// pre-registered. Long-running scripts can expose it via promhttp:
//
//	registry := metric.NewRegistry()
//	http.Handle("/metrics", promhttp.HandlerFor(
//	    registry.PrometheusRegistry(), promhttp.HandlerOpts{}))
//
// All components accept a *Metrics and treat a nil value as "no metrics", so
// instrumentation is strictly opt-in.
package metric
