// Package metrics provides Prometheus metrics for the sample API.
package metrics

import (
	"maps"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace prefixes every metric name, usually with Namespace(service_name).
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets the latency buckets in milliseconds. Unsorted
// input is sorted; an empty slice keeps the defaults.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) == 0 {
			return
		}
		b := slices.Clone(buckets)
		slices.Sort(b)
		m.histogramBuckets = slices.Compact(b)
	}
}

// WithConstLabels adds labels attached to every series, such as the service
// name and the deployment stage. Labels with empty values are skipped.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		merged := maps.Clone(m.constLabels)
		if merged == nil {
			merged = prometheus.Labels{}
		}
		for k, v := range labels {
			if v != "" {
				merged[k] = v
			}
		}
		m.constLabels = merged
	}
}

// WithPrometheusRegistry sets a custom Prometheus registry.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
