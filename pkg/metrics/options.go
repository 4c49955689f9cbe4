package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager. Zero values leave the default in place.
type Option func(*Manager)

// WithNamespace overrides the "aimtune" metric prefix.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithSubsystem overrides the "engine" subsystem.
func WithSubsystem(sub string) Option {
	return func(m *Manager) {
		if sub != "" {
			m.subsystem = sub
		}
	}
}

// WithLatencyBuckets sets the buckets of every millisecond latency histogram.
func WithLatencyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.latencyBuckets = buckets
		}
	}
}

// WithConfidenceBuckets sets the buckets of the confidence histogram.
func WithConfidenceBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.confidenceBuckets = buckets
		}
	}
}

// WithRegisterer registers the metrics on reg instead of the default
// Prometheus registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}
