package webservice

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// WithWatcher overrides how the version document is watched.
func WithWatcher(watch func(ctx context.Context, path string) (<-chan struct{}, <-chan error, error)) Options {
	return func(o *options) {
		o.watch = watch
	}
}

// WithRegistry overrides the registry collecting the server metrics.
func WithRegistry(reg *prometheus.Registry) Options {
	return func(o *options) {
		o.registry = reg
	}
}

// StaleGauge returns the gauge reporting a version document changed on disk.
func (s *Server) StaleGauge() prometheus.Gauge {
	return s.stale
}
