package main

import (
	"github.com/gabibotos/go-handoff/srv"
	"github.com/prometheus/client_golang/prometheus"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/trace"
)

type (
	Option func(*options)

	options struct {
		serverOpts     []srv.Option
		systemListener string
		isPublic       bool

		registry *prometheus.Registry
		tracer   trace.Exporter
		metrics  view.Exporter
	}
)

func newDefaultWithOptions(opts ...Option) *options {
	o := &options{
		registry: prometheus.NewRegistry(),
	}

	for _, apply := range opts {
		apply(o)
	}

	return o
}

// WithServerOption configures the listener registry.
func WithServerOption(opts ...srv.Option) Option {
	return func(o *options) {
		o.serverOpts = append(o.serverOpts, opts...)
	}
}

// SystemListener serves the system router on the named listener instead of
// the application router.
func SystemListener(name string) Option {
	return func(o *options) {
		o.systemListener = name
	}
}

// IsPublic lets the server know that it's going to be the first hop
func IsPublic() Option {
	return func(opts *options) {
		opts.isPublic = true
	}
}

// WithRegistry replaces the prometheus registry behind /metrics
func WithRegistry(reg *prometheus.Registry) Option {
	return func(opts *options) {
		opts.registry = reg
	}
}

// WithTraceExprt enable opencensus trace exporting
func WithTraceExprt(exp trace.Exporter) Option {
	return func(opts *options) {
		opts.tracer = exp
	}
}

// WithMetricsExprt enable opencensus metrics exporter
func WithMetricsExprt(exp view.Exporter) Option {
	return func(opts *options) {
		opts.metrics = exp
	}
}
