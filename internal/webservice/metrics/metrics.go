// Package metrics instruments the web service for Prometheus: HTTP traffic per endpoint and
// for the whole mux, validation outcomes and version document drift.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type label string

// LabelPath is the label used for the path in metrics.
const LabelPath label = "path"

// Middleware creates instrumented handlers registering their collectors in one registry.
type Middleware struct {
	buckets  []float64
	registry prometheus.Registerer
}

// New creates a new Middleware registering its collectors in registry.
func New(registry prometheus.Registerer) *Middleware {
	return &Middleware{
		// Lookups over an in-memory document: anything above a few ms is suspect. Max of 2.56s.
		buckets:  prometheus.ExponentialBuckets(0.0025, 2, 11),
		registry: registry,
	}
}

// Endpoint wraps the handler of a single endpoint, counting requests and measuring latencies
// and response sizes. The path label is only set for handlers calling ApplyLabels.
func (m *Middleware) Endpoint(handlerName string, handler http.Handler) http.HandlerFunc {
	reg := prometheus.WrapRegistererWith(prometheus.Labels{"handler": handlerName}, m.registry)
	labels := []string{"method", "code", string(LabelPath)}
	fromCtx := promhttp.WithLabelFromCtx(string(LabelPath), pathLabelFromCtx)

	requestsTotal := promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_endpoint_requests_total",
			Help: "Tracks the number of HTTP requests to the endpoint.",
		}, labels,
	)
	requestDuration := promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_endpoint_request_duration_seconds",
			Help:    "Tracks the latencies for HTTP requests to the endpoint.",
			Buckets: m.buckets,
		}, labels,
	)
	responseSize := promauto.With(reg).NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "http_endpoint_response_size_bytes",
			Help: "Tracks the size of HTTP responses from the endpoint.",
		}, labels,
	)

	return promhttp.InstrumentHandlerCounter(requestsTotal,
		promhttp.InstrumentHandlerDuration(requestDuration,
			promhttp.InstrumentHandlerResponseSize(responseSize, handler, fromCtx),
			fromCtx),
		fromCtx)
}

// Mux wraps the whole mux, counting every request including unrouted ones.
func (m *Middleware) Mux(handlerName string, handler http.Handler) http.HandlerFunc {
	reg := prometheus.WrapRegistererWith(prometheus.Labels{"handler": handlerName}, m.registry)
	requestsTotal := promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_mux_requests_total",
			Help: "Tracks the number of HTTP requests to the mux.",
		}, []string{"method", "code"},
	)

	return promhttp.InstrumentHandlerCounter(requestsTotal, handler)
}

func pathLabelFromCtx(ctx context.Context) string {
	if path, ok := ctx.Value(LabelPath).(string); ok {
		return path
	}
	return "unknown"
}

// ApplyLabels applies the path label to the request context.
// The request is modified in place so that wrapping instrumentation sees the label.
func ApplyLabels(r *http.Request) {
	ctx := context.WithValue(r.Context(), LabelPath, r.URL.Path)
	*r = *r.WithContext(ctx)
}

// HandlerApplyLabels is a middleware helper function to apply labels to an HTTP handler.
func HandlerApplyLabels(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ApplyLabels(r)
		handler.ServeHTTP(w, r)
	})
}
