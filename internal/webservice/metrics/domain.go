package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ValidationRecorder counts version combination validations by resulting status.
type ValidationRecorder struct {
	total *prometheus.CounterVec
}

// NewValidationRecorder registers the validation counter in registry.
func NewValidationRecorder(registry prometheus.Registerer) *ValidationRecorder {
	return &ValidationRecorder{
		total: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "version_validations_total",
				Help: "Tracks the number of service version combination validations by status.",
			}, []string{"status"},
		),
	}
}

// Record counts one validation ending with status.
func (v *ValidationRecorder) Record(status string) {
	v.total.WithLabelValues(status).Inc()
}

// NewDocumentStaleGauge registers the gauge set to 1 once the version document changed on
// disk after being loaded.
func NewDocumentStaleGauge(registry prometheus.Registerer) prometheus.Gauge {
	return promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "version_document_stale",
		Help: "Set to 1 when the version document changed on disk since it was loaded and a restart is required.",
	})
}
