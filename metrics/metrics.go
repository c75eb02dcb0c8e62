package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Result label values for AnalysisRequestsTotal.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultDisabled = "disabled"
)

var (
	once sync.Once

	// VisionEnabled is 1 when the Google Vision client initialized successfully.
	VisionEnabled = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "moments",
		Subsystem: "mlservice",
		Name:      "vision_enabled",
		Help:      "Whether the Google Vision client is available (1) or the service runs degraded (0).",
	})

	// AnalysisRequestsTotal counts analysis operations by outcome.
	AnalysisRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moments",
		Subsystem: "mlservice",
		Name:      "analysis_requests_total",
		Help:      "Total number of image analysis operations, labeled by operation and result.",
	}, []string{"operation", "result"})

	// AnalysisDurationSeconds is end-to-end time per operation, including all remote calls.
	AnalysisDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "moments",
		Subsystem: "mlservice",
		Name:      "analysis_duration_seconds",
		Help:      "End-to-end time per image analysis operation.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"operation"})
)

// Register registers ml-service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			VisionEnabled,
			AnalysisRequestsTotal,
			AnalysisDurationSeconds,
		)
	})
}
