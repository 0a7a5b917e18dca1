package metrics

import "github.com/prometheus/client_golang/prometheus"

// Judge (scoring pipeline) Prometheus metrics.
var (
	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "savant",
			Name:      "predictions_total",
			Help:      "Total number of scoring requests",
		},
		[]string{"status"},
	)

	PredictionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "savant",
			Name:      "prediction_duration_seconds",
			Help:      "End-to-end prediction duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	ClassifierFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "savant",
			Name:      "classifier_fallback_total",
			Help:      "Scoring path taken by the classifier adapter",
		},
		[]string{"path"}, // "proba" / "decision"
	)
)

var judgeMetricsRegistered bool

// RegisterJudgeMetrics registers Prometheus judge metrics. Must be called once from main.
func RegisterJudgeMetrics() {
	if judgeMetricsRegistered {
		return
	}
	prometheus.MustRegister(PredictionsTotal)
	prometheus.MustRegister(PredictionDuration)
	prometheus.MustRegister(ClassifierFallbackTotal)
	judgeMetricsRegistered = true
}
