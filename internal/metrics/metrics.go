package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// checkinsTotal counts analysed check-ins by resulting risk level
	checkinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neuroguard_checkins_total",
		Help: "Analysed check-ins by risk level",
	}, []string{"risk"})

	// crisisTotal counts check-ins that matched the crisis lexicon
	crisisTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neuroguard_crisis_detections_total",
		Help: "Check-ins flagged by the crisis phrase detector",
	})

	// classifierOutcomes counts classifier calls by provider and result
	classifierOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neuroguard_classifier_outcomes_total",
		Help: "Classifier calls by provider and result (ok or failure reason)",
	}, []string{"provider", "result"})

	// classifierDuration tracks classifier latency
	classifierDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "neuroguard_classifier_duration_seconds",
		Help:    "Classifier call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
	}, []string{"provider"})
)

// ObserveCheckin records one completed assessment.
func ObserveCheckin(risk string, crisis bool) {
	checkinsTotal.WithLabelValues(risk).Inc()
	if crisis {
		crisisTotal.Inc()
	}
}

// ObserveClassifier records one classifier call. result is "ok" or the
// failure reason.
func ObserveClassifier(provider, result string, elapsed time.Duration) {
	classifierOutcomes.WithLabelValues(provider, result).Inc()
	classifierDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
