package metrics

import "github.com/prometheus/client_golang/prometheus"

// Trials registry Prometheus metrics.
var (
	RegistryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trialscout",
			Name:      "registry_requests_total",
			Help:      "Total number of trials registry requests",
		},
		[]string{"form", "status"}, // form: "query" / "body"
	)

	RegistryRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trialscout",
			Name:      "registry_request_duration_seconds",
			Help:      "Trials registry request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"form"},
	)

	MetadataCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trialscout",
			Name:      "metadata_cache_total",
			Help:      "Trial metadata cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registryMetricsRegistered bool

// RegisterRegistryMetrics registers Prometheus registry metrics. Must be called once from main.
func RegisterRegistryMetrics() {
	if registryMetricsRegistered {
		return
	}
	prometheus.MustRegister(RegistryRequestsTotal)
	prometheus.MustRegister(RegistryRequestDuration)
	prometheus.MustRegister(MetadataCacheTotal)
	registryMetricsRegistered = true
}
