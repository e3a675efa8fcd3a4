package orchestration

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the orchestration metrics. The CLI writes it out as a
// textfile after each run.
var Registry = prometheus.NewRegistry()

var (
	clusterCreateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudweave",
			Subsystem: "cluster",
			Name:      "create_total",
			Help:      "Total number of cluster create requests by final status",
		},
		[]string{"status"},
	)

	backendCreateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudweave",
			Subsystem: "backend",
			Name:      "create_total",
			Help:      "Total number of CreateInstances calls by backend, role and result",
		},
		[]string{"backend", "role", "result"},
	)

	backendCreateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cloudweave",
			Subsystem: "backend",
			Name:      "create_duration_seconds",
			Help:      "Duration of CreateInstances calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 11), // 1s to ~17min
		},
		[]string{"backend", "role"},
	)

	handshakeAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cloudweave",
			Name:      "handshake_attempts",
			Help:      "Number of attempts needed to fetch the join secret",
			Buckets:   prometheus.LinearBuckets(1, 1, 20),
		},
	)
)

func init() {
	Registry.MustRegister(
		clusterCreateTotal,
		backendCreateTotal,
		backendCreateDuration,
		handshakeAttempts,
	)
}

// RecordClusterCreate records the final status of a cluster create request.
func RecordClusterCreate(status State) {
	clusterCreateTotal.WithLabelValues(string(status)).Inc()
}

// RecordBackendCreate records one CreateInstances call.
func RecordBackendCreate(backendName, role string, err error, duration time.Duration) {
	result := "success"
	if err != nil {
		result = "error"
	}
	backendCreateTotal.WithLabelValues(backendName, role, result).Inc()
	backendCreateDuration.WithLabelValues(backendName, role).Observe(duration.Seconds())
}

// RecordHandshakeAttempts records how many attempts a handshake took.
func RecordHandshakeAttempts(attempts int) {
	handshakeAttempts.Observe(float64(attempts))
}
