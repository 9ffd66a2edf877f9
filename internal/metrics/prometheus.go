package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the collection service

var (
	// Provider metrics
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsedge_provider_calls_total",
			Help: "Total number of external provider API calls",
		},
		[]string{"sport", "resource", "status"},
	)

	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsedge_provider_call_duration_seconds",
			Help:    "Duration of provider API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sport", "resource"},
	)

	// Store metrics
	ChunkCommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsedge_chunk_commits_total",
			Help: "Total number of batch chunk commits",
		},
		[]string{"collection", "status"},
	)

	ChunkCommitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsedge_chunk_commit_duration_seconds",
			Help:    "Duration of batch chunk commits in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"collection"},
	)

	DocumentsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsedge_documents_written_total",
			Help: "Total number of documents upserted",
		},
		[]string{"collection"},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsedge_sync_operations_total",
			Help: "Total number of sync operations",
		},
		[]string{"sport", "type", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsedge_sync_duration_seconds",
			Help:    "Duration of sync operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600},
		},
		[]string{"sport", "type"},
	)

	// Isolation metrics
	IsolatedFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsedge_isolated_failures_total",
			Help: "Total number of isolated unit-of-work failures",
		},
		[]string{"sport", "category"},
	)

	SkippedUnitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsedge_skipped_units_total",
			Help: "Total number of skipped units of work",
		},
		[]string{"sport", "reason"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sportsedge_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sportsedge_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync per sport",
		},
		[]string{"sport"},
	)
)

// RecordProviderCall records a provider API call metric
func RecordProviderCall(sport, resource, status string, duration float64) {
	ProviderCallsTotal.WithLabelValues(sport, resource, status).Inc()
	ProviderCallDuration.WithLabelValues(sport, resource).Observe(duration)
}

// RecordChunkCommit records a batch chunk commit
func RecordChunkCommit(collection, status string, size int, duration float64) {
	ChunkCommitsTotal.WithLabelValues(collection, status).Inc()
	ChunkCommitDuration.WithLabelValues(collection).Observe(duration)
	if status == "ok" {
		DocumentsWritten.WithLabelValues(collection).Add(float64(size))
	}
}

// RecordSync records a sync operation
func RecordSync(sport, syncType, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(sport, syncType, status).Inc()
	SyncDuration.WithLabelValues(sport, syncType).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.WithLabelValues(sport).SetToCurrentTime()
	}
}

// RecordIsolatedFailure records a captured unit-of-work failure
func RecordIsolatedFailure(sport, category string) {
	IsolatedFailuresTotal.WithLabelValues(sport, category).Inc()
}

// RecordSkippedUnit records a skipped unit of work
func RecordSkippedUnit(sport, reason string) {
	SkippedUnitsTotal.WithLabelValues(sport, reason).Inc()
}
