package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Node/role metrics
	NodesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleetctl_nodes_total",
			Help: "Total number of nodes by code_status",
		},
		[]string{"code_status"},
	)

	NodeRolesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleetctl_node_roles_total",
			Help: "Total number of node-role assignments by status",
		},
		[]string{"status"},
	)

	CredentialsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleetctl_credentials_total",
			Help: "Total number of stored credentials by type",
		},
		[]string{"type"},
	)

	AccessTokensIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetctl_access_tokens_issued_total",
			Help: "Total number of single-use access tokens issued",
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetctl_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetctl_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Sync Orchestrator metrics
	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetctl_sync_duration_seconds",
			Help:    "Time taken for a single sync_node_role call in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	SyncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetctl_syncs_total",
			Help: "Total number of node-role syncs by outcome",
		},
		[]string{"outcome"},
	)

	// Schedule Executor metrics
	ScheduleRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetctl_schedule_runs_total",
			Help: "Total number of schedule firings by outcome",
		},
		[]string{"outcome"},
	)

	ScheduleCheckDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetctl_schedule_check_duration_seconds",
			Help:    "Time taken for a schedule-check cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Cache Manager metrics
	CacheReclaimsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetctl_cache_reclaims_total",
			Help: "Total number of cached commits reclaimed by the retention reconciler",
		},
	)

	CachePullDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetctl_cache_pull_duration_seconds",
			Help:    "Time taken to pull a commit into the local cache in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// Playbook Runner metrics
	PlaybookRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetctl_playbook_runs_total",
			Help: "Total number of playbook runs by outcome",
		},
		[]string{"outcome"},
	)

	PlaybookRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetctl_playbook_run_duration_seconds",
			Help:    "Playbook run duration in seconds",
			Buckets: []float64{5, 30, 60, 300, 600, 1800},
		},
	)
)

func init() {
	prometheus.MustRegister(NodesTotal)
	prometheus.MustRegister(NodeRolesTotal)
	prometheus.MustRegister(CredentialsTotal)
	prometheus.MustRegister(AccessTokensIssuedTotal)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(SyncDuration)
	prometheus.MustRegister(SyncsTotal)
	prometheus.MustRegister(ScheduleRunsTotal)
	prometheus.MustRegister(ScheduleCheckDuration)
	prometheus.MustRegister(CacheReclaimsTotal)
	prometheus.MustRegister(CachePullDuration)
	prometheus.MustRegister(PlaybookRunsTotal)
	prometheus.MustRegister(PlaybookRunDuration)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
