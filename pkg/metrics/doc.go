/*
Package metrics provides Prometheus metrics collection and exposition for fleetctl.

The metrics package defines and registers all fleetctl metrics using the Prometheus
client library, providing observability into fleet composition, sync/schedule/playbook
outcomes, and API performance. Metrics are exposed via an HTTP endpoint for scraping
by Prometheus servers.

# Architecture

fleetctl's metrics system follows Prometheus best practices with instrumentation
across the control plane's main concerns:

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Metric Categories                  │          │
	│  │                                              │          │
	│  │  Fleet: Nodes, node-roles, credentials      │          │
	│  │  API: Request count, duration               │          │
	│  │  Sync: Orchestrator duration, outcome       │          │
	│  │  Schedule: Firing outcome, check duration   │          │
	│  │  Cache: Pull duration, reclaims             │          │
	│  │  Playbook: Run duration, outcome            │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint              │          │
	│  │  - Path: /metrics                           │          │
	│  │  - Format: Prometheus text exposition       │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core Components

Metric Registry:
  - Global Prometheus DefaultRegistry
  - All metrics registered at package init
  - Thread-safe for concurrent updates

Collector:
  - Periodically samples pkg/storage and updates gauges
  - Counts nodes by code_status, node-roles by status, credentials by type
  - Runs on a 15s ticker, started/stopped alongside the server

Timer Helper:
  - Convenience wrapper for timing operations
  - Start timer, observe duration to histogram
  - Supports label values for histogram vectors

# Metrics Catalog

Fleet Metrics:

fleetctl_nodes_total{code_status}:
  - Type: Gauge
  - Description: Total nodes by code_status (UP_TO_DATE/OUTDATED/SYNCING/FAILED/UNKNOWN)

fleetctl_node_roles_total{status}:
  - Type: Gauge
  - Description: Total node-role assignments by status (PENDING/SYNCING/ACTIVE/FAILED/DISABLED)

fleetctl_credentials_total{type}:
  - Type: Gauge
  - Description: Total stored credentials by type (SSH/TLS/VNC)

fleetctl_access_tokens_issued_total:
  - Type: Counter
  - Description: Total single-use access tokens issued

API Metrics:

fleetctl_api_requests_total{method, status}:
  - Type: Counter
  - Description: Total API requests by method and status

fleetctl_api_request_duration_seconds{method}:
  - Type: Histogram
  - Description: API request duration in seconds

Sync Orchestrator Metrics:

fleetctl_sync_duration_seconds:
  - Type: Histogram
  - Description: Time taken for a single node-role sync in seconds
  - Buckets: 1, 5, 10, 30, 60, 120, 300

fleetctl_syncs_total{outcome}:
  - Type: Counter
  - Description: Total node-role syncs by outcome (success/failure)

Schedule Executor Metrics:

fleetctl_schedule_runs_total{outcome}:
  - Type: Counter
  - Description: Total schedule firings by outcome

fleetctl_schedule_check_duration_seconds:
  - Type: Histogram
  - Description: Time taken for a schedule-check cycle

Cache Manager Metrics:

fleetctl_cache_reclaims_total:
  - Type: Counter
  - Description: Total cached commits reclaimed by the retention reconciler

fleetctl_cache_pull_duration_seconds:
  - Type: Histogram
  - Description: Time to pull a commit into the local cache

Playbook Runner Metrics:

fleetctl_playbook_runs_total{outcome}:
  - Type: Counter
  - Description: Total playbook runs by outcome

fleetctl_playbook_run_duration_seconds:
  - Type: Histogram
  - Description: Playbook run duration in seconds
  - Buckets: 5, 30, 60, 300, 600, 1800

# Usage

Updating Gauge Metrics:

	import "github.com/autobot/fleetctl/pkg/metrics"

	metrics.NodesTotal.WithLabelValues("UP_TO_DATE").Set(5)

Updating Counter Metrics:

	metrics.SyncsTotal.WithLabelValues("success").Inc()
	metrics.APIRequestsTotal.WithLabelValues("GET", "200").Add(1)

Recording Histogram Observations:

	timer := metrics.NewTimer()
	// ... perform operation ...
	timer.ObserveDuration(metrics.SyncDuration)

Using Timer with Labels:

	timer := metrics.NewTimer()
	// ... perform operation ...
	timer.ObserveDurationVec(metrics.APIRequestDuration, "GET")

# Integration Points

This package integrates with:

  - pkg/storage: The Collector reads node, node-role, and credential counts from the store
  - pkg/api: Instruments API request count and duration
  - The sync, schedule, cache, playbook, and access-token metrics above are
    registered, but no package in this module updates them
  - Prometheus: Scrapes /metrics endpoint

# Design Patterns

Package Init Registration:
  - All metrics registered in init() function
  - MustRegister panics on duplicate registration

Label Discipline:
  - Use WithLabelValues for cardinality-bounded labels
  - Avoid high-cardinality labels (node IDs, commit hashes)
  - Keep label count low

Timer Pattern:
  - Create timer at operation start
  - Explicitly call ObserveDuration/ObserveDurationVec when the operation finishes

# See Also

  - Prometheus documentation: https://prometheus.io/docs/
  - Prometheus client library: https://github.com/prometheus/client_golang
*/
package metrics
</content>
