// Package metrics defines and registers all custom Prometheus metrics for
// the GreenLoop progress engine. It is the single source of truth for
// metric names, labels, and help strings.
//
// Metrics register with the default Prometheus registry via promauto at
// package load; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "greenloop"

// Ledger metrics
// ---------------------------------------------------------------------------

// PointsAwardedTotal counts points credited to user ledgers.
// Label:
//   - source: the feature that triggered the award (e.g. "scan", "favorite",
//     "cart_add", "goal_completed")
var PointsAwardedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "points_awarded_total",
		Help:      "Total points awarded, by triggering feature.",
	},
	[]string{"source"},
)

// RedeemsTotal counts reward redemption attempts.
// Label:
//   - result: "ok", "insufficient_points", "already_redeemed", "not_found", "error"
var RedeemsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "redeems_total",
		Help:      "Total reward redemption attempts, by result.",
	},
	[]string{"result"},
)

// UnlocksRecordedTotal counts achievement unlocks pinned on ledgers.
var UnlocksRecordedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unlocks_recorded_total",
		Help:      "Total achievement unlocks recorded.",
	},
)

// Scan metrics
// ---------------------------------------------------------------------------

// ScansProcessedTotal counts scan events that completed processing.
// Label:
//   - source: the reporting client surface (e.g. "mobile_app")
var ScansProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_processed_total",
		Help:      "Total number of scan events successfully processed.",
	},
	[]string{"source"},
)

// ScansDedupTotal counts scan deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new event, processed)
var ScansDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_dedup_total",
		Help:      "Total number of scan deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ScanQueueDepth tracks the number of scan events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ScanQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scan_queue_depth",
		Help:      "Current number of scan events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// Sync metrics
// ---------------------------------------------------------------------------

// SyncErrorsTotal counts listener failures surfaced to subscribers.
// Label:
//   - path: the watched document path ("ledger", "goals", "cart", "favorites")
var SyncErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_errors_total",
		Help:      "Total listener errors surfaced to subscribers, by document path.",
	},
	[]string{"path"},
)

// ActiveListeners tracks currently attached remote listeners.
// Label:
//   - path: the watched document path
var ActiveListeners = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_listeners",
		Help:      "Number of currently attached change listeners, by document path.",
	},
	[]string{"path"},
)

// Cart metrics
// ---------------------------------------------------------------------------

// CartMutationsTotal counts cart document rewrites.
// Label:
//   - op: "add", "set_quantity", "remove", "clear"
var CartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Total cart document mutations, by operation.",
	},
	[]string{"op"},
)
