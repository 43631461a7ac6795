// Package metrics defines the custom Prometheus metrics of the Sweet Shop API.
// HTTP request metrics come from echoprometheus; the counters here track
// business outcomes the request metrics cannot see.
//
// All metrics are registered with the default registry through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sweetshop"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - action: "register" or "login"
//   - result: "success", "rejected" (bad input, taken, bad credentials) or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register and login attempts, by outcome.",
	},
	[]string{"action", "result"},
)

// ── Inventory metrics ─────────────────────────────────────────────────────────

// CatalogChangesTotal counts successful catalog mutations.
// Label:
//   - op: "create", "update" or "delete"
var CatalogChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_changes_total",
		Help:      "Total number of sweets created, updated or deleted.",
	},
	[]string{"op"},
)

// StockChangesTotal counts purchase and restock requests.
// Labels:
//   - action: "purchase" or "restock"
//   - result: "ok", "replayed", "not_found", "invalid", "insufficient_stock",
//     "in_progress" or "error"
var StockChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_changes_total",
		Help:      "Total number of stock change requests, by action and outcome.",
	},
	[]string{"action", "result"},
)

// StockUnitsTotal sums the units moved by successful stock changes. Idempotent
// replays move nothing and are not counted.
// Label:
//   - action: "purchase" or "restock"
var StockUnitsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_units_total",
		Help:      "Total number of units purchased or restocked.",
	},
	[]string{"action"},
)
