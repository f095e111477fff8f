// Package metrics defines and registers the custom Prometheus metrics of the
// admin console. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marketplace/admin-console/internal/core/domain"
)

const namespace = "console"

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard decisions.
// Labels:
//   - verdict: "allow", "pending", "redirect_login", "redirect_unauthorized", "redirect_landing"
//   - capability: the capability the route requires, or "none"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by verdict and capability.",
	},
	[]string{"verdict", "capability"},
)

// StoreGateChecksTotal counts resource validity gate outcomes.
// Label:
//   - state: "valid", "missing", "invalid-status", "not-applicable", or "error"
var StoreGateChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_gate_checks_total",
		Help:      "Total number of merchant store gate checks, by resulting state.",
	},
	[]string{"state"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session state transitions.
// Label:
//   - state: the state entered
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by state entered.",
	},
	[]string{"state"},
)

// SessionAuthenticated is 1 while the console holds an authenticated session.
var SessionAuthenticated = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_authenticated",
		Help:      "1 while the console session is authenticated, 0 otherwise.",
	},
)

// ObserveSession records one session transition.
func ObserveSession(s domain.Session) {
	SessionTransitionsTotal.WithLabelValues(string(s.State)).Inc()
	if s.State == domain.StateAuthenticated {
		SessionAuthenticated.Set(1)
	} else {
		SessionAuthenticated.Set(0)
	}
}
