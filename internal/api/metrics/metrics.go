// Package metrics defines all custom Prometheus metrics for the account
// system. It is the single source of truth for metric names, labels, and
// help strings. Metrics register with the default registry at import time
// via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "rate_limited", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthzDenialsTotal counts authorization denials.
// Label:
//   - reason: "account_gone", "role_changed", "unknown_role", "missing_permission"
var AuthzDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denials_total",
		Help:      "Total number of permission checks that were denied, by reason.",
	},
	[]string{"reason"},
)

// TerminationsTotal counts termination attempts.
// Label:
//   - result: "success", "forbidden", "conflict", "not_found", or "error"
var TerminationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "terminations_total",
		Help:      "Total number of user termination attempts, by result.",
	},
	[]string{"result"},
)

// TenantsCreatedTotal counts successfully provisioned tenants.
var TenantsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tenants_created_total",
		Help:      "Total number of tenants provisioned.",
	},
)
