package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the lending desk.
type Metrics struct {
	LoginTotal      *prometheus.CounterVec
	LockoutTotal    prometheus.Counter
	LoanCreated     prometheus.Counter
	LoanReturned    prometheus.Counter
	SweepRuns       prometheus.Counter
	SweepOverdue    prometheus.Counter
	SweepDuration   prometheus.Histogram
	AuditWriteFails prometheus.Counter
}

// New registers all collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LoginTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lendtrack",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome (success, failure, locked).",
		}, []string{"outcome"}),
		LockoutTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lendtrack",
			Name:      "account_lockouts_total",
			Help:      "Accounts locked after repeated failed logins.",
		}),
		LoanCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lendtrack",
			Name:      "loans_created_total",
			Help:      "Loans successfully created.",
		}),
		LoanReturned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lendtrack",
			Name:      "loans_returned_total",
			Help:      "Loans successfully returned.",
		}),
		SweepRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lendtrack",
			Name:      "sweep_runs_total",
			Help:      "Overdue sweeper runs.",
		}),
		SweepOverdue: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lendtrack",
			Name:      "sweep_overdue_total",
			Help:      "Loans flagged overdue by the sweeper.",
		}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lendtrack",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of a single sweeper run.",
			Buckets:   prometheus.DefBuckets,
		}),
		AuditWriteFails: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lendtrack",
			Name:      "audit_write_failures_total",
			Help:      "Audit entries dropped because the store rejected the write.",
		}),
	}
}

// NewDefault registers on the default Prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
