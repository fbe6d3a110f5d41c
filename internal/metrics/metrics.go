package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "microcredit_"

var (
	registerOnce sync.Once

	loansActivated    *prometheus.CounterVec
	loansRejected     prometheus.Counter
	deposits          prometheus.Counter
	withdrawals       prometheus.Counter
	reconcileMismatch prometheus.Counter
	collateralOverride prometheus.Counter
)

// Init registers the core counters. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		loansActivated = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "loans_activated_total",
				Help: "Loans moved to active, by borrower kind",
			},
			[]string{"kind"},
		)
		loansRejected = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "loans_rejected_total",
			Help: "Loans moved to cancelled",
		})
		deposits = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "collateral_deposits_total",
			Help: "Accepted collateral deposits",
		})
		withdrawals = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "collateral_withdrawals_total",
			Help: "Accepted collateral refunds",
		})
		reconcileMismatch = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "collateral_reconcile_mismatch_total",
			Help: "Blocked-savings ledger disagreed with the collateral table",
		})
		collateralOverride = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "collateral_override_total",
			Help: "Approvals that overrode an incomplete collateral verdict",
		})

		prometheus.MustRegister(
			loansActivated,
			loansRejected,
			deposits,
			withdrawals,
			reconcileMismatch,
			collateralOverride,
		)
	})
}

func LoanActivated(kind string) {
	if loansActivated != nil {
		loansActivated.WithLabelValues(kind).Inc()
	}
}

func LoanRejected() {
	if loansRejected != nil {
		loansRejected.Inc()
	}
}

func DepositAccepted() {
	if deposits != nil {
		deposits.Inc()
	}
}

func WithdrawalAccepted() {
	if withdrawals != nil {
		withdrawals.Inc()
	}
}

func ReconcileMismatch() {
	if reconcileMismatch != nil {
		reconcileMismatch.Inc()
	}
}

func CollateralOverride() {
	if collateralOverride != nil {
		collateralOverride.Inc()
	}
}
