package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics tracks invoice claims and settlements.
type LedgerMetrics struct {
	claimed   prometheus.Counter
	conflicts prometheus.Counter
	settled   prometheus.Counter
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	claimed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_orders_claimed_total",
		Help: "Orders successfully claimed onto an invoice.",
	})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_claim_conflicts_total",
		Help: "Invoice creations rejected because an order was already claimed.",
	})
	settled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_invoices_settled_total",
		Help: "Invoices marked settled.",
	})
	reg.MustRegister(claimed, conflicts, settled)
	return &LedgerMetrics{
		claimed:   claimed,
		conflicts: conflicts,
		settled:   settled,
	}
}

// AddClaimed records n orders claimed in one invoice creation.
func (l *LedgerMetrics) AddClaimed(n int) {
	if l == nil || l.claimed == nil {
		return
	}
	l.claimed.Add(float64(n))
}

// IncConflict records a rejected claim attempt.
func (l *LedgerMetrics) IncConflict() {
	if l == nil || l.conflicts == nil {
		return
	}
	l.conflicts.Inc()
}

// IncSettled records a settled invoice.
func (l *LedgerMetrics) IncSettled() {
	if l == nil || l.settled == nil {
		return
	}
	l.settled.Inc()
}
