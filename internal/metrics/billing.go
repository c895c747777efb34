package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BillingMetrics counts processed webhook events by processor, type and outcome.
type BillingMetrics struct {
	events       *prometheus.CounterVec
	ledgerAmount *prometheus.CounterVec
}

// NewBillingMetrics registers the billing collectors on reg.
func NewBillingMetrics(reg prometheus.Registerer) (*BillingMetrics, error) {
	m := &BillingMetrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_events_total",
				Help: "Total number of processor webhook events handled, by outcome.",
			},
			[]string{"processor", "type", "outcome"},
		),
		ledgerAmount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_ledger_cents_total",
				Help: "Absolute seller balance movement written to the ledger, in minor units.",
			},
			[]string{"kind", "currency"},
		),
	}
	for _, c := range []prometheus.Collector{m.events, m.ledgerAmount} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveEvent records one handled event. A nil receiver is a no-op.
func (m *BillingMetrics) ObserveEvent(processor, eventType, outcome string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(processor, eventType, outcome).Inc()
}

// ObserveLedger adds the absolute value of cents to the ledger movement counter.
func (m *BillingMetrics) ObserveLedger(kind, currency string, cents int64) {
	if m == nil {
		return
	}
	if cents < 0 {
		cents = -cents
	}
	m.ledgerAmount.WithLabelValues(kind, currency).Add(float64(cents))
}
