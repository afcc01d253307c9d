package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the loan lifecycle.
type Metrics struct {
	LoansCreated  prometheus.Counter
	LoansReturned *prometheus.CounterVec
	LoansRenewed  prometheus.Counter
	FinesAccrued  prometheus.Counter
}

// New creates and registers the loan metrics.
func New() *Metrics {
	return &Metrics{
		LoansCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "locadora_loans_created_total",
			Help: "Total loans created",
		}),
		LoansReturned: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "locadora_loans_returned_total",
			Help: "Total loans returned, by outcome (on_time or late)",
		}, []string{"outcome"}),
		LoansRenewed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "locadora_loans_renewed_total",
			Help: "Total loan renewals granted",
		}),
		FinesAccrued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "locadora_fines_accrued_total",
			Help: "Total fine amount accrued in currency units",
		}),
	}
}

func (m *Metrics) IncCreated() {
	if m != nil {
		m.LoansCreated.Inc()
	}
}

func (m *Metrics) IncReturned(late bool) {
	if m != nil {
		outcome := "on_time"
		if late {
			outcome = "late"
		}
		m.LoansReturned.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncRenewed() {
	if m != nil {
		m.LoansRenewed.Inc()
	}
}

func (m *Metrics) AddFine(amount float64) {
	if m != nil {
		m.FinesAccrued.Add(amount)
	}
}
