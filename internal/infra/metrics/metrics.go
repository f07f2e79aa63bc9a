package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PlansCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prodplan_plans_completed_total",
		Help: "Production plans moved to completed.",
	})

	CompletionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prodplan_completions_rejected_total",
		Help: "Completion attempts refused, by reason.",
	}, []string{"reason"}) // shortage | conflict

	MovementsPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prodplan_stock_movements_total",
		Help: "Stock movements written to the ledger, by type.",
	}, []string{"type"})
)
