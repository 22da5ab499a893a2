package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atendimento_sessions_created_total",
		Help: "Sessions registered, scheduled or immediate.",
	})

	SessionsFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atendimento_sessions_finished_total",
		Help: "Sessions checked out and billed.",
	})

	SessionsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atendimento_sessions_cancelled_total",
		Help: "Sessions cancelled before checkout.",
	})

	CommissionsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atendimento_commissions_settled_total",
		Help: "Commission entries marked paid through the ledger.",
	})
)
