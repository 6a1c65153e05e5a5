package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	WebhookVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_verifications_total",
			Help: "Webhook signature verifications by outcome",
		},
		[]string{"outcome"}, // valid|invalid|error
	)

	LedgerEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_events_total",
			Help: "Ledger mutations by type",
		},
		[]string{"type"}, // append|transition
	)
	LedgerDuplicates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_events_duplicate_total",
			Help: "Replayed provider events ignored by dedup",
		},
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

// Handler serves /metrics.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(WebhookVerifications)
	prometheus.MustRegister(LedgerEvents)
	prometheus.MustRegister(LedgerDuplicates)
	prometheus.MustRegister(WorkerQueueDepth)
}
