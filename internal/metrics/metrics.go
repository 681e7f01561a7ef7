// Package metrics exposes call engine counters on the default Prometheus
// registry; serve mounts them at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CallsTotal counts finished calls.
	// Labels: status (SUCCESS|FAIL)
	CallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callbot_calls_total",
			Help: "Total number of finished calls by final status",
		},
		[]string{"status"},
	)

	// TerminationsTotal counts calls ended by a hangup.
	// Labels: initiator (bot|human)
	TerminationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callbot_terminations_total",
			Help: "Total number of hangups by initiator",
		},
		[]string{"initiator"},
	)

	UtterancesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "callbot_utterances_total",
			Help: "Total number of captured caller utterances",
		},
	)

	// LookupsTotal counts content lookups.
	// Labels: kind (movie|series), outcome (ok|empty|error)
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callbot_lookups_total",
			Help: "Total number of content lookups by media kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

func ObserveCall(status string) {
	CallsTotal.WithLabelValues(status).Inc()
}

func ObserveTermination(initiator string) {
	TerminationsTotal.WithLabelValues(initiator).Inc()
}

func ObserveUtterance() {
	UtterancesTotal.Inc()
}

func ObserveLookup(kind, outcome string) {
	LookupsTotal.WithLabelValues(kind, outcome).Inc()
}
