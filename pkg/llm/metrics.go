package llm

import "github.com/prometheus/client_golang/prometheus"

// continuationJoins counts join-cascade outcomes across every
// continuation loop in the process, labeled by provider and the
// strategy that ultimately produced the joined content.
var continuationJoins = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "refactorctl_continuation_joins_total",
		Help: "Continuation join cascade outcomes by provider and strategy.",
	},
	[]string{"provider", "strategy"},
)

// continuationAttempts counts continuation-loop round trips, labeled by
// provider.
var continuationAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "refactorctl_continuation_attempts_total",
		Help: "Continuation loop round trips by provider.",
	},
	[]string{"provider"},
)

func init() {
	prometheus.MustRegister(continuationJoins, continuationAttempts)
}

func observeJoin(provider string, strategy JoinStrategy) {
	continuationJoins.WithLabelValues(provider, string(strategy)).Inc()
}

func observeAttempt(provider string) {
	continuationAttempts.WithLabelValues(provider).Inc()
}
