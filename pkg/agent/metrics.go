// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package agent

import "github.com/prometheus/client_golang/prometheus"

// agentRequests counts Process invocations per agent name and outcome:
// metrics accumulation on the agent, not just the continuation engine.
var agentRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "refactorctl_agent_requests_total",
		Help: "Agent Runtime invocations by agent name and outcome.",
	},
	[]string{"agent", "outcome"},
)

// agentDuration observes invocation latency per agent name.
var agentDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "refactorctl_agent_duration_seconds",
		Help:    "Agent Runtime invocation duration by agent name.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"agent"},
)

func init() {
	prometheus.MustRegister(agentRequests, agentDuration)
}

func observeOutcome(agentName string, success bool, seconds float64) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	agentRequests.WithLabelValues(agentName, outcome).Inc()
	agentDuration.WithLabelValues(agentName).Observe(seconds)
}
