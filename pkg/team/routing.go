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

package team

import "github.com/kadirpekel/refactorctl/pkg/task"

// evaluateCondition implements the built-in routing conditions:
// all_success, any_success, all_failure, any_failure.
// Any unrecognized condition evaluates false, matching
// Team._evaluate_condition's fallback.
func evaluateCondition(condition string, results []task.Result) bool {
	switch condition {
	case "all_success":
		for _, r := range results {
			if !r.Success {
				return false
			}
		}
		return true
	case "any_success":
		for _, r := range results {
			if r.Success {
				return true
			}
		}
		return false
	case "all_failure":
		for _, r := range results {
			if r.Success {
				return false
			}
		}
		return true
	case "any_failure":
		for _, r := range results {
			if !r.Success {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// determineNextTeam iterates rules in order, returning the next_team of
// the first rule whose condition evaluates true; falls back to the
// team's default otherwise.
func determineNextTeam(routing Routing, results []task.Result) string {
	for _, rule := range routing.Rules {
		if rule.Condition != "" && evaluateCondition(rule.Condition, results) {
			return rule.NextTeam
		}
	}
	return routing.Default
}
