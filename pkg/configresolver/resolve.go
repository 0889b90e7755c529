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

package configresolver

import (
	"fmt"

	"github.com/kadirpekel/refactorctl/pkg/refoerr"
)

// ResolveAgentValue implements the agent configuration resolution
// chain: explicit argument -> llm_config.agents.<name>.<key>
// -> provider default -> llm_config.default_model -> ConfigurationMissing.
//
// provider is the provider name used to look up
// llm_config.providers.<provider>.default_model when key is "model"; for
// other keys the provider-default step is skipped since the source only
// documents a model default at the provider level.
func (n *Node) ResolveAgentValue(agentName, key, explicit, provider string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if v, ok := n.GetString(fmt.Sprintf("llm_config.agents.%s.%s", agentName, key)); ok && v != "" {
		return v, nil
	}

	if key == "model" && provider != "" {
		if v, ok := n.GetString(fmt.Sprintf("llm_config.providers.%s.default_model", provider)); ok && v != "" {
			return v, nil
		}
	}

	if v, ok := n.GetString(fmt.Sprintf("llm_config.default_%s", key)); ok && v != "" {
		return v, nil
	}

	return "", refoerr.New(refoerr.ConfigurationMissing,
		fmt.Sprintf("no %s specified for agent %q and no defaults found", key, agentName))
}

// AgentNode returns the bound config view for an agent's own section,
// i.e. GetNode("llm_config.agents.<name>").
func (n *Node) AgentNode(agentName string) *Node {
	return n.GetNode(fmt.Sprintf("llm_config.agents.%s", agentName))
}

// ProviderNode returns the bound config view for a provider's section.
func (n *Node) ProviderNode(provider string) *Node {
	return n.GetNode(fmt.Sprintf("llm_config.providers.%s", provider))
}
