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

// SystemKeys are the recognized system namespaces at the config root.
// Root-level keys outside this set are "runtime values" and get copied
// into every agent's config sub-map unless the agent already defines
// them — ported verbatim from c4h_agents/config.py's deep_merge.
var SystemKeys = map[string]bool{
	"providers":  true,
	"llm_config": true,
	"project":    true,
	"backup":     true,
	"logging":    true,
}

// DeepMerge merges override onto base following the rules in spec
// section 3:
//  1. maps are merged recursively,
//  2. sequences (slices) from override replace the base slice wholesale,
//  3. an explicit nil in override deletes the key from the result,
//  4. root-level keys outside SystemKeys are copied into every entry of
//     llm_config.agents.* unless that agent config already sets the key.
//
// base and override are never mutated; DeepMerge returns a new map.
func DeepMerge(base, override map[string]any) map[string]any {
	result := deepCopyMap(base)

	if _, hasBase := result["llm_config"]; hasBase || override["llm_config"] != nil {
		runtimeKeys := make([]string, 0, len(override))
		for k := range override {
			if !SystemKeys[k] {
				runtimeKeys = append(runtimeKeys, k)
			}
		}
		if len(runtimeKeys) > 0 {
			if llmConfig, ok := result["llm_config"].(map[string]any); ok {
				if agents, ok := llmConfig["agents"].(map[string]any); ok {
					for _, agentCfgRaw := range agents {
						agentCfg, ok := agentCfgRaw.(map[string]any)
						if !ok {
							continue
						}
						for _, key := range runtimeKeys {
							if _, exists := agentCfg[key]; !exists {
								agentCfg[key] = deepCopyValue(override[key])
							}
						}
					}
				}
			}
		}
	}

	for key, value := range override {
		if value == nil {
			delete(result, key)
			continue
		}

		existing, exists := result[key]
		if !exists {
			result[key] = deepCopyValue(value)
			continue
		}

		if overrideMap, ok := value.(map[string]any); ok {
			if existingMap, ok := existing.(map[string]any); ok {
				result[key] = DeepMerge(existingMap, overrideMap)
				continue
			}
		}

		result[key] = deepCopyValue(value)
	}

	return result
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return deepCopyMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
