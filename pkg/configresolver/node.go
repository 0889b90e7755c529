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

// Package configresolver implements the hierarchical Config/Context node:
// dotted-path lookup with wildcard segments, deep-merge with the runtime-
// value propagation rule, and the per-agent configuration resolution
// chain. pkg/config/koanf_loader.go loads the raw YAML; this
// package ports the lookup/merge algebra that the Python source implements
// in c4h_agents/config.py (deep_merge, locate_config) — the ConfigNode type
// itself is not present in the retrieved original source (see DESIGN.md),
// so its shape here is authored against koanf's dotted-path conventions.
package configresolver

import "strings"

// Node is a bound view over a hierarchical map, rooted at some prefix.
// Both the workflow Context and the merged Config are represented as a
// Node over map[string]any — both need the same dotted-path/wildcard
// lookup described in
type Node struct {
	data map[string]any
}

// NewNode wraps a raw map. A nil map is treated as empty.
func NewNode(data map[string]any) *Node {
	if data == nil {
		data = map[string]any{}
	}
	return &Node{data: data}
}

// Data returns the node's backing map (not a copy).
func (n *Node) Data() map[string]any {
	return n.data
}

// Get resolves a dotted path, e.g. "llm_config.agents.discovery.model".
// A segment equal to "*" matches the first available child (in whatever
// order Go's map iteration yields — callers should not rely on which
// child wins when more than one exists) and continues downward. Returns
// (nil, false) if the path cannot be resolved.
func (n *Node) Get(path string) (any, bool) {
	segments := strings.Split(path, ".")
	var cur any = n.data
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if seg == "*" {
			found := false
			for _, v := range m {
				cur = v
				found = true
				break
			}
			if !found {
				return nil, false
			}
			continue
		}
		v, ok := m[seg]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// GetString is a convenience wrapper for string-valued paths.
func (n *Node) GetString(path string) (string, bool) {
	v, ok := n.Get(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetNode returns a bound view rooted at prefix; subsequent Get calls on
// the returned node are relative to prefix. If prefix does not resolve to
// a map, an empty node is returned — mirroring the Python ConfigNode
// behavior of never raising on a missing branch, only on a missing leaf.
func (n *Node) GetNode(prefix string) *Node {
	v, ok := n.Get(prefix)
	if !ok {
		return NewNode(nil)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return NewNode(nil)
	}
	return NewNode(m)
}

// TestGetNodeEquivalentToGet in node_test.go checks the property that
// get("a.b.c") is equivalent to get_node("a.b").get("c") for any path.
