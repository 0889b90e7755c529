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

// Package project implements the immutable Project record from spec
// section 3, ported from
// _examples/original_source/c4h_agents/core/project.go: paths derived
// from project.path plus optional *_root overrides, with workspace and
// output guaranteed to exist at construction.
package project

import (
	"path/filepath"
	"time"

	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/kadirpekel/refactorctl/pkg/utils"
)

// Paths holds the five standard project path roots, all derived from
// project.path and resolved to absolute form.
type Paths struct {
	Root      string
	Workspace string
	Source    string
	Output    string
	Config    string
}

// Metadata carries the project's descriptive fields and free-form
// settings bag, following c4h_agents/core/project.py's ProjectMetadata.
type Metadata struct {
	Name        string
	Description string
	Version     string
	Settings    map[string]any
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// UpdateSetting records a setting change and bumps UpdatedAt, mirroring
// the Python dataclass's update_setting.
func (m *Metadata) UpdateSetting(key string, value any) {
	if m.Settings == nil {
		m.Settings = map[string]any{}
	}
	m.Settings[key] = value
	now := time.Now().UTC()
	m.UpdatedAt = &now
}

// Project is the immutable record described in: paths,
// metadata, and the complete configuration the project was built from.
type Project struct {
	Paths    Paths
	Metadata Metadata
	Config   *configresolver.Node
}

// FromConfig derives a Project from a resolved config node, creating the
// workspace and output directories if they do not already exist. A
// missing project.path defaults to the current directory, matching the
// Python source's Path(".") fallback.
func FromConfig(cfg *configresolver.Node) (*Project, error) {
	projectNode := cfg.GetNode("project")

	rootPath, _ := projectNode.GetString("path")
	if rootPath == "" {
		rootPath = "."
	}
	root, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, err
	}

	workspaceRoot, _ := projectNode.GetString("workspace_root")
	if workspaceRoot == "" {
		workspaceRoot = "workspaces"
	}
	sourceRoot, _ := projectNode.GetString("source_root")
	if sourceRoot == "" {
		sourceRoot = "."
	}
	outputRoot, _ := projectNode.GetString("output_root")
	if outputRoot == "" {
		outputRoot = "."
	}
	configRoot, _ := projectNode.GetString("config_root")
	if configRoot == "" {
		configRoot = "config"
	}

	paths := Paths{
		Root:      root,
		Workspace: filepath.Join(root, workspaceRoot),
		Source:    filepath.Join(root, sourceRoot),
		Output:    filepath.Join(root, outputRoot),
		Config:    filepath.Join(root, configRoot),
	}

	if err := utils.EnsureDir(paths.Workspace); err != nil {
		return nil, err
	}
	if err := utils.EnsureDir(paths.Output); err != nil {
		return nil, err
	}

	name, _ := projectNode.GetString("name")
	if name == "" {
		name = filepath.Base(root)
	}
	description, _ := projectNode.GetString("description")
	version, _ := projectNode.GetString("version")

	settings := map[string]any{}
	if v, ok := projectNode.Get("settings"); ok {
		if m, ok := v.(map[string]any); ok {
			settings = m
		}
	}

	return &Project{
		Paths: paths,
		Metadata: Metadata{
			Name:        name,
			Description: description,
			Version:     version,
			Settings:    settings,
			CreatedAt:   time.Now().UTC(),
		},
		Config: cfg,
	}, nil
}

// ResolvePath resolves path relative to the project root, leaving
// already-absolute paths untouched.
func (p *Project) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Paths.Root, path)
}

// RelativePath returns path relative to the project root, or the
// resolved absolute path unchanged if it falls outside the root.
func (p *Project) RelativePath(path string) string {
	resolved := p.ResolvePath(path)
	rel, err := filepath.Rel(p.Paths.Root, resolved)
	if err != nil {
		return resolved
	}
	return rel
}

// AgentConfig returns the agent's own config sub-map plus a back-pointer
// to the project, mirroring Project.get_agent_config.
func (p *Project) AgentConfig(agentName string) map[string]any {
	agentNode := p.Config.AgentNode(agentName)
	out := map[string]any{"project": p}
	for k, v := range agentNode.Data() {
		out[k] = v
	}
	return out
}
