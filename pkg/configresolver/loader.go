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
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LoaderOptions mirrors a koanf-based file loader, narrowed to the file
// backend: config loading beyond file-based merge semantics is
// explicitly out of scope, so the consul/etcd/zookeeper backends are
// dropped here (see DESIGN.md).
type LoaderOptions struct {
	Path  string
	Watch bool

	// OnChange is invoked with the freshly reloaded map of this one file
	// (not merged with any other config) when Watch is true and the file
	// changes.
	OnChange func(map[string]any)
}

// Loader loads a single YAML file via koanf and exposes it as a plain
// map[string]any ready for DeepMerge / Node wrapping.
type Loader struct {
	opts     LoaderOptions
	koanf    *koanf.Koanf
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
}

func NewLoader(opts LoaderOptions) (*Loader, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("config path is required")
	}
	return &Loader{
		opts:     opts,
		koanf:    koanf.New("."),
		stopChan: make(chan struct{}),
	}, nil
}

// Load reads the YAML file and returns it as a raw map.
func (l *Loader) Load() (map[string]any, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(l.opts.Path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", l.opts.Path, err)
	}
	l.koanf = k

	if l.opts.Watch {
		if err := l.startWatch(); err != nil {
			slog.Warn("config watch disabled", "path", l.opts.Path, "error", err)
		}
	}

	return k.Raw(), nil
}

func (l *Loader) startWatch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(l.opts.Path); err != nil {
		w.Close()
		return err
	}
	l.watcher = w

	go func() {
		for {
			select {
			case <-l.stopChan:
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				k := koanf.New(".")
				if err := k.Load(file.Provider(l.opts.Path), yaml.Parser()); err != nil {
					slog.Warn("config reload failed", "path", l.opts.Path, "error", err)
					continue
				}
				l.koanf = k
				if l.opts.OnChange != nil {
					l.opts.OnChange(k.Raw())
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watch error", "error", err)
			}
		}
	}()
	return nil
}

func (l *Loader) Close() {
	close(l.stopChan)
	if l.watcher != nil {
		l.watcher.Close()
	}
}

// LoadWithAppConfig loads and deep-merges a system-wide default config
// with an application-provided override, grounded on
// c4h_agents/config.py: load_with_app_config.
func LoadWithAppConfig(systemPath, appPath string) (map[string]any, error) {
	systemConfig, err := loadOrEmpty(systemPath)
	if err != nil {
		return nil, err
	}
	appConfig, err := loadOrEmpty(appPath)
	if err != nil {
		return nil, err
	}
	return DeepMerge(systemConfig, appConfig), nil
}

func loadOrEmpty(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	l, err := NewLoader(LoaderOptions{Path: path})
	if err != nil {
		return nil, err
	}
	data, err := l.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return data, nil
}
