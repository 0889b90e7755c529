// Package registry backs the one name-keyed lookup this module needs:
// resolving a configured provider name (llm_config.default_provider or
// llm_config.agents.<name>.provider) to the Provider instance registered
// for it. Kept generic over T, as the sole caller (llm.ProviderRegistry)
// needs, rather than hand-rolled per the single concrete type.
package registry

import (
	"sort"
	"sync"

	"github.com/kadirpekel/refactorctl/pkg/refoerr"
)

// Registry is a name-keyed store of items of type T.
type Registry[T any] interface {
	Register(name string, item T) error
	Get(name string) (T, bool)
	List() []T
	Names() []string
	Remove(name string) error
	Count() int
	Clear()
}

// BaseRegistry is a thread-safe Registry[T] backed by a map.
type BaseRegistry[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func NewBaseRegistry[T any]() *BaseRegistry[T] {
	return &BaseRegistry[T]{
		items: make(map[string]T),
	}
}

// Register adds item under name. Re-registering an already-used name
// (e.g. two providers both named "anthropic") is a configuration error,
// not a silent overwrite.
func (r *BaseRegistry[T]) Register(name string, item T) error {
	if name == "" {
		return refoerr.New(refoerr.ConfigurationMissing, "registry: name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; exists {
		return refoerr.New(refoerr.ConfigurationMissing, "registry: item '"+name+"' already registered")
	}

	r.items[name] = item
	return nil
}

func (r *BaseRegistry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[name]
	return item, exists
}

func (r *BaseRegistry[T]) List() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]T, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}
	return items
}

// Names returns the registered names in sorted order, used to build a
// helpful "no provider named X; have: [...]" error message.
func (r *BaseRegistry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *BaseRegistry[T]) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; !exists {
		return refoerr.New(refoerr.ConfigurationMissing, "registry: item '"+name+"' not found")
	}

	delete(r.items, name)
	return nil
}

func (r *BaseRegistry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

func (r *BaseRegistry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[string]T)
}
