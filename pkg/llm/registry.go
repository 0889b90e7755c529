package llm

import (
	"fmt"

	"github.com/kadirpekel/refactorctl/pkg/refoerr"
	"github.com/kadirpekel/refactorctl/pkg/registry"
)

// ProviderRegistry looks up a Provider by name, e.g. the "provider" key
// resolved by configresolver.ResolveAgentValue.
type ProviderRegistry struct {
	base *registry.BaseRegistry[Provider]
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{base: registry.NewBaseRegistry[Provider]()}
}

func (r *ProviderRegistry) Register(p Provider) error {
	return r.base.Register(p.Name(), p)
}

func (r *ProviderRegistry) Get(name string) (Provider, error) {
	p, ok := r.base.Get(name)
	if !ok {
		return nil, refoerr.New(refoerr.ConfigurationMissing,
			fmt.Sprintf("no llm provider registered under %q (have: %v)", name, r.base.Names()))
	}
	return p, nil
}

// Names returns the registered provider names, sorted.
func (r *ProviderRegistry) Names() []string {
	return r.base.Names()
}
