package sources

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry keeps adapters per variant, keyed by source name.
type Registry struct {
	adapters map[Variant]map[string]Adapter
	mu       sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[Variant]map[string]Adapter),
	}
}

func (r *Registry) Register(variant Variant, adapter Adapter) error {
	if adapter == nil {
		return fmt.Errorf("adapter cannot be nil")
	}
	name := strings.ToLower(strings.TrimSpace(adapter.Name()))
	if name == "" {
		return fmt.Errorf("adapter name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byName, ok := r.adapters[variant]
	if !ok {
		byName = make(map[string]Adapter)
		r.adapters[variant] = byName
	}
	if _, exists := byName[name]; exists {
		return fmt.Errorf("%s adapter %s already registered", variant, name)
	}
	byName[name] = adapter
	return nil
}

func (r *Registry) Get(variant Variant, source string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[variant][strings.ToLower(strings.TrimSpace(source))]
	return adapter, ok
}

// Sources lists the source names registered for a variant, sorted.
func (r *Registry) Sources(variant Variant) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters[variant]))
	for name := range r.adapters[variant] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
