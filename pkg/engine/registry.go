// pkg/engine/registry.go
// Package engine resolves a recipe into a dependency graph and executes it:
// argument substitution, preflight gating, topological scheduling of module
// nodes, output propagation, and run reporting.
package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	registryMu     sync.RWMutex
	moduleRegistry = make(map[string]ModuleFactory)
)

// RegisterModuleFactory adds a module factory to the registry. The name
// must match the `name` field used in recipe module declarations. New
// module types register here without any engine change.
func RegisterModuleFactory(name string, factory ModuleFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := moduleRegistry[name]; exists {
		log.Warn().Str("module", name).Msg("Module factory is being overwritten")
	}
	moduleRegistry[name] = factory
}

// GetModuleInstance creates a new instance of a module given its
// registered type name.
func GetModuleInstance(name string) (Module, error) {
	registryMu.RLock()
	factory, ok := moduleRegistry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no module factory registered for name: %s", name)
	}
	return factory(), nil
}

// RegisteredModules returns the sorted names of all registered module types.
func RegisteredModules() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(moduleRegistry))
	for name := range moduleRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
