// pkg/recipe/registry.go
package recipe

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry holds loaded recipes keyed by name. It is safe for concurrent
// use: CLI commands may populate it from several directories at once.
type Registry struct {
	mu      sync.RWMutex
	recipes map[string]*Recipe
}

// NewRegistry creates an empty recipe registry.
func NewRegistry() *Registry {
	return &Registry{recipes: make(map[string]*Recipe)}
}

// Register adds a recipe to the registry. Re-registering a name overwrites
// the previous recipe, which lets a user-level recipe directory shadow a
// compiled-in recipe of the same name.
func (r *Registry) Register(rec *Recipe) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.recipes[rec.Name]; exists {
		log.Warn().Str("recipe", rec.Name).Msg("Recipe is being overwritten in registry")
	}
	r.recipes[rec.Name] = rec
	return nil
}

// Get returns the recipe registered under name.
func (r *Registry) Get(name string) (*Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recipes[name]
	if !ok {
		return nil, fmt.Errorf("no recipe registered under name: %s", name)
	}
	return rec, nil
}

// List returns all registered recipes sorted by name.
func (r *Registry) List() []*Recipe {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Recipe, 0, len(r.recipes))
	for _, rec := range r.recipes {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LoadDirectory registers every .json/.yaml/.yml recipe found directly in
// dir. Files that fail to parse are logged and skipped so one broken recipe
// does not hide the rest. A missing directory is not an error.
func (r *Registry) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read recipe directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		rec, err := LoadFromFile(path, false)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable recipe file")
			continue
		}
		if err := r.Register(rec); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping invalid recipe file")
		}
	}
	return nil
}
