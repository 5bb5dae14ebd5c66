// cmd/dftimewolf/commands/helpers.go
package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hkhalifa/dftimewolf/pkg/recipe"
)

// loadRecipe resolves nameOrPath to a recipe: a .json/.yaml/.yml path is
// loaded from disk, anything else is looked up in the registry populated
// from the configured recipe directories.
func loadRecipe(app *appState, nameOrPath string) (*recipe.Recipe, error) {
	ext := strings.ToLower(filepath.Ext(nameOrPath))
	if ext == ".json" || ext == ".yaml" || ext == ".yml" {
		if _, err := os.Stat(nameOrPath); err == nil {
			return recipe.LoadFromFile(nameOrPath, false)
		}
	}
	return app.registry.Get(nameOrPath)
}
