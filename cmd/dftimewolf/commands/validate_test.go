package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkhalifa/dftimewolf/pkg/engine"
)

func TestValidateCommand_ValidRecipe(t *testing.T) {
	path := writeRecipeFile(t, `{
	  "name": "valid",
	  "modules": [
	    {"name": "CollectorA"},
	    {"name": "ProcessorB", "wants": ["CollectorA"], "args": {"data": ""}}
	  ]
	}`)

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, `recipe "valid" is valid`)
}

func TestValidateCommand_Cycle(t *testing.T) {
	path := writeRecipeFile(t, `{
	  "name": "cyclic",
	  "modules": [
	    {"name": "A", "wants": ["B"]},
	    {"name": "B", "wants": ["A"]}
	  ]
	}`)

	out, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, 2, engine.ExitCode(err))
	assert.Contains(t, out, "dependency cycle")
}

func TestValidateCommand_BrokenArgSchema(t *testing.T) {
	path := writeRecipeFile(t, `{
	  "name": "broken-args",
	  "modules": [{"name": "CollectorA"}],
	  "args": [
	    ["volumes", "Volume IDs", null, {"format": "regex", "regex": "vol-[0-9"}],
	    ["zone", "Zone", null, {"format": "martian_zone"}]
	  ]
	}`)

	out, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, out, "invalid regex")
	assert.Contains(t, out, `unknown format "martian_zone"`)
}

func TestValidateCommand_JSONOutput(t *testing.T) {
	path := writeRecipeFile(t, `{
	  "name": "json-out",
	  "modules": [{"name": "A", "wants": ["missing"]}]
	}`)

	out, err := execute(t, "validate", path, "--json")
	require.Error(t, err)

	var result struct {
		Recipe string   `json:"recipe"`
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "json-out", result.Recipe)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `unknown module "missing"`)
}

func TestValidateCommand_ShippedRecipe(t *testing.T) {
	// The recipes bundled with the repo must always pass validation.
	path := filepath.Join("..", "..", "..", "recipes", "aws_turbinia_ts.json")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("bundled recipe not present: %v", err)
	}
	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}

func TestRecipesCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.json"),
		[]byte(`{"name": "alpha", "short_description": "First recipe", "modules": [{"name": "A"}]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beta.yaml"),
		[]byte("name: beta\nshort_description: Second recipe\nmodules:\n  - name: B\n"), 0o644))

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath,
		[]byte("recipes:\n  directories:\n    - "+dir+"\n"), 0o644))

	out, err := execute(t, "--config", cfgPath, "recipes")
	require.NoError(t, err)
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "First recipe")
	assert.Contains(t, out, "beta")
	assert.Contains(t, out, "Second recipe")
}

func TestRecipesCommand_Empty(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath,
		[]byte("recipes:\n  directories: []\n"), 0o644))

	out, err := execute(t, "--config", cfgPath, "recipes")
	require.NoError(t, err)
	assert.Contains(t, out, "No recipes found")
}
