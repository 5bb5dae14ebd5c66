// pkg/recipe/loader.go
package recipe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads a recipe from a YAML or JSON file.
//
// The file format is determined by extension:
//   - .yaml, .yml → YAML
//   - .json → JSON
//
// Returns error if:
//   - File doesn't exist or can't be read
//   - File format is invalid
//   - Structural validation fails (unless skipValidation is true)
//
// Example:
//
//	rec, err := recipe.LoadFromFile("recipes/aws_turbinia_ts.json", false)
//	if err != nil {
//	    return err
//	}
func LoadFromFile(path string, skipValidation bool) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var rec Recipe

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported file format: %s (use .yaml, .yml, or .json)", ext)
	}

	if !skipValidation {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}

	return &rec, nil
}

// LoadFromBytes loads a recipe from raw JSON or YAML bytes.
//
// The format is auto-detected: JSON is tried first (the historical recipe
// format), then YAML.
func LoadFromBytes(data []byte, skipValidation bool) (*Recipe, error) {
	var rec Recipe

	if err := json.Unmarshal(data, &rec); err != nil {
		if yamlErr := yaml.Unmarshal(data, &rec); yamlErr != nil {
			return nil, fmt.Errorf("parse JSON/YAML: json=%v, yaml=%v", err, yamlErr)
		}
	}

	if !skipValidation {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}

	return &rec, nil
}

// SaveToFile saves a recipe to a YAML or JSON file, format by extension.
// Both formats are written with 2-space indentation.
func SaveToFile(rec *Recipe, path string) error {
	ext := strings.ToLower(filepath.Ext(path))

	var data []byte
	var err error

	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
	case ".json":
		data, err = json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported file format: %s (use .yaml, .yml, or .json)", ext)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}
