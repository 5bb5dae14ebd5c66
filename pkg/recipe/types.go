// pkg/recipe/types.go
// Package recipe defines the declarative recipe format: a named DAG of
// module instances, a set of preflight checks, and a typed argument schema.
package recipe

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Recipe is a declarative description of a forensics pipeline. It is
// immutable once loaded; the engine never mutates it.
type Recipe struct {
	Name             string       `json:"name" yaml:"name"`
	ShortDescription string       `json:"short_description,omitempty" yaml:"short_description,omitempty"`
	Description      string       `json:"description,omitempty" yaml:"description,omitempty"`
	Preflights       []ModuleSpec `json:"preflights,omitempty" yaml:"preflights,omitempty"`
	Modules          []ModuleSpec `json:"modules" yaml:"modules"`
	Args             []ArgSpec    `json:"args,omitempty" yaml:"args,omitempty"`
}

// ModuleSpec declares one module instance in a recipe.
//
// Name selects the registered module type. RuntimeName disambiguates
// multiple instances of the same type within one recipe; when empty, the
// type name doubles as the instance identity. Wants lists the instance IDs
// this module depends on. Inputs maps a sentinel argument slot to the
// producer node that fills it, required when Wants has more than one entry.
type ModuleSpec struct {
	Name        string                 `json:"name" yaml:"name"`
	RuntimeName string                 `json:"runtime_name,omitempty" yaml:"runtime_name,omitempty"`
	Wants       []string               `json:"wants,omitempty" yaml:"wants,omitempty"`
	Args        map[string]interface{} `json:"args,omitempty" yaml:"args,omitempty"`
	Inputs      map[string]string      `json:"inputs,omitempty" yaml:"inputs,omitempty"`
}

// InstanceID returns the unique node identity of this module instance.
func (m ModuleSpec) InstanceID() string {
	if m.RuntimeName != "" {
		return m.RuntimeName
	}
	return m.Name
}

// Constraints carries optional validation rules for an argument.
type Constraints struct {
	Format         string `json:"format,omitempty" yaml:"format,omitempty"`
	CommaSeparated bool   `json:"comma_separated,omitempty" yaml:"comma_separated,omitempty"`
	Regex          string `json:"regex,omitempty" yaml:"regex,omitempty"`
}

// ArgSpec declares one recipe-level argument. On the wire it is a tuple:
// [name, help, default] or [name, help, default, constraints]. A name
// prefixed with "--" marks an optional switch; an unprefixed name marks a
// required positional argument.
type ArgSpec struct {
	Name        string
	Help        string
	Default     interface{}
	Constraints *Constraints
}

// Switch reports whether the argument is an optional "--" switch.
func (a ArgSpec) Switch() bool {
	return strings.HasPrefix(a.Name, "--")
}

// Key returns the argument name with any "--" prefix stripped. This is the
// key used in validated argument tables and "@key" substitutions.
func (a ArgSpec) Key() string {
	return strings.TrimPrefix(a.Name, "--")
}

// UnmarshalJSON decodes the tuple form of an ArgSpec.
func (a *ArgSpec) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("arg spec must be a tuple: %w", err)
	}
	if len(raw) < 3 || len(raw) > 4 {
		return fmt.Errorf("arg spec tuple has %d elements, want 3 or 4", len(raw))
	}
	if err := json.Unmarshal(raw[0], &a.Name); err != nil {
		return fmt.Errorf("arg spec name: %w", err)
	}
	if err := json.Unmarshal(raw[1], &a.Help); err != nil {
		return fmt.Errorf("arg spec help: %w", err)
	}
	if err := json.Unmarshal(raw[2], &a.Default); err != nil {
		return fmt.Errorf("arg spec default: %w", err)
	}
	if len(raw) == 4 {
		a.Constraints = &Constraints{}
		if err := json.Unmarshal(raw[3], a.Constraints); err != nil {
			return fmt.Errorf("arg spec constraints: %w", err)
		}
	}
	return nil
}

// MarshalJSON encodes the tuple form of an ArgSpec.
func (a ArgSpec) MarshalJSON() ([]byte, error) {
	tuple := []interface{}{a.Name, a.Help, a.Default}
	if a.Constraints != nil {
		tuple = append(tuple, a.Constraints)
	}
	return json.Marshal(tuple)
}

// UnmarshalYAML decodes the tuple form of an ArgSpec from a YAML sequence.
func (a *ArgSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("arg spec must be a sequence, got %s", value.Tag)
	}
	if n := len(value.Content); n < 3 || n > 4 {
		return fmt.Errorf("arg spec tuple has %d elements, want 3 or 4", n)
	}
	if err := value.Content[0].Decode(&a.Name); err != nil {
		return fmt.Errorf("arg spec name: %w", err)
	}
	if err := value.Content[1].Decode(&a.Help); err != nil {
		return fmt.Errorf("arg spec help: %w", err)
	}
	if err := value.Content[2].Decode(&a.Default); err != nil {
		return fmt.Errorf("arg spec default: %w", err)
	}
	if len(value.Content) == 4 {
		a.Constraints = &Constraints{}
		if err := value.Content[3].Decode(a.Constraints); err != nil {
			return fmt.Errorf("arg spec constraints: %w", err)
		}
	}
	return nil
}

// MarshalYAML encodes the tuple form of an ArgSpec.
func (a ArgSpec) MarshalYAML() (interface{}, error) {
	tuple := []interface{}{a.Name, a.Help, a.Default}
	if a.Constraints != nil {
		tuple = append(tuple, a.Constraints)
	}
	return tuple, nil
}

// ArgSpec returns the declared argument whose key matches name, or nil.
func (r *Recipe) ArgSpec(name string) *ArgSpec {
	for i := range r.Args {
		if r.Args[i].Key() == name {
			return &r.Args[i]
		}
	}
	return nil
}

// Validate performs structural checks that do not require the module
// registry or the dependency graph: a non-empty recipe name, named module
// entries, unique instance IDs across preflights and modules, and unique
// argument keys.
func (r *Recipe) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("recipe has no name")
	}

	seen := make(map[string]bool)
	for _, spec := range append(append([]ModuleSpec{}, r.Preflights...), r.Modules...) {
		if spec.Name == "" {
			return fmt.Errorf("recipe %q: module entry with no name", r.Name)
		}
		id := spec.InstanceID()
		if seen[id] {
			return fmt.Errorf("recipe %q: duplicate module instance %q (use runtime_name to disambiguate)", r.Name, id)
		}
		seen[id] = true
	}

	argKeys := make(map[string]bool)
	for _, arg := range r.Args {
		key := arg.Key()
		if key == "" {
			return fmt.Errorf("recipe %q: argument with empty name", r.Name)
		}
		if argKeys[key] {
			return fmt.Errorf("recipe %q: duplicate argument %q", r.Name, key)
		}
		argKeys[key] = true
	}
	return nil
}
