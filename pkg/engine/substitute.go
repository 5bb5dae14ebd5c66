// pkg/engine/substitute.go
package engine

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/spf13/cast"
)

// refToken matches an "@name" substitution token inside argument values.
var refToken = regexp.MustCompile(`@([A-Za-z][A-Za-z0-9_]*)`)

// ResolveArgs expands every "@name" reference in a module's raw args using
// the validated argument table. A value that is exactly one token keeps the
// typed value from the table; tokens embedded in longer strings are
// replaced with their string form. The empty-string sentinel is left
// untouched, since it is filled from upstream output at execution time, not
// from the argument table. Maps and lists are resolved recursively.
//
// ResolveArgs is a pure function and is invoked once per module immediately
// before that module executes, never eagerly at load time.
func ResolveArgs(raw map[string]interface{}, table map[string]interface{}) (map[string]interface{}, error) {
	resolved := make(map[string]interface{}, len(raw))
	for key, value := range raw {
		v, err := resolveValue(value, table)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", key, err)
		}
		resolved[key] = v
	}
	return resolved, nil
}

func resolveValue(value interface{}, table map[string]interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return resolveString(v, table)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, elem := range v {
			r, err := resolveValue(elem, table)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, elem := range v {
			r, err := resolveValue(elem, table)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return value, nil
	}
}

func resolveString(s string, table map[string]interface{}) (interface{}, error) {
	if s == "" {
		return s, nil // sentinel, resolved from upstream output later
	}

	// A value that is exactly one reference keeps the typed table value.
	if match := refToken.FindStringSubmatch(s); match != nil && match[0] == s {
		name := match[1]
		typed, ok := table[name]
		if !ok {
			return nil, fmt.Errorf("reference @%s not in argument table", name)
		}
		return typed, nil
	}

	var missing string
	replaced := refToken.ReplaceAllStringFunc(s, func(token string) string {
		name := token[1:]
		typed, ok := table[name]
		if !ok {
			missing = name
			return token
		}
		return cast.ToString(typed)
	})
	if missing != "" {
		return nil, fmt.Errorf("reference @%s not in argument table", missing)
	}
	return replaced, nil
}

// collectReferences walks a raw args value and returns the sorted set of
// "@name" reference names it contains.
func collectReferences(value interface{}) []string {
	seen := make(map[string]bool)
	var walk func(v interface{})
	walk = func(v interface{}) {
		switch t := v.(type) {
		case string:
			for _, m := range refToken.FindAllStringSubmatch(t, -1) {
				seen[m[1]] = true
			}
		case map[string]interface{}:
			for _, elem := range t {
				walk(elem)
			}
		case []interface{}:
			for _, elem := range t {
				walk(elem)
			}
		}
	}
	walk(value)

	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
