// pkg/args/validator.go
// Package args validates and coerces raw recipe argument values against the
// argument schema declared by a recipe. Validation is a pure function of its
// inputs and aggregates every problem instead of stopping at the first one,
// so a user sees all offending arguments in a single pass.
package args

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/hkhalifa/dftimewolf/pkg/recipe"
)

// ValidationError describes one offending argument value.
type ValidationError struct {
	Name   string
	Value  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("argument %q: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("argument %q: invalid value %q: %s", e.Name, e.Value, e.Reason)
}

// ValidationErrors aggregates per-argument failures from one validation pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d invalid argument(s): %s", len(e), strings.Join(msgs, "; "))
}

// Validate checks the provided raw values against the declared specs and
// produces the typed argument table used for "@name" substitution.
//
// Rules:
//   - a missing required (non-switch) argument with no default is an error
//   - a missing optional argument takes its declared default; a null
//     default is preserved as nil, meaning "unset"
//   - comma_separated values are split on "," and each element is checked
//     against the declared regex or named format
//   - format "regex" matches the whole value against the declared regex
//   - any other format name invokes the registered format validator
//   - a provided value whose declared default is a bool is coerced to bool
func Validate(specs []recipe.ArgSpec, provided map[string]string) (map[string]interface{}, error) {
	table := make(map[string]interface{}, len(specs))
	var errs ValidationErrors

	for _, spec := range specs {
		key := spec.Key()
		raw, ok := provided[key]
		if !ok {
			if !spec.Switch() && spec.Default == nil {
				errs = append(errs, ValidationError{Name: key, Reason: "required argument not provided"})
				continue
			}
			table[key] = spec.Default
			continue
		}

		value, vErrs := coerce(key, raw, spec)
		if len(vErrs) > 0 {
			errs = append(errs, vErrs...)
			continue
		}
		table[key] = value
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return table, nil
}

// coerce applies the spec's constraints to one raw value and returns the
// typed result.
func coerce(key, raw string, spec recipe.ArgSpec) (interface{}, ValidationErrors) {
	var errs ValidationErrors

	c := spec.Constraints
	if c == nil {
		if _, isBool := spec.Default.(bool); isBool {
			b, err := cast.ToBoolE(raw)
			if err != nil {
				return nil, ValidationErrors{{Name: key, Value: raw, Reason: "not a boolean"}}
			}
			return b, nil
		}
		return raw, nil
	}

	elements := []string{raw}
	if c.CommaSeparated {
		elements = strings.Split(raw, ",")
	}

	matcher, err := compileAnchored(c.Regex)
	if err != nil {
		return nil, ValidationErrors{{Name: key, Value: raw, Reason: fmt.Sprintf("invalid regex in constraints: %v", err)}}
	}

	var formatFn FormatValidator
	if c.Format != "" && c.Format != "regex" {
		fn, ok := LookupFormat(c.Format)
		if !ok {
			return nil, ValidationErrors{{Name: key, Value: raw, Reason: fmt.Sprintf("unknown format %q", c.Format)}}
		}
		formatFn = fn
	}

	for _, elem := range elements {
		if matcher != nil && !matcher.MatchString(elem) {
			errs = append(errs, ValidationError{Name: key, Value: elem, Reason: fmt.Sprintf("does not match %q", c.Regex)})
			continue
		}
		if formatFn != nil {
			if err := formatFn(elem); err != nil {
				errs = append(errs, ValidationError{Name: key, Value: elem, Reason: err.Error()})
			}
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if c.CommaSeparated {
		return elements, nil
	}
	return raw, nil
}

// compileAnchored compiles expr so that it must match the whole value, the
// way the recipe format has always interpreted constraint regexes.
func compileAnchored(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	return regexp.Compile("^(?:" + expr + ")$")
}
