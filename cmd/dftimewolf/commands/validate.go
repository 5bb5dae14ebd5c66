// cmd/dftimewolf/commands/validate.go
package commands

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hkhalifa/dftimewolf/pkg/args"
	"github.com/hkhalifa/dftimewolf/pkg/engine"
	"github.com/hkhalifa/dftimewolf/pkg/recipe"
)

type validateOptions struct {
	jsonOutput bool
}

func newValidateCommand(app *appState) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <recipe>",
		Short: "Validate a recipe without running it",
		Long: `Validate a recipe by name or path without executing anything.

Checks for:
- Missing or duplicate module instance IDs
- Unknown dependencies and dependency cycles
- Modules depending on preflights
- Ambiguous sentinel argument slots
- "@name" references to undeclared arguments
- Argument constraints with broken regexes or unknown formats`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			rec, err := loadRecipe(app, argv[0])
			if err != nil {
				return err
			}
			return runValidate(cmd, rec, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	return cmd
}

func runValidate(cmd *cobra.Command, rec *recipe.Recipe, opts *validateOptions) error {
	var problems []string

	if _, err := engine.BuildGraph(rec); err != nil {
		problems = append(problems, err.Error())
	}
	problems = append(problems, checkArgSpecs(rec)...)

	w := cmd.OutOrStdout()
	if opts.jsonOutput {
		out := map[string]any{
			"recipe": rec.Name,
			"valid":  len(problems) == 0,
			"errors": problems,
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	} else {
		if len(problems) == 0 {
			fmt.Fprintf(w, "%s recipe %q is valid\n", color.GreenString("✓"), rec.Name)
		} else {
			for _, p := range problems {
				fmt.Fprintf(w, "%s %s\n", color.RedString("✗"), p)
			}
		}
	}

	if len(problems) > 0 {
		return engine.WrapGraphError(fmt.Errorf("recipe %q failed validation with %d error(s)", rec.Name, len(problems)))
	}
	return nil
}

// checkArgSpecs verifies the argument schema itself: constraint regexes
// must compile and named formats must be registered.
func checkArgSpecs(rec *recipe.Recipe) []string {
	var problems []string
	for _, spec := range rec.Args {
		c := spec.Constraints
		if c == nil {
			continue
		}
		if c.Regex != "" {
			if _, err := regexp.Compile(c.Regex); err != nil {
				problems = append(problems, fmt.Sprintf("argument %q: invalid regex: %v", spec.Key(), err))
			}
		}
		if c.Format != "" && c.Format != "regex" {
			if _, ok := args.LookupFormat(c.Format); !ok {
				problems = append(problems, fmt.Sprintf("argument %q: unknown format %q", spec.Key(), c.Format))
			}
		}
	}
	return problems
}
