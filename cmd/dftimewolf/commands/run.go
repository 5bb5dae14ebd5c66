// cmd/dftimewolf/commands/run.go
package commands

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	recipeargs "github.com/hkhalifa/dftimewolf/pkg/args"
	"github.com/hkhalifa/dftimewolf/pkg/engine"
	"github.com/hkhalifa/dftimewolf/pkg/recipe"
)

func newRunCommand(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <recipe> [recipe args...]",
		Short: "Run a recipe",
		Long: `Run a recipe by name (from a configured recipe directory) or by path.

Anything after the recipe name is interpreted against the recipe's own
argument schema: unprefixed values fill the recipe's positional arguments
in declaration order, and --name flags fill its optional switches.

Exit codes:
- 0: every node succeeded
- 1: partial failure (some modules failed or were skipped)
- 2: invalid arguments or invalid recipe graph
- 3: run aborted by a failed preflight`,
		Example: `  # Run by name, positional args in recipe order
  dftimewolf run aws_turbinia_ts 123456789012 us-east-1 vol-0a1b2c3d

  # Run from a file, overriding a switch
  dftimewolf run ./recipes/aws_turbinia_ts.json 123456789012 us-east-1 vol-0a1b2c3d --incident_id=IR-42`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			rec, err := loadRecipe(app, argv[0])
			if err != nil {
				return err
			}
			return runRecipe(cmd, app, rec, argv[1:])
		},
	}
	// Leave everything after the recipe name for the recipe's own flag set.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func runRecipe(cmd *cobra.Command, app *appState, rec *recipe.Recipe, argv []string) error {
	provided, err := parseRecipeArgs(rec, argv)
	if err != nil {
		return engine.WrapArgsError(err)
	}

	table, err := recipeargs.Validate(rec.Args, provided)
	if err != nil {
		return engine.WrapArgsError(err)
	}

	orc, err := engine.NewOrchestrator(rec, table,
		engine.WithMaxConcurrent(app.cfg.Engine.MaxConcurrentModules))
	if err != nil {
		return err
	}

	report := orc.Run(cmd.Context())
	printReport(cmd.OutOrStdout(), report)
	return report.Err()
}

// parseRecipeArgs interprets argv against the recipe's argument schema and
// returns the raw name→value table handed to the validator. Only switches
// that were explicitly set appear in the table, so declared defaults still
// apply.
func parseRecipeArgs(rec *recipe.Recipe, argv []string) (map[string]string, error) {
	fs := pflag.NewFlagSet(rec.Name, pflag.ContinueOnError)
	var positionalSpecs []recipe.ArgSpec
	for _, spec := range rec.Args {
		if !spec.Switch() {
			positionalSpecs = append(positionalSpecs, spec)
			continue
		}
		if _, isBool := spec.Default.(bool); isBool {
			fs.Bool(spec.Key(), cast.ToBool(spec.Default), spec.Help)
		} else {
			fs.String(spec.Key(), cast.ToString(spec.Default), spec.Help)
		}
	}

	if err := fs.Parse(argv); err != nil {
		return nil, err
	}

	positionals := fs.Args()
	if len(positionals) > len(positionalSpecs) {
		return nil, fmt.Errorf("recipe %q takes %d positional argument(s), got %d",
			rec.Name, len(positionalSpecs), len(positionals))
	}

	provided := make(map[string]string)
	for i, value := range positionals {
		provided[positionalSpecs[i].Key()] = value
	}
	fs.Visit(func(f *pflag.Flag) {
		provided[f.Name] = f.Value.String()
	})
	return provided, nil
}
