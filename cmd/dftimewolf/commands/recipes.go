// cmd/dftimewolf/commands/recipes.go
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRecipesCommand(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List available recipes",
		Long:  `List every recipe found in the configured recipe directories.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, argv []string) error {
			recipes := app.registry.List()
			if len(recipes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recipes found. Check recipes.directories in your config.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, rec := range recipes {
				desc := rec.ShortDescription
				if desc == "" {
					desc = rec.Description
				}
				fmt.Fprintf(tw, "%s\t%s\n", rec.Name, desc)
			}
			return tw.Flush()
		},
	}
}
