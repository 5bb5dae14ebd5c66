// cmd/dftimewolf/commands/root.go
// Package commands wires the dftimewolf CLI: recipe discovery, argument
// parsing, and recipe execution.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/hkhalifa/dftimewolf/pkg/config"
	"github.com/hkhalifa/dftimewolf/pkg/logging"
	"github.com/hkhalifa/dftimewolf/pkg/recipe"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// appState carries the loaded configuration and recipe registry to
// subcommands.
type appState struct {
	cfg      config.Config
	registry *recipe.Registry
}

// NewRootCommand builds the dftimewolf root command.
func NewRootCommand() *cobra.Command {
	app := &appState{registry: recipe.NewRegistry()}

	rootCmd := &cobra.Command{
		Use:     "dftimewolf",
		Short:   "dftimewolf - recipe-driven forensics pipeline orchestrator",
		Long:    `dftimewolf executes declarative recipes: DAGs of forensics modules with preflight environment checks and typed, validated arguments.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")

			manager := config.NewManager()
			if err := manager.Load(cmd.Flags(), cfgPath); err != nil {
				return err
			}
			app.cfg = manager.Get()

			// Explicit flags take precedence over file and defaults.
			if cmd.Flags().Changed("log-level") {
				app.cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
			}
			if cmd.Flags().Changed("log-format") {
				app.cfg.Log.Format, _ = cmd.Flags().GetString("log-format")
			}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				app.cfg.Log.Level = "debug"
			}

			if err := logging.ConfigureGlobalLogging(app.cfg.Log.Level, app.cfg.Log.Format); err != nil {
				return err
			}

			for _, dir := range app.cfg.Recipes.Directories {
				if err := app.registry.LoadDirectory(dir); err != nil {
					return err
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text|json)")
	rootCmd.PersistentFlags().Bool("debug", false, "Shortcut for --log-level debug")

	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newValidateCommand(app))
	rootCmd.AddCommand(newRecipesCommand(app))

	return rootCmd
}
