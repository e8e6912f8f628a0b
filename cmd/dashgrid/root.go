package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/dashgrid/internal/cli"
	"github.com/aretw0/dashgrid/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dashgrid",
	Short: "dashgrid is a drag-and-drop layout engine for dashboard widgets",
	Long: `dashgrid keeps dashboard components arranged across layout zones and turns
pointer gestures into committed moves. Run it as an HTTP API, an MCP server or a
terminal dashboard; layouts persist to memory, files, redis or sqlite.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default $"+config.EnvPath+")")
	rootCmd.PersistentFlags().Bool("debug", false, "Log every drag transition at debug level")
	rootCmd.PersistentFlags().String("layout", "", "Layout id to load and save (overrides store.layout_id)")
}

// loadConfig reads the config file named by --config and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if id, _ := cmd.Flags().GetString("layout"); id != "" {
		cfg.Store.LayoutID = id
	}
	return cfg, nil
}

// openApp builds the application for commands that drive the engine.
func openApp(ctx context.Context, cmd *cobra.Command, opts cli.Options) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	opts.Debug, _ = cmd.Flags().GetBool("debug")
	return cli.New(ctx, cfg, opts)
}
