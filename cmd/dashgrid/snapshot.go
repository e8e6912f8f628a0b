package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/dashgrid/internal/cli"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage persisted layout snapshots",
	Long:  `List, export, import and remove layout snapshots in the configured store.`,
}

var snapshotLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored layouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			ids, err := app.Snapshots.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing layouts: %w", err)
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored layouts found.")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), "- "+id)
			}
			return nil
		})
	},
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export <layout-id>",
	Short: "Print a stored layout as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			snap, err := app.Snapshots.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error loading layout '%s': %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), snap)
		})
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import <layout-id> <file>",
	Short: "Store a layout from a JSON file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		var snap domain.LayoutSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("invalid snapshot file: %w", err)
		}
		if err := snap.Validate(); err != nil {
			return err
		}

		return withApp(cmd, func(app *cli.App) error {
			return app.Snapshots.Save(cmd.Context(), args[0], snap)
		})
	},
}

var snapshotRmCmd = &cobra.Command{
	Use:   "rm <layout-id>",
	Short: "Remove a stored layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			if err := app.Snapshots.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("error deleting layout '%s': %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Layout '%s' removed.\n", args[0])
			return nil
		})
	},
}

// withApp opens the app with autosave disabled, for commands that only touch the store.
func withApp(cmd *cobra.Command, fn func(*cli.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Store.Autosave = false
	app, err := cli.New(cmd.Context(), cfg, cli.Options{})
	if err != nil {
		return err
	}
	defer app.Close(cmd.Context())
	return fn(app)
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotLsCmd, snapshotExportCmd, snapshotImportCmd, snapshotRmCmd)
}
