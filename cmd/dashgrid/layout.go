package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/dashgrid/internal/cli"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/spf13/cobra"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Inspect and edit the persisted layout",
	Long:  `Loads the layout selected by --layout (or store.layout_id), applies one change, and saves it back.`,
}

var layoutShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withLayout(cmd, false, func(app *cli.App) error {
			snap := app.Engine.Layout()
			if asJSON {
				return printJSON(cmd.OutOrStdout(), snap)
			}
			printLayout(cmd.OutOrStdout(), snap)
			return nil
		})
	},
}

var layoutMoveCmd = &cobra.Command{
	Use:   "move <component-id> <from-zone> <to-zone>",
	Short: "Move a component to the end of another zone",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLayout(cmd, true, func(app *cli.App) error {
			return app.Engine.MoveComponent(args[0], args[1], args[2])
		})
	},
}

var layoutAddZoneCmd = &cobra.Command{
	Use:   "add-zone <width> [component-id...]",
	Short: "Append a zone, optionally holding new components",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		width, err := domain.ParseWidth(args[0])
		if err != nil {
			return err
		}
		return withLayout(cmd, true, func(app *cli.App) error {
			id, err := app.Engine.AddZone(width, args[1:]...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var layoutRemoveZoneCmd = &cobra.Command{
	Use:   "remove-zone <zone-id>",
	Short: "Remove a zone; its components move to the first remaining zone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLayout(cmd, true, func(app *cli.App) error {
			return app.Engine.RemoveZone(args[0])
		})
	},
}

var layoutWidthCmd = &cobra.Command{
	Use:   "width <zone-id> <width>",
	Short: "Change the width of a zone",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		width, err := domain.ParseWidth(args[1])
		if err != nil {
			return err
		}
		return withLayout(cmd, true, func(app *cli.App) error {
			return app.Engine.ChangeZoneWidth(args[0], width)
		})
	},
}

// withLayout opens the app, runs fn and, when save is set, persists the result.
func withLayout(cmd *cobra.Command, save bool, fn func(*cli.App) error) error {
	ctx := cmd.Context()
	app, err := openApp(ctx, cmd, cli.Options{})
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	if err := fn(app); err != nil {
		return err
	}
	if save {
		return app.Save(ctx)
	}
	return nil
}

func printLayout(w io.Writer, snap domain.LayoutSnapshot) {
	for _, id := range snap.Order {
		z := snap.Zones[id]
		components := "(empty)"
		if len(z.Components) > 0 {
			components = strings.Join(z.Components, ", ")
		}
		fmt.Fprintf(w, "%s [%s]: %s\n", id, z.Width, components)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(layoutCmd)
	layoutCmd.AddCommand(layoutShowCmd, layoutMoveCmd, layoutAddZoneCmd, layoutRemoveZoneCmd, layoutWidthCmd)
	layoutShowCmd.Flags().Bool("json", false, "Print the layout snapshot as JSON")
}
