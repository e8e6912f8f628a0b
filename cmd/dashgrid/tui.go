package main

import (
	"context"
	"errors"
	"os"

	"github.com/aretw0/dashgrid/internal/cli"
	"github.com/aretw0/dashgrid/internal/presentation/tui"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal dashboard",
	Long:  `Shows the layout as columns in the terminal. Drag component rows between columns with the mouse.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("the terminal dashboard needs an interactive terminal")
		}

		// Logs would corrupt the alternate screen.
		logFile, err := os.OpenFile(".dashgrid-tui.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer logFile.Close()

		app, err := openApp(cmd.Context(), cmd, cli.Options{LogOutput: logFile})
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		zones := zone.New()
		defer zones.Close()

		p := tea.NewProgram(tui.New(app.Engine, zones), tea.WithAltScreen(), tea.WithMouseAllMotion())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
