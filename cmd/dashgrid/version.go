package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/dashgrid"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dashgrid",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dashgrid version %s\n", strings.TrimSpace(dashgrid.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
