package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/schnet/pkg/kicad/export"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "schnet %s (document format %s)\n", version, export.ParserVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
