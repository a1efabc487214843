package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	tolerance  float64
	rotatePins bool
	maxDepth   int
)

var rootCmd = &cobra.Command{
	Use:   "schnet",
	Short: "schnet - KiCad schematic connectivity extractor",
	Long: `schnet reads KiCad schematic files (.kicad_sch), reconstructs the
electrical nets implied by wires, junctions, labels and pins, and writes a
canonical JSON document.

Inputs and outputs may be local paths, file:// URLs or s3://bucket/key.
Settings come from SCHNET_* environment variables; flags override them.

Examples:
  schnet parse board.kicad_sch -o board.json    # Write the JSON document
  schnet info board.kicad_sch                   # Show schematic summary
  schnet info board.kicad_sch R1                # Show one component
  schnet nets board.kicad_sch VCC               # Show one net
  schnet snapshot board.kicad_sch --sqlite s.db # Record a content snapshot`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().Float64Var(&tolerance, "tolerance", 0.01, "point coincidence tolerance in mm")
	rootCmd.PersistentFlags().BoolVar(&rotatePins, "rotate-pins", false, "rotate pin offsets by component rotation")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 512, "maximum list nesting accepted by the parser")
}
