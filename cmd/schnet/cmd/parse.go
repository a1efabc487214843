package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/schnet/internal/metrics"
	"github.com/OpenTraceLab/schnet/pkg/kicad/export"
)

var (
	parseOutput     string
	parseStrip      bool
	parseCompact    bool
	parseMetricsOut string
)

var parseCmd = &cobra.Command{
	Use:   "parse <schematic_file>",
	Short: "Convert a schematic to its JSON netlist document",
	Long: `Parse a KiCad schematic, synthesize its nets and write the canonical
JSON document to stdout or to the -o location.

Use - as the schematic file to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "output location (path, file:// or s3://bucket/key)")
	parseCmd.Flags().BoolVar(&parseStrip, "strip", false, "drop effects, graphics and empty Datasheet properties")
	parseCmd.Flags().BoolVar(&parseCompact, "compact", false, "write compact JSON instead of indented")
	parseCmd.Flags().StringVar(&parseMetricsOut, "metrics-out", "", "write Prometheus text metrics to this file")
}

func runParse(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	res, err := a.process(ctx, args[0])
	if err == nil {
		err = writeDocument(cmd, a, res.Document)
	}

	if parseMetricsOut != "" {
		if merr := metrics.WriteFile(a.registry, parseMetricsOut); merr != nil && err == nil {
			err = merr
		}
	}
	if err != nil {
		return fmt.Errorf("error processing %s: %w", args[0], err)
	}

	if parseOutput != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s (%d components, %d nets)\n",
			headingStyle.Render("wrote"), parseOutput, res.Stats.Components, res.Stats.Nets)
		if n := res.Stats.NameCollisions; n > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(fmt.Sprintf("%d net name collision(s)", n)))
		}
	}
	return nil
}

func writeDocument(cmd *cobra.Command, a *app, doc *export.Document) error {
	data, err := export.Marshal(doc, !parseCompact)
	if err != nil {
		return err
	}
	if parseOutput == "" || parseOutput == "-" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return a.store.Create(cmd.Context(), parseOutput, data)
}
