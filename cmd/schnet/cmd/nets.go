package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/schnet/pkg/kicad/netlist"
)

var netsCmd = &cobra.Command{
	Use:   "nets <schematic_file> [net_name]",
	Short: "List synthesized nets",
	Long: `List every net with its pin, wire and label counts, or show one net
in detail. A colliding net may be addressed by its NAME#INDEX key.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runNets,
}

func init() {
	rootCmd.AddCommand(netsCmd)
}

func runNets(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.process(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("error parsing schematic: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(args) >= 2 {
		n := netlist.Find(res.Nets, args[1])
		if n == nil {
			return fmt.Errorf("net '%s' not found", args[1])
		}
		showNetDetails(out, n)
		return nil
	}
	listNets(out, res.Nets)
	return nil
}

func listNets(w io.Writer, nets []*netlist.Net) {
	writeLines(w,
		titleStyle.Render(fmt.Sprintf("%d nets", len(nets))),
		fmt.Sprintf("%-30s %6s %6s %6s %6s", "Net Name", "Pins", "Wires", "Juncs", "Labels"),
		strings.Repeat("─", 60),
	)
	for _, n := range nets {
		line := fmt.Sprintf("%-30s %6d %6d %6d %6d",
			n.Key(), len(n.Pins), len(n.Wires), len(n.Junctions), len(n.Labels))
		switch {
		case n.NameCollision:
			line = warnStyle.Render(line)
		case n.Dangling():
			line = mutedStyle.Render(line)
		}
		writeLines(w, line)
	}
}

func showNetDetails(w io.Writer, n *netlist.Net) {
	writeLines(w, titleStyle.Render(fmt.Sprintf("Net: %s (index %d)", n.Name, n.Index)))
	if n.NameCollision {
		writeLines(w, warnStyle.Render("  name shared with an earlier net, keyed "+n.Key()))
	}
	writeLines(w, "")

	writeLines(w, headingStyle.Render(fmt.Sprintf("Pins (%d):", len(n.Pins))))
	for _, p := range n.SortedPins() {
		writeLines(w, "  "+p.String())
	}

	writeLines(w, "", headingStyle.Render(fmt.Sprintf("Wires (%d):", len(n.Wires))))
	for _, wire := range n.Wires {
		writeLines(w, fmt.Sprintf("  (%.2f, %.2f) -> (%.2f, %.2f)",
			wire.Start.X, wire.Start.Y, wire.End.X, wire.End.Y))
	}

	if len(n.Junctions) > 0 {
		writeLines(w, "", headingStyle.Render(fmt.Sprintf("Junctions (%d):", len(n.Junctions))))
		for _, j := range n.Junctions {
			writeLines(w, fmt.Sprintf("  (%.2f, %.2f)", j.Position.X, j.Position.Y))
		}
	}

	if len(n.Labels) > 0 {
		writeLines(w, "", headingStyle.Render(fmt.Sprintf("Labels (%d):", len(n.Labels))))
		for _, l := range n.Labels {
			writeLines(w, fmt.Sprintf("  %s %s at (%.2f, %.2f)", l.Type, l.Text, l.Position.X, l.Position.Y))
		}
	}
}
