package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/schnet/internal/pipeline"
	"github.com/OpenTraceLab/schnet/pkg/kicad/export"
	"github.com/OpenTraceLab/schnet/pkg/kicad/netlist"
)

var infoCmd = &cobra.Command{
	Use:   "info <schematic_file> [component]",
	Short: "Show schematic information",
	Long: `Display information about a KiCad schematic file.

Without component argument: shows schematic summary
With component argument: shows details for that specific component`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
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
		return showComponentDetails(out, res, args[1])
	}
	showSummary(out, res, args[0])
	return nil
}

func showSummary(w io.Writer, res *pipeline.Result, filename string) {
	sch := res.Schematic
	meta := res.Document.Metadata

	writeLines(w,
		titleStyle.Render("Schematic: "+filename),
		field("Version", meta.Version),
		field("Generator", strings.TrimSpace(meta.Generator+" "+meta.GeneratorVersion)),
		field("Paper", meta.Paper),
		field("Content hash", res.Hash),
		"",
	)

	if tb := sch.TitleBlock; tb != nil && tb.Len() > 0 {
		writeLines(w, headingStyle.Render("Title Block:"))
		for pair := tb.Oldest(); pair != nil; pair = pair.Next() {
			writeLines(w, field(pair.Key, pair.Value))
		}
		writeLines(w, "")
	}

	st := res.Stats
	writeLines(w,
		headingStyle.Render("Statistics:"),
		field("Components", st.Components),
		field("Library symbols", st.LibrarySymbols),
		field("Wires", st.Wires),
		field("Junctions", st.Junctions),
		field("Labels", st.Labels),
		field("Nets", st.Nets),
		field("Nets with pins", st.NetsWithPins),
		field("Dangling nets", st.DanglingNets),
		"",
	)

	if sch.Components.Len() > 0 {
		writeLines(w, headingStyle.Render("Components:"))

		// Group by reference prefix
		byPrefix := make(map[string][]string)
		for pair := sch.Components.Oldest(); pair != nil; pair = pair.Next() {
			prefix := refPrefix(pair.Key)
			byPrefix[prefix] = append(byPrefix[prefix], pair.Key)
		}
		prefixes := make([]string, 0, len(byPrefix))
		for p := range byPrefix {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)

		for _, prefix := range prefixes {
			refs := byPrefix[prefix]
			sort.Strings(refs)
			writeLines(w, field(prefix, strings.Join(refs, ", ")))
		}
		writeLines(w, "")
	}

	if unconnected := export.Unconnected(res.Document); len(unconnected) > 0 {
		writeLines(w,
			warnStyle.Render("Unconnected components:"),
			"  "+strings.Join(unconnected, ", "),
			"")
	}

	if len(sch.Dropped) > 0 {
		writeLines(w, mutedStyle.Render(fmt.Sprintf("%d symbol(s) without reference ignored", len(sch.Dropped))))
	}
}

func showComponentDetails(w io.Writer, res *pipeline.Result, ref string) error {
	comp, ok := res.Schematic.Components.Get(ref)
	if !ok {
		return fmt.Errorf("component '%s' not found", ref)
	}

	writeLines(w,
		titleStyle.Render("Component: "+ref),
		field("Library", comp.LibraryID),
		field("Value", comp.Value),
		field("Footprint", comp.Footprint),
		field("Position", fmt.Sprintf("(%.2f, %.2f)", comp.Position.X, comp.Position.Y)),
	)
	if comp.Rotation != 0 {
		writeLines(w, field("Rotation", fmt.Sprintf("%.1f°", comp.Rotation)))
	}
	writeLines(w, "")

	if comp.Properties.Len() > 0 {
		writeLines(w, headingStyle.Render("Properties:"))
		for pair := comp.Properties.Oldest(); pair != nil; pair = pair.Next() {
			writeLines(w, field(pair.Key, pair.Value.Value))
		}
		writeLines(w, "")
	}

	pins := comp.Pins
	if pins == nil || pins.Len() == 0 {
		// Fall back to the library prototype for pin detail
		if lib, ok := res.Schematic.LibSymbols.Get(comp.LibraryID); ok {
			pins = lib.Pins
		}
	}
	if pins == nil || pins.Len() == 0 {
		return nil
	}

	byPin := netlist.PinIndex(res.Nets)
	writeLines(w, headingStyle.Render("Pins:"))
	for pair := pins.Oldest(); pair != nil; pair = pair.Next() {
		pin := pair.Value
		net := mutedStyle.Render("unconnected")
		if n, ok := byPin[netlist.PinRef{Component: ref, Pin: pin.Number}]; ok {
			net = n.Key()
		}
		desc := strings.TrimSpace(fmt.Sprintf("%s %s %s", pin.Name, pin.Type, pin.Shape))
		writeLines(w, field(pin.Number, desc+"  -> "+net))
	}
	return nil
}

// refPrefix extracts the letters before the first digit of a reference
func refPrefix(ref string) string {
	for i, c := range ref {
		if c >= '0' && c <= '9' {
			return ref[:i]
		}
	}
	return ref
}

