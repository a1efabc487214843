// Package netlist reconstructs electrical nets from schematic geometry.
//
// Wires whose endpoints coincide within a tolerance are grouped into
// clusters with a union-find structure keyed by wire index. Junctions and
// labels are attached to every cluster that has a coincident wire endpoint,
// a component pin only to the first such cluster, and each cluster becomes
// one named Net.
//
// # Overview
//
// The synthesis process:
//  1. Bucket every wire endpoint into a spatial grid whose cells are twice
//     the tolerance wide, so only neighbouring cells need comparing
//  2. Union wires that share a coincident endpoint
//  3. Enumerate clusters in order of their lowest wire index
//  4. Attach junctions, labels and pins (pins go to the first cluster only)
//  5. Name each cluster Net_<i>, or after its first non-empty label
//  6. Flag clusters whose name clashes with an earlier key and give them a
//     unique name#index key
//
// # Usage
//
//	sch, err := schematic.ParseFile("board.kicad_sch")
//	if err != nil {
//		return err
//	}
//
//	cfg := netlist.DefaultConfig()
//	nets, err := netlist.FromSchematic(sch, cfg)
//	if err != nil {
//		return err
//	}
//
//	for _, n := range nets {
//		fmt.Printf("%s: %d pins\n", n.Name, len(n.Pins))
//	}
//
// # Pin Placement
//
// A pin's absolute position is the component position plus the pin offset.
// The component rotation is not applied unless Config.RotatePins is set.
package netlist
