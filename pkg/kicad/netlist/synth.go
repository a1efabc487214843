package netlist

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/OpenTraceLab/schnet/pkg/kicad/schematic"
)

// FromSchematic synthesizes the nets of a parsed schematic.
func FromSchematic(sch *schematic.Schematic, cfg *Config) ([]*Net, error) {
	components := make([]*schematic.Component, 0, sch.Components.Len())
	for pair := sch.Components.Oldest(); pair != nil; pair = pair.Next() {
		components = append(components, pair.Value)
	}
	return Synthesize(sch.Wires, sch.Junctions, sch.Labels, components, cfg)
}

// Synthesize groups wires into connected clusters and materializes each
// cluster as a Net. Clustering does not depend on input order; nets are
// enumerated by the lowest wire index they contain. A nil cfg means
// DefaultConfig.
func Synthesize(
	wires []schematic.Wire,
	junctions []schematic.Junction,
	labels []schematic.Label,
	components []*schematic.Component,
	cfg *Config,
) ([]*Net, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Endpoint ids are 2*wire (start) and 2*wire+1 (end)
	endpoints := newGrid(cfg.Tolerance, 2*len(wires))
	for _, w := range wires {
		endpoints.insert(w.Start)
		endpoints.insert(w.End)
	}

	uf := newUnionFind(len(wires))
	for id, p := range endpoints.points {
		endpoints.near(p, func(other int) {
			uf.union(id/2, other/2)
		})
	}

	// Cluster enumeration follows the first wire index of each cluster
	clusterOf := make([]int, len(wires))
	rootCluster := make(map[int]int)
	var nets []*Net
	for i, w := range wires {
		root := uf.find(i)
		idx, ok := rootCluster[root]
		if !ok {
			idx = len(nets)
			rootCluster[root] = idx
			nets = append(nets, &Net{Name: defaultName(idx), Index: idx})
		}
		clusterOf[i] = idx
		nets[idx].WireIndices = append(nets[idx].WireIndices, i)
		nets[idx].Wires = append(nets[idx].Wires, w)
	}

	// touching returns the ascending cluster indices with an endpoint
	// coincident with p.
	touching := func(p schematic.Point) []int {
		var hits []int
		endpoints.near(p, func(id int) {
			c := clusterOf[id/2]
			for _, h := range hits {
				if h == c {
					return
				}
			}
			hits = append(hits, c)
		})
		sort.Ints(hits)
		return hits
	}

	for _, j := range junctions {
		for _, c := range touching(j.Position) {
			nets[c].Junctions = append(nets[c].Junctions, j)
		}
	}

	for _, l := range labels {
		for _, c := range touching(l.Position) {
			n := nets[c]
			n.Labels = append(n.Labels, l)
			if l.Text != "" && !n.Labeled() {
				n.Name = l.Text
				n.labeled = true
			}
		}
	}

	for _, comp := range components {
		for pair := comp.Pins.Oldest(); pair != nil; pair = pair.Next() {
			hits := touching(comp.PinPosition(pair.Value, cfg.RotatePins))
			if len(hits) == 0 {
				continue
			}
			n := nets[hits[0]]
			n.Pins = append(n.Pins, PinRef{Component: comp.Reference, Pin: pair.Key})
		}
	}

	markCollisions(nets)
	return nets, nil
}

// markCollisions assigns every net a key unique within nets. A net whose
// name is already taken by an earlier net's key is flagged and keyed
// name#index, with a further .N suffix if that key is taken too.
func markCollisions(nets []*Net) {
	taken := make(map[string]bool, len(nets))
	for _, n := range nets {
		key := n.Name
		if taken[key] {
			n.NameCollision = true
			key = n.Name + "#" + strconv.Itoa(n.Index)
			for suffix := 1; taken[key]; suffix++ {
				key = n.Name + "#" + strconv.Itoa(n.Index) + "." + strconv.Itoa(suffix)
			}
		}
		n.key = key
		taken[key] = true
	}
}
