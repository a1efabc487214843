package netlist

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/OpenTraceLab/schnet/pkg/kicad/schematic"
)

// PinRef identifies one pin of a placed component.
type PinRef struct {
	Component string // Reference designator, e.g. "R5"
	Pin       string // Pin number
}

func (p PinRef) String() string {
	return p.Component + "." + p.Pin
}

// MarshalJSON encodes the pin as a [reference, number] pair.
func (p PinRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Component, p.Pin})
}

// UnmarshalJSON decodes a [reference, number] pair.
func (p *PinRef) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("pin ref: %w", err)
	}
	p.Component, p.Pin = pair[0], pair[1]
	return nil
}

// Net is one electrically connected wire cluster with everything attached
// to it.
type Net struct {
	Name  string // Label text, or Net_<Index>
	Index int    // Zero-based cluster index in enumeration order

	// NameCollision is set on every net whose name clashes with the key
	// of an earlier net.
	NameCollision bool

	Pins        []PinRef
	WireIndices []int // Indices into the input wire list, ascending
	Wires       []schematic.Wire
	Junctions   []schematic.Junction
	Labels      []schematic.Label

	labeled bool
	key     string
}

// Key returns a name unique among the nets of one synthesis run:
// the plain name, or name#index for colliding nets.
func (n *Net) Key() string {
	if n.key != "" {
		return n.key
	}
	if n.NameCollision {
		return n.Name + "#" + strconv.Itoa(n.Index)
	}
	return n.Name
}

// Labeled reports whether the net took its name from a label.
func (n *Net) Labeled() bool {
	return n.labeled
}

// Dangling reports whether no pin is attached.
func (n *Net) Dangling() bool {
	return len(n.Pins) == 0
}

func defaultName(index int) string {
	return "Net_" + strconv.Itoa(index)
}

// Collisions returns the nets flagged with a name collision.
func Collisions(nets []*Net) []*Net {
	var out []*Net
	for _, n := range nets {
		if n.NameCollision {
			out = append(out, n)
		}
	}
	return out
}

// Find returns the first net with the given name or key.
func Find(nets []*Net, name string) *Net {
	for _, n := range nets {
		if n.Name == name || n.Key() == name {
			return n
		}
	}
	return nil
}

// PinIndex maps each connected pin to the net it belongs to.
func PinIndex(nets []*Net) map[PinRef]*Net {
	index := make(map[PinRef]*Net)
	for _, n := range nets {
		for _, p := range n.Pins {
			if _, ok := index[p]; !ok {
				index[p] = n
			}
		}
	}
	return index
}

// SortedPins returns a copy of the net's pins ordered by reference then
// pin number, for display.
func (n *Net) SortedPins() []PinRef {
	pins := make([]PinRef, len(n.Pins))
	copy(pins, n.Pins)
	sort.Slice(pins, func(i, j int) bool {
		if pins[i].Component != pins[j].Component {
			return pins[i].Component < pins[j].Component
		}
		return pins[i].Pin < pins[j].Pin
	})
	return pins
}
