// Package schematic builds a typed model of KiCad schematic files (.kicad_sch)
// from the generic S-expression tree.
package schematic

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/OpenTraceLab/schnet/pkg/kicad/sexp"
)

// Re-export shared types from sexp package for convenience
type Point = sexp.Point

// Effects holds display effects keyed by effect name in file order.
// Values are strings, nested []any trees, or true for bare flags.
type Effects = orderedmap.OrderedMap[string, any]

// Properties is an insertion-ordered property bag keyed by property name.
type Properties = orderedmap.OrderedMap[string, *Property]

// Pins maps pin number to pin, in file order.
type Pins = orderedmap.OrderedMap[string, *Pin]

// Schematic represents a complete KiCad schematic file
type Schematic struct {
	Version          string                                 // File format version
	Generator        string                                 // Generator info (e.g., "eeschema")
	GeneratorVersion string                                 // Generator version
	UUID             string                                 // Schematic UUID
	Paper            string                                 // Paper size (e.g., "A4")
	TitleBlock       *orderedmap.OrderedMap[string, string] // Title block entries, nil if absent
	Texts            []Text                                 // Free-form text annotations

	LibSymbols *orderedmap.OrderedMap[string, *LibrarySymbol] // Embedded library symbols by id
	Components *orderedmap.OrderedMap[string, *Component]     // Placed symbols by reference
	Wires      []Wire                                         // Wire segments
	Junctions  []Junction                                     // Wire junctions
	Labels     []Label                                        // Local and hierarchical labels

	// Dropped lists placed symbols that were discarded for lacking a
	// Reference. They are not part of the model.
	Dropped []DroppedSymbol
}

// DroppedSymbol records a symbol instance skipped by the builder
type DroppedSymbol struct {
	LibraryID string
	Offset    int // byte offset of the symbol node
}

// Property is a named value with its placement and display effects
type Property struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	Position Point    `json:"position"`
	Rotation float64  `json:"rotation"`
	Effects  *Effects `json:"effects,omitzero"`
}

// Pin represents a symbol pin. For placed components Position is relative
// to the owning component.
type Pin struct {
	Number      string  `json:"number"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`            // input, output, passive, power_in, ...
	Shape       string  `json:"shape,omitempty"` // line, inverted, clock, ...
	Position    Point   `json:"position"`
	Orientation float64 `json:"orientation"`
	Length      float64 `json:"length"`
}

// Component is a placed symbol instance
type Component struct {
	Reference  string
	Value      string
	Footprint  string
	Position   Point
	Rotation   float64
	LibraryID  string
	Pins       *Pins
	Properties *Properties
}

// PinPosition returns the absolute position of pin. With rotate set the
// pin offset is rotated by the component rotation first.
func (c *Component) PinPosition(pin *Pin, rotate bool) Point {
	offset := pin.Position
	if rotate && c.Rotation != 0 {
		offset = offset.Rotate(c.Rotation)
	}
	return c.Position.Add(offset)
}

// Property returns the value of the named property, or "" if absent
func (c *Component) Property(name string) string {
	if prop, ok := c.Properties.Get(name); ok {
		return prop.Value
	}
	return ""
}

// LibrarySymbol is a library-level symbol definition. Its geometry is
// reference material only and never contributes to nets.
type LibrarySymbol struct {
	ID         string
	Pins       *Pins
	Properties *Properties
	Graphics   []Graphic
}

// Graphic is an opaque graphical primitive: its tag and the remaining
// elements as a generic tree.
type Graphic struct {
	Type string `json:"type"`
	Data []any  `json:"data"`
}

// Wire represents a wire segment between two absolute points
type Wire struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Degenerate reports whether the wire has zero length
func (w Wire) Degenerate() bool {
	return w.Start == w.End
}

// Junction marks an explicit electrical tie point
type Junction struct {
	Position Point
}

// LabelKind distinguishes local labels from hierarchical ones
type LabelKind string

const (
	LocalLabel        LabelKind = "label"
	HierarchicalLabel LabelKind = "hierarchical_label"
)

// Label names the net of the wire it is anchored on
type Label struct {
	Text     string    `json:"text"`
	Position Point     `json:"position"`
	Rotation float64   `json:"rotation"`
	Type     LabelKind `json:"type"`
}

// Text is a free-form annotation; it never contributes to nets
type Text struct {
	Text     string   `json:"text"`
	Position Point    `json:"position"`
	Rotation float64  `json:"rotation"`
	Effects  *Effects `json:"effects,omitzero"`
}

func newSchematic() *Schematic {
	return &Schematic{
		LibSymbols: orderedmap.New[string, *LibrarySymbol](),
		Components: orderedmap.New[string, *Component](),
	}
}
