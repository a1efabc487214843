package schematic

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/OpenTraceLab/schnet/pkg/kicad/sexp"
	"github.com/OpenTraceLab/schnet/pkg/kicad/sexp/kicadsexp"
)

// Build walks the children of a (kicad_sch ...) root once and assembles
// the schematic model. Any numeric slot holding a non-number fails the
// whole build with a *sexp.FormatError.
func Build(root *kicadsexp.List) (*Schematic, error) {
	if name, ok := sexp.NodeName(root); !ok || name != RootTag {
		return nil, &sexp.FormatError{Tag: RootTag, Msg: "root is not a kicad_sch list"}
	}

	sch := newSchematic()
	for _, node := range childLists(root, 1) {
		name, _ := sexp.NodeName(node)
		if err := sch.apply(ParseTag(name), node); err != nil {
			return nil, err
		}
	}
	return sch, nil
}

func (sch *Schematic) apply(tag Tag, node *kicadsexp.List) error {
	switch tag {
	case TagVersion:
		sch.Version, _ = sexp.AtomAt(node, 1)
	case TagGenerator:
		sch.Generator, _ = sexp.AtomAt(node, 1)
	case TagGeneratorVersion:
		sch.GeneratorVersion, _ = sexp.AtomAt(node, 1)
	case TagUUID:
		sch.UUID, _ = sexp.AtomAt(node, 1)
	case TagPaper:
		sch.Paper, _ = sexp.AtomAt(node, 1)

	case TagTitleBlock:
		sch.TitleBlock = parseTitleBlock(node)

	case TagLibSymbols:
		return sch.parseLibSymbols(node)

	case TagWire:
		wire, err := parseWire(node)
		if err != nil {
			return fmt.Errorf("wire: %w", err)
		}
		sch.Wires = append(sch.Wires, wire)

	case TagJunction:
		pos, _, err := sexp.FindPlacement(node)
		if err != nil {
			return fmt.Errorf("junction: %w", err)
		}
		sch.Junctions = append(sch.Junctions, Junction{Position: pos})

	case TagLabel, TagHierarchicalLabel:
		t, err := parseTextLike(node)
		if err != nil {
			return fmt.Errorf("%s: %w", tag, err)
		}
		sch.Labels = append(sch.Labels, Label{
			Text:     t.Text,
			Position: t.Position,
			Rotation: t.Rotation,
			Type:     LabelKind(tag.String()),
		})

	case TagSymbol:
		comp, err := parseComponent(node)
		if err != nil {
			return err
		}
		if comp.Reference == "" {
			sch.Dropped = append(sch.Dropped, DroppedSymbol{LibraryID: comp.LibraryID, Offset: node.Offset()})
			return nil
		}
		sch.Components.Set(comp.Reference, comp)

	case TagText:
		t, err := parseTextLike(node)
		if err != nil {
			return fmt.Errorf("text: %w", err)
		}
		sch.Texts = append(sch.Texts, t)

	case TagUnknown:
		// Not interpreted.
	}
	return nil
}

// parseTitleBlock flattens (key value) children into a string map.
// Numbered comments (comment N "text") are keyed comment_N.
func parseTitleBlock(node *kicadsexp.List) *orderedmap.OrderedMap[string, string] {
	tb := orderedmap.New[string, string]()
	for _, child := range childLists(node, 1) {
		key, ok := sexp.NodeName(child)
		if !ok {
			continue
		}
		if key == nodeComment && child.Len() >= 3 {
			n, _ := sexp.AtomAt(child, 1)
			if text, ok := sexp.AtomAt(child, 2); ok {
				tb.Set(key+"_"+n, text)
			}
			continue
		}
		if value, ok := sexp.AtomAt(child, 1); ok {
			tb.Set(key, value)
		}
	}
	return tb
}

func (sch *Schematic) parseLibSymbols(node *kicadsexp.List) error {
	for _, child := range childLists(node, 1) {
		if name, _ := sexp.NodeName(child); name != nodeSymbol {
			continue
		}
		sym, err := parseLibSymbol(child)
		if err != nil {
			return err
		}
		if sym != nil {
			sch.LibSymbols.Set(sym.ID, sym)
		}
	}
	return nil
}

// parseLibSymbol parses (symbol "Lib:Name" ...). Definitions without an id
// return nil. Pins of nested unit symbols are collected as well; the unit
// blocks themselves are kept as graphics.
func parseLibSymbol(node *kicadsexp.List) (*LibrarySymbol, error) {
	id, ok := sexp.AtomAt(node, 1)
	if !ok {
		return nil, nil
	}

	sym := &LibrarySymbol{
		ID:         id,
		Pins:       orderedmap.New[string, *Pin](),
		Properties: orderedmap.New[string, *Property](),
		Graphics:   []Graphic{},
	}
	if err := sym.collect(node, true); err != nil {
		return nil, fmt.Errorf("lib symbol %q: %w", id, err)
	}
	return sym, nil
}

func (sym *LibrarySymbol) collect(node *kicadsexp.List, top bool) error {
	for _, child := range childLists(node, 2) {
		key, _ := sexp.NodeName(child)
		switch {
		case key == nodePin:
			pin, err := parsePin(child)
			if err != nil {
				return err
			}
			if pin != nil {
				sym.Pins.Set(pin.Number, pin)
			}

		case key == nodeProperty && top:
			prop, err := parseProperty(child)
			if err != nil {
				return err
			}
			if prop != nil {
				sym.Properties.Set(prop.Name, prop)
			}

		case graphicTags[key]:
			if top {
				data := make([]any, 0, child.Len()-1)
				for _, item := range sexp.Args(child) {
					data = append(data, sexp.ToValue(item))
				}
				sym.Graphics = append(sym.Graphics, Graphic{Type: key, Data: data})
			}
			if key == nodeSymbol {
				if err := sym.collect(child, false); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// parseWire extracts start and end from (wire (pts (xy ...) (xy ...))).
// Fewer than two points yields a zero-length wire at the origin; extra
// points are ignored except the last.
func parseWire(node *kicadsexp.List) (Wire, error) {
	var pts []Point
	for _, ptsNode := range sexp.FindAllNodes(node, nodePts) {
		for _, xy := range sexp.FindAllNodes(ptsNode, nodeXY) {
			p, err := sexp.GetPoint(xy)
			if err != nil {
				return Wire{}, err
			}
			pts = append(pts, p)
		}
	}

	if len(pts) < 2 {
		return Wire{}, nil
	}
	return Wire{Start: pts[0], End: pts[len(pts)-1]}, nil
}

// parseComponent parses a placed (symbol (lib_id "...") (at ...) ...) node.
// The library id may also appear as a bare second element.
func parseComponent(node *kicadsexp.List) (*Component, error) {
	comp := &Component{
		Pins:       orderedmap.New[string, *Pin](),
		Properties: orderedmap.New[string, *Property](),
	}
	comp.LibraryID, _ = sexp.AtomAt(node, 1)

	for _, child := range childLists(node, 1) {
		key, _ := sexp.NodeName(child)
		switch key {
		case nodeLibID:
			comp.LibraryID, _ = sexp.AtomAt(child, 1)

		case nodeAt:
			pos, rot, err := sexp.GetPlacement(child)
			if err != nil {
				return nil, fmt.Errorf("symbol %q: %w", comp.LibraryID, err)
			}
			comp.Position = pos
			comp.Rotation = rot

		case nodeProperty:
			prop, err := parseProperty(child)
			if err != nil {
				return nil, fmt.Errorf("symbol %q: %w", comp.LibraryID, err)
			}
			if prop != nil {
				comp.Properties.Set(prop.Name, prop)
			}

		case nodePin:
			pin, err := parsePin(child)
			if err != nil {
				return nil, fmt.Errorf("symbol %q: %w", comp.LibraryID, err)
			}
			if pin != nil {
				comp.Pins.Set(pin.Number, pin)
			}
		}
	}

	comp.Reference = comp.Property(propReference)
	comp.Value = comp.Property(propValue)
	comp.Footprint = comp.Property(propFootprint)
	return comp, nil
}
