package schematic

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/OpenTraceLab/schnet/pkg/kicad/sexp"
	"github.com/OpenTraceLab/schnet/pkg/kicad/sexp/kicadsexp"
)

// Schematic-specific extraction of the records shared by symbols, library
// symbols and text. Coordinates are millimeters as stored in the file.

// childLists returns the list children of node starting at index from
func childLists(node *kicadsexp.List, from int) []*kicadsexp.List {
	var out []*kicadsexp.List
	for i := from; i < node.Len(); i++ {
		if l, ok := node.Get(i).(*kicadsexp.List); ok && l.Len() > 0 {
			out = append(out, l)
		}
	}
	return out
}

// parseEffects converts an (effects ...) node into an ordered map.
// (key v) maps to v, (key v1 v2 ...) to the list of values, and a bare
// flag such as hide to true.
func parseEffects(node *kicadsexp.List) *Effects {
	effects := orderedmap.New[string, any]()
	for _, item := range sexp.Args(node) {
		switch v := item.(type) {
		case kicadsexp.Symbol:
			effects.Set(string(v), true)
		case *kicadsexp.List:
			key, ok := sexp.NodeName(v)
			if !ok {
				continue
			}
			switch v.Len() {
			case 1:
				effects.Set(key, true)
			case 2:
				effects.Set(key, sexp.ToValue(v.Get(1)))
			default:
				vals := make([]any, 0, v.Len()-1)
				for _, x := range sexp.Args(v) {
					vals = append(vals, sexp.ToValue(x))
				}
				effects.Set(key, vals)
			}
		}
	}
	return effects
}

// parseProperty parses (property "Name" "Value" (at X Y [angle]) (effects ...)).
// Properties without a value return nil.
func parseProperty(node *kicadsexp.List) (*Property, error) {
	name, ok := sexp.AtomAt(node, 1)
	if !ok {
		return nil, nil
	}
	value, ok := sexp.AtomAt(node, 2)
	if !ok {
		return nil, nil
	}

	prop := &Property{
		Name:    name,
		Value:   value,
		Effects: orderedmap.New[string, any](),
	}

	for _, child := range childLists(node, 3) {
		key, _ := sexp.NodeName(child)
		switch key {
		case nodeAt:
			pos, rot, err := sexp.GetPlacement(child)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", name, err)
			}
			prop.Position = pos
			prop.Rotation = rot
		case nodeEffects:
			prop.Effects = parseEffects(child)
		}
	}

	return prop, nil
}

// parsePin handles both pin forms:
//
//	(pin passive line (at X Y angle) (length L) (name "~") (number "1"))
//	(pin "1" (uuid ...))
//
// The first is a library definition; the second is a placed-instance
// reference carrying only the number.
func parsePin(node *kicadsexp.List) (*Pin, error) {
	first, ok := sexp.AtomAt(node, 1)
	if !ok {
		return nil, nil
	}

	shape, ok := sexp.AtomAt(node, 2)
	if !ok {
		pin := &Pin{Number: first}
		if err := applyPinChildren(pin, node, 2); err != nil {
			return nil, err
		}
		return pin, nil
	}

	pin := &Pin{Type: first, Shape: shape}
	if err := applyPinChildren(pin, node, 3); err != nil {
		return nil, err
	}
	return pin, nil
}

func applyPinChildren(pin *Pin, node *kicadsexp.List, from int) error {
	for _, child := range childLists(node, from) {
		key, _ := sexp.NodeName(child)
		switch key {
		case nodeAt:
			pos, rot, err := sexp.GetPlacement(child)
			if err != nil {
				return fmt.Errorf("pin: %w", err)
			}
			pin.Position = pos
			pin.Orientation = rot
		case nodeLength:
			length, err := sexp.RequireFloat(child, 1)
			if err != nil {
				return fmt.Errorf("pin: %w", err)
			}
			pin.Length = length
		case nodeName:
			pin.Name, _ = sexp.AtomAt(child, 1)
		case nodeNumber:
			pin.Number, _ = sexp.AtomAt(child, 1)
		}
	}
	return nil
}

// parseTextLike extracts text, placement and effects shared by text
// annotations and labels. The text is the second element and defaults
// to empty.
func parseTextLike(node *kicadsexp.List) (Text, error) {
	var t Text
	t.Text, _ = sexp.AtomAt(node, 1)
	t.Effects = orderedmap.New[string, any]()

	for _, child := range childLists(node, 1) {
		key, _ := sexp.NodeName(child)
		switch key {
		case nodeAt:
			pos, rot, err := sexp.GetPlacement(child)
			if err != nil {
				return Text{}, err
			}
			t.Position = pos
			t.Rotation = rot
		case nodeEffects:
			t.Effects = parseEffects(child)
		}
	}
	return t, nil
}
