package sexp

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/schnet/pkg/kicad/sexp/kicadsexp"
)

// S-expression navigation helpers

// NodeName returns the first atom of a list (the node type/name).
func NodeName(s kicadsexp.Sexp) (string, bool) {
	list, ok := s.(*kicadsexp.List)
	if !ok {
		return "", false
	}
	sym, ok := list.Head().(kicadsexp.Symbol)
	return string(sym), ok
}

// FindNode returns the first child list whose name is key.
// Example: FindNode(sexp, "at") finds (at 100 50) in a list
func FindNode(s kicadsexp.Sexp, key string) (*kicadsexp.List, bool) {
	list, ok := s.(*kicadsexp.List)
	if !ok {
		return nil, false
	}
	for _, item := range list.Items() {
		if name, ok := NodeName(item); ok && name == key {
			return item.(*kicadsexp.List), true
		}
	}
	return nil, false
}

// FindAllNodes finds all child lists with the given name
func FindAllNodes(s kicadsexp.Sexp, key string) []*kicadsexp.List {
	list, ok := s.(*kicadsexp.List)
	if !ok {
		return nil
	}
	var results []*kicadsexp.List
	for _, item := range list.Items() {
		if name, ok := NodeName(item); ok && name == key {
			results = append(results, item.(*kicadsexp.List))
		}
	}
	return results
}

// Args returns all items in a list excluding the leading name.
// Example: Args((layers "F.Cu" "B.Cu")) returns ["F.Cu", "B.Cu"]
func Args(list *kicadsexp.List) []kicadsexp.Sexp {
	if list == nil || list.Len() <= 1 {
		return nil
	}
	return list.Items()[1:]
}

// AtomAt returns the atom at index, or false if the index is out of
// range or holds a list. Index 0 is the node name.
func AtomAt(list *kicadsexp.List, index int) (string, bool) {
	if list == nil {
		return "", false
	}
	sym, ok := list.Get(index).(kicadsexp.Symbol)
	return string(sym), ok
}

// HasAtom checks if a list directly contains the given bare atom
func HasAtom(list *kicadsexp.List, atom string) bool {
	for _, item := range Args(list) {
		if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == atom {
			return true
		}
	}
	return false
}

// Typed value extraction helpers. Numeric slots that hold something other
// than a number fail with a *FormatError naming the node.

// FloatAt parses the float at index. The bool result is false when the
// slot is absent.
func FloatAt(list *kicadsexp.List, index int) (float64, bool, error) {
	item := list.Get(index)
	if item == nil {
		return 0, false, nil
	}
	name, _ := NodeName(list)

	sym, ok := item.(kicadsexp.Symbol)
	if !ok {
		return 0, true, &FormatError{Tag: name, Msg: fmt.Sprintf("expected number at index %d, got list", index)}
	}

	val, err := strconv.ParseFloat(string(sym), 64)
	if err != nil {
		return 0, true, &FormatError{Tag: name, Msg: fmt.Sprintf("invalid number %q at index %d", string(sym), index), Err: err}
	}
	return val, true, nil
}

// RequireFloat is FloatAt for slots that must be present.
func RequireFloat(list *kicadsexp.List, index int) (float64, error) {
	val, present, err := FloatAt(list, index)
	if err != nil {
		return 0, err
	}
	if !present {
		name, _ := NodeName(list)
		return 0, &FormatError{Tag: name, Msg: fmt.Sprintf("missing number at index %d", index)}
	}
	return val, nil
}

// Domain-specific extraction helpers

// GetPoint extracts X,Y from a (keyword X Y ...) node such as (xy 1 2) or (at 1 2 90).
// Schematic coordinates are already in millimeters.
func GetPoint(list *kicadsexp.List) (Point, error) {
	x, err := RequireFloat(list, 1)
	if err != nil {
		return Point{}, err
	}
	y, err := RequireFloat(list, 2)
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

// GetPlacement extracts position and rotation from an (at X Y [angle]) node.
// Schematic angles are plain degrees; a missing angle is 0.
func GetPlacement(list *kicadsexp.List) (Point, float64, error) {
	pos, err := GetPoint(list)
	if err != nil {
		return Point{}, 0, err
	}
	angle, _, err := FloatAt(list, 3)
	if err != nil {
		return Point{}, 0, err
	}
	return pos, angle, nil
}

// FindPlacement looks up the (at ...) child of node. A missing node yields
// the origin with no error.
func FindPlacement(node kicadsexp.Sexp) (Point, float64, error) {
	at, ok := FindNode(node, "at")
	if !ok {
		return Point{}, 0, nil
	}
	return GetPlacement(at)
}

// ToValue converts a tree into plain Go values: atoms become strings and
// lists become []any. Used to carry opaque blocks into JSON output.
func ToValue(s kicadsexp.Sexp) any {
	switch v := s.(type) {
	case kicadsexp.Symbol:
		return string(v)
	case *kicadsexp.List:
		out := make([]any, 0, v.Len())
		for _, item := range v.Items() {
			out = append(out, ToValue(item))
		}
		return out
	}
	return nil
}
