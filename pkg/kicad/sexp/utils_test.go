package sexp

import (
	"errors"
	"math"
	"testing"

	"github.com/OpenTraceLab/schnet/pkg/kicad/sexp/kicadsexp"
)

// Helper to parse s-expression from string
func parseList(t *testing.T, input string) *kicadsexp.List {
	t.Helper()
	s, err := kicadsexp.Parse(input)
	if err != nil {
		t.Fatalf("Failed to parse s-expression %q: %v", input, err)
	}
	list, ok := s.(*kicadsexp.List)
	if !ok {
		t.Fatalf("expected list from %q", input)
	}
	return list
}

func TestFindNode(t *testing.T) {
	s := parseList(t, `(symbol (lib_id "Device:R") (at 100 50 90) (property "Reference" "R1") (property "Value" "10k"))`)

	at, ok := FindNode(s, "at")
	if !ok {
		t.Fatal("FindNode(at) not found")
	}
	if at.String() != "(at 100 50 90)" {
		t.Errorf("got %s", at)
	}

	if _, ok := FindNode(s, "mirror"); ok {
		t.Error("FindNode(mirror) should not be found")
	}

	props := FindAllNodes(s, "property")
	if len(props) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(props))
	}
	if v, _ := AtomAt(props[1], 2); v != "10k" {
		t.Errorf("second property value = %q, want 10k", v)
	}
}

func TestFloatAt(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		index       int
		want        float64
		wantPresent bool
		wantErr     bool
	}{
		{name: "simple float", input: "(width 0.15)", index: 1, want: 0.15, wantPresent: true},
		{name: "negative", input: "(at -2.54 0)", index: 1, want: -2.54, wantPresent: true},
		{name: "integer as float", input: "(length 5)", index: 1, want: 5, wantPresent: true},
		{name: "absent", input: "(at 1 2)", index: 3},
		{name: "non-numeric", input: "(at x 2)", index: 1, wantPresent: true, wantErr: true},
		{name: "list in numeric slot", input: "(at (x) 2)", index: 1, wantPresent: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, present, err := FloatAt(parseList(t, tt.input), tt.index)
			if present != tt.wantPresent {
				t.Errorf("present = %v, want %v", present, tt.wantPresent)
			}
			if tt.wantErr {
				var fe *FormatError
				if !errors.As(err, &fe) {
					t.Fatalf("expected *FormatError, got %v", err)
				}
				if fe.Tag != "at" {
					t.Errorf("tag = %q, want at", fe.Tag)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetPlacement(t *testing.T) {
	pos, angle, err := GetPlacement(parseList(t, "(at 100.33 50.8 270)"))
	if err != nil {
		t.Fatalf("GetPlacement failed: %v", err)
	}
	if pos != (Point{X: 100.33, Y: 50.8}) || angle != 270 {
		t.Errorf("got %v %v", pos, angle)
	}

	if _, _, err := GetPlacement(parseList(t, "(at 1)")); !errors.Is(err, ErrFormat) {
		t.Errorf("missing Y should be a format error, got %v", err)
	}

	pos, angle, err = FindPlacement(parseList(t, "(junction (diameter 0))"))
	if err != nil || pos != (Point{}) || angle != 0 {
		t.Errorf("missing at should default to origin, got %v %v %v", pos, angle, err)
	}
}

func TestCoincidentBoundary(t *testing.T) {
	a := Point{X: 0, Y: 0}
	if !a.Coincident(Point{X: 0.01, Y: 0}, 0.01) {
		t.Error("distance exactly equal to tolerance must be coincident")
	}
	if a.Coincident(Point{X: 0.0101, Y: 0}, 0.01) {
		t.Error("distance above tolerance must not be coincident")
	}
}

func TestRotate(t *testing.T) {
	p := Point{X: 2.54, Y: 0}
	if got := p.Rotate(90); got != (Point{X: 0, Y: 2.54}) {
		t.Errorf("Rotate(90) = %v", got)
	}
	if got := p.Rotate(-90); got != (Point{X: 0, Y: -2.54}) {
		t.Errorf("Rotate(-90) = %v", got)
	}
	got := p.Rotate(45)
	if math.Abs(got.X-got.Y) > 1e-12 {
		t.Errorf("Rotate(45) = %v, want x == y", got)
	}
}

func TestToValue(t *testing.T) {
	v := ToValue(parseList(t, `(polyline (pts (xy 0 0) (xy 1 1)))`))
	outer, ok := v.([]any)
	if !ok || len(outer) != 2 || outer[0] != "polyline" {
		t.Fatalf("unexpected value %#v", v)
	}
}
