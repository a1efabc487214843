// Package sexp provides shared S-expression navigation and geometry for
// KiCad files: typed extraction from the generic tree and the tolerance
// based point comparison used by connectivity code.
package sexp

import (
	"math"

	"github.com/OpenTraceLab/schnet/pkg/kicad/sexp/kicadsexp"
)

// DefaultTolerance is the distance under which two schematic points are
// treated as the same point, in schematic units (mm).
const DefaultTolerance = 0.01

// Error taxonomy re-exported from the parser package.
type (
	SyntaxError         = kicadsexp.SyntaxError
	FormatError         = kicadsexp.FormatError
	NestingTooDeepError = kicadsexp.NestingTooDeepError
)

var (
	ErrSyntax         = kicadsexp.ErrSyntax
	ErrFormat         = kicadsexp.ErrFormat
	ErrNestingTooDeep = kicadsexp.ErrNestingTooDeep
)

// Point represents a 2D coordinate in schematic units
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// DistanceTo returns the Euclidean distance between two points
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Coincident reports whether p and q are within tol of each other.
// The boundary is inclusive: a distance of exactly tol is coincident.
func (p Point) Coincident(q Point, tol float64) bool {
	return p.DistanceTo(q) <= tol
}

// Rotate rotates p about the origin by deg degrees. Quarter turns are exact.
func (p Point) Rotate(deg float64) Point {
	sin, cos := sinCos(deg)
	return Point{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

func sinCos(deg float64) (float64, float64) {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	switch d {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	return math.Sincos(d * math.Pi / 180)
}

// BoundingBox represents a rectangular boundary
type BoundingBox struct {
	Min Point
	Max Point
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Point{X: math.Inf(1), Y: math.Inf(1)},
		Max: Point{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// IsEmpty checks if the bounding box is empty
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Expand expands the bounding box to include a point
func (bb *BoundingBox) Expand(p Point) {
	bb.Min.X = math.Min(bb.Min.X, p.X)
	bb.Min.Y = math.Min(bb.Min.Y, p.Y)
	bb.Max.X = math.Max(bb.Max.X, p.X)
	bb.Max.Y = math.Max(bb.Max.Y, p.Y)
}

// Width returns the width of the bounding box
func (bb BoundingBox) Width() float64 {
	return bb.Max.X - bb.Min.X
}

// Height returns the height of the bounding box
func (bb BoundingBox) Height() float64 {
	return bb.Max.Y - bb.Min.Y
}
