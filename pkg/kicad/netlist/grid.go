package netlist

import (
	"math"

	"github.com/OpenTraceLab/schnet/pkg/kicad/sexp"
)

type cellKey struct {
	x, y int64
}

// grid buckets points into square cells. Cells are twice the tolerance
// wide so two coincident points always land in the same or adjacent cells,
// even after rounding in the division.
type grid struct {
	size   float64
	tol    float64
	points []sexp.Point
	cells  map[cellKey][]int
}

func newGrid(tol float64, capacity int) *grid {
	return &grid{
		size:   2 * tol,
		tol:    tol,
		points: make([]sexp.Point, 0, capacity),
		cells:  make(map[cellKey][]int, capacity),
	}
}

func (g *grid) key(p sexp.Point) cellKey {
	return cellKey{
		x: int64(math.Floor(p.X / g.size)),
		y: int64(math.Floor(p.Y / g.size)),
	}
}

// insert adds p and returns its id (insertion index).
func (g *grid) insert(p sexp.Point) int {
	id := len(g.points)
	g.points = append(g.points, p)
	k := g.key(p)
	g.cells[k] = append(g.cells[k], id)
	return id
}

// near calls fn with the id of every stored point coincident with p, in
// no particular order.
func (g *grid) near(p sexp.Point, fn func(id int)) {
	k := g.key(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, id := range g.cells[cellKey{k.x + dx, k.y + dy}] {
				if p.Coincident(g.points[id], g.tol) {
					fn(id)
				}
			}
		}
	}
}
