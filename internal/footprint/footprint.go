// Package footprint computes which grid cells a platform covers for a given
// world position, yaw and footprint size, and the snap points that keep
// footprints cell-aligned. All functions are pure.
package footprint

import (
	"math"

	"github.com/mivchik/platforge/internal/grid"
)

// Footprint is a platform's size in cells: W along the X axis, L along the
// Z axis, before rotation.
type Footprint struct {
	W int
	L int
}

// Rotated returns the footprint after steps*90 degrees of yaw. Odd steps
// exchange the axes.
func (f Footprint) Rotated(steps int) Footprint {
	if steps&1 == 1 {
		return Footprint{W: f.L, L: f.W}
	}
	return f
}

// Area returns the number of cells the footprint covers.
func (f Footprint) Area() int {
	return f.W * f.L
}

// Steps converts a yaw in degrees to a rotation step count in [0,3] by
// rounding to the nearest 90 degrees. Negative yaws are handled.
func Steps(yawDeg float64) int {
	s := int(math.Round(yawDeg/90)) % 4
	if s < 0 {
		s += 4
	}
	return s
}

// Resolver computes footprint cells against a specific grid.
type Resolver struct {
	Grid *grid.Grid
}

// ComputeCells returns the cells covered by a footprint at the given world
// position and yaw. The rectangle is centered on the cell containing the
// position; integer half-extents mean even sizes center on a cell boundary
// and odd sizes on a cell. Cells outside the grid are silently omitted, so a
// footprint straddling the boundary yields a partial set; callers that
// require intact footprints must compare the result length against
// Footprint.Area.
func (r *Resolver) ComputeCells(x, z, yawDeg float64, fp Footprint) []grid.Coord {
	rot := fp.Rotated(Steps(yawDeg))
	center := r.Grid.WorldToCell(x, z)
	startX := center.X - rot.W/2
	startY := center.Y - rot.L/2

	cells := make([]grid.Coord, 0, rot.W*rot.L)
	for y := startY; y < startY+rot.L; y++ {
		for x := startX; x < startX+rot.W; x++ {
			c := grid.C(x, y)
			if r.Grid.InBounds(c) {
				cells = append(cells, c)
			}
		}
	}
	return cells
}

// FitsFully returns true if the footprint lies entirely inside the grid at
// the given position and yaw.
func (r *Resolver) FitsFully(x, z, yawDeg float64, fp Footprint) bool {
	return len(r.ComputeCells(x, z, yawDeg, fp)) == fp.Area()
}

// SnapForPlacement rounds a world position so the footprint rectangle is
// perfectly cell-aligned: axes with an even rotated dimension snap to the
// nearest cell edge, axes with an odd dimension to the nearest cell center.
func (r *Resolver) SnapForPlacement(x, z, yawDeg float64, fp Footprint) (float64, float64) {
	rot := fp.Rotated(Steps(yawDeg))
	ox, oz := r.Grid.Origin()
	cs := r.Grid.CellSize()
	return ox + snapAxis((x-ox)/cs, rot.W)*cs,
		oz + snapAxis((z-oz)/cs, rot.L)*cs
}

// snapAxis snaps a position in cell units: whole multiples for even
// dimensions, half-integer offsets for odd ones.
func snapAxis(v float64, dim int) float64 {
	if dim%2 == 0 {
		return math.Round(v)
	}
	return math.Round(v-0.5) + 0.5
}
