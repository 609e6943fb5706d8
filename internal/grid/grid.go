// Package grid implements the dense build-grid: per-cell flag state under a
// priority/exclusivity rule, bounds-checked single-cell and area operations,
// a monotonic version counter, and change notifications for dependent
// systems. It is UI-agnostic and deterministic.
package grid

import (
	"fmt"
	"math"
)

// Grid owns a dense W x H array of cell flags. Bounds are fixed at
// allocation. All mutation goes through flag-transition operations that
// enforce the exclusivity priority, bump the version counter, and notify
// subscribers. Out-of-bounds queries read as Empty; out-of-bounds mutations
// are no-ops.
type Grid struct {
	w, h     int
	cellSize float64
	originX  float64 // world X of the west edge of column 0
	originZ  float64 // world Z of the south edge of row 0
	cells    []Flag
	version  uint64

	cellSubs []func(Coord)
	areaSubs []func(Rect)
}

// New allocates an empty grid. Dimensions and cell size must be positive.
func New(w, h int, cellSize float64) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("grid: invalid dimensions %dx%d", w, h)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("grid: invalid cell size %v", cellSize)
	}
	return &Grid{
		w:        w,
		h:        h,
		cellSize: cellSize,
		cells:    make([]Flag, w*h),
	}, nil
}

// W returns the grid width in cells.
func (g *Grid) W() int { return g.w }

// H returns the grid height in cells.
func (g *Grid) H() int { return g.h }

// CellSize returns the world-space edge length of one cell.
func (g *Grid) CellSize() float64 { return g.cellSize }

// SetOrigin places the south-west corner of cell (0,0) at the given world
// position.
func (g *Grid) SetOrigin(x, z float64) {
	g.originX = x
	g.originZ = z
}

// Origin returns the world position of the south-west corner of cell (0,0).
func (g *Grid) Origin() (x, z float64) {
	return g.originX, g.originZ
}

// Version returns the mutation counter. It increments on every accepted
// mutation, so dependents can cheaply detect staleness.
func (g *Grid) Version() uint64 { return g.version }

// Bounds returns the full grid rectangle.
func (g *Grid) Bounds() Rect {
	return Rect{Min: C(0, 0), Max: C(g.w-1, g.h-1)}
}

// InBounds returns true if the coordinate addresses a cell of this grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.w && c.Y >= 0 && c.Y < g.h
}

func (g *Grid) index(c Coord) int {
	return c.Y*g.w + c.X
}

// Flags returns the flag state of a cell. Out-of-bounds cells read as Empty.
func (g *Grid) Flags(c Coord) Flag {
	if !g.InBounds(c) {
		return FlagEmpty
	}
	return g.cells[g.index(c)]
}

// Has returns true if the cell is in bounds and carries all bits of f.
func (g *Grid) Has(c Coord, f Flag) bool {
	return g.InBounds(c) && g.cells[g.index(c)].Has(f)
}

// WorldToCell converts a world position to the containing cell coordinate.
// Positions outside the grid map to out-of-bounds coordinates.
func (g *Grid) WorldToCell(x, z float64) Coord {
	return C(
		int(math.Floor((x-g.originX)/g.cellSize)),
		int(math.Floor((z-g.originZ)/g.cellSize)),
	)
}

// CellCenter returns the world position at the center of a cell.
func (g *Grid) CellCenter(c Coord) (x, z float64) {
	x = g.originX + (float64(c.X)+0.5)*g.cellSize
	z = g.originZ + (float64(c.Y)+0.5)*g.cellSize
	return x, z
}

// OnCellChanged subscribes to single-cell mutations.
func (g *Grid) OnCellChanged(fn func(Coord)) {
	g.cellSubs = append(g.cellSubs, fn)
}

// OnAreaChanged subscribes to bulk area mutations. Area operations fire one
// batched notification instead of one per cell.
func (g *Grid) OnAreaChanged(fn func(Rect)) {
	g.areaSubs = append(g.areaSubs, fn)
}

func (g *Grid) notifyCell(c Coord) {
	for _, fn := range g.cellSubs {
		fn(c)
	}
}

func (g *Grid) notifyArea(r Rect) {
	for _, fn := range g.areaSubs {
		fn(r)
	}
}

// TrySet applies a set/clear request to one cell under the priority rules.
// Returns false with no mutation if the rules reject the transition or the
// cell is out of bounds. Drag-preview code calls this every frame, so
// rejection is routine and never an error.
func (g *Grid) TrySet(c Coord, set, clear Flag) bool {
	if !g.InBounds(c) {
		return false
	}
	next, ok := mergeFlags(g.cells[g.index(c)], set, clear)
	if !ok {
		return false
	}
	g.write(c, next)
	return true
}

// ForceSet applies a set/clear request without priority checks. Exclusivity
// still self-heals: the result collapses to the highest-priority exclusive
// flag present.
func (g *Grid) ForceSet(c Coord, set, clear Flag) {
	if !g.InBounds(c) {
		return
	}
	g.write(c, collapse(g.cells[g.index(c)]&^clear|set))
}

// Clear removes the masked bits from a cell unconditionally. Removal is
// always safe and needs no priority check.
func (g *Grid) Clear(c Coord, mask Flag) {
	if !g.InBounds(c) {
		return
	}
	g.write(c, g.cells[g.index(c)]&^mask)
}

func (g *Grid) write(c Coord, next Flag) {
	i := g.index(c)
	if g.cells[i] == next {
		return
	}
	g.cells[i] = next
	g.version++
	g.notifyCell(c)
}

// AreaIsFree returns true iff every cell in the list is in bounds and has no
// Occupied bit. An out-of-bounds cell counts as not free. An empty list is
// not free either: a placement must cover at least one cell.
func (g *Grid) AreaIsFree(cells []Coord) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !g.InBounds(c) || g.cells[g.index(c)].Has(FlagOccupied) {
			return false
		}
	}
	return true
}

// AddFlagInArea applies TrySet semantics per cell across the rectangle.
// Cells whose priority rules reject the flag are skipped. Fires a single
// AreaChanged notification.
func (g *Grid) AddFlagInArea(r Rect, set, clear Flag) {
	g.eachInBounds(r, func(i int) {
		if next, ok := mergeFlags(g.cells[i], set, clear); ok {
			g.cells[i] = next
		}
	})
}

// SetExactInArea replaces each cell's flags in the rectangle with the given
// value, collapsed to a legal combination. Fires a single AreaChanged
// notification.
func (g *Grid) SetExactInArea(r Rect, f Flag) {
	exact := collapse(f)
	g.eachInBounds(r, func(i int) {
		g.cells[i] = exact
	})
}

// ClearArea removes the masked bits from every cell in the rectangle.
// Fires a single AreaChanged notification.
func (g *Grid) ClearArea(r Rect, mask Flag) {
	g.eachInBounds(r, func(i int) {
		g.cells[i] &^= mask
	})
}

// eachInBounds visits the in-bounds portion of r, bumps the version once and
// fires one batched AreaChanged for the clipped rectangle.
func (g *Grid) eachInBounds(r Rect, fn func(i int)) {
	minX := max(r.Min.X, 0)
	minY := max(r.Min.Y, 0)
	maxX := min(r.Max.X, g.w-1)
	maxY := min(r.Max.Y, g.h-1)
	if maxX < minX || maxY < minY {
		return
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			fn(y*g.w + x)
		}
	}
	g.version++
	g.notifyArea(Rect{Min: C(minX, minY), Max: C(maxX, maxY)})
}
