package board

import (
	"math"

	"github.com/mivchik/platforge/internal/grid"
)

// DefaultSocketTolerance is the maximum world-space distance per axis at
// which two sockets count as coinciding.
const DefaultSocketTolerance = 0.25

// Pair is one matched socket pairing: socket A of the first platform
// coincides with socket B of the second.
type Pair struct {
	A int
	B int
}

// Match is the result of resolving two platforms against each other.
// CellAdjacent true with no pairs means the platforms share an edge but
// their sockets are misaligned (for example mismatched footprint scale);
// callers must distinguish that from a full connection.
type Match struct {
	CellAdjacent bool
	Pairs        []Pair
}

// Connected returns true if at least one socket pair matched.
func (m Match) Connected() bool {
	return len(m.Pairs) > 0
}

// SocketsA returns the matched socket indices on the first platform.
func (m Match) SocketsA() map[int]bool {
	out := make(map[int]bool, len(m.Pairs))
	for _, p := range m.Pairs {
		out[p.A] = true
	}
	return out
}

// SocketsB returns the matched socket indices on the second platform.
func (m Match) SocketsB() map[int]bool {
	out := make(map[int]bool, len(m.Pairs))
	for _, p := range m.Pairs {
		out[p.B] = true
	}
	return out
}

// Transposed returns the match from the other platform's point of view.
func (m Match) Transposed() Match {
	out := Match{CellAdjacent: m.CellAdjacent, Pairs: make([]Pair, len(m.Pairs))}
	for i, p := range m.Pairs {
		out.Pairs[i] = Pair{A: p.B, B: p.A}
	}
	return out
}

// Resolve determines adjacency and matched socket pairs between two
// platforms given their occupied cells. Adjacency means sharing an edge, not
// a corner. The result is symmetric: Resolve(b, a) equals the transposed
// Resolve(a, b); no argument-order tie-breaks live here.
func Resolve(a, b *Platform, tolerance float64) Match {
	return resolveCells(a, a.Cells, b, b.Cells, tolerance)
}

// resolveCells is Resolve with explicit cell sets, so preview resolution can
// substitute the cells a floating platform would occupy.
func resolveCells(a *Platform, cellsA []grid.Coord, b *Platform, cellsB []grid.Coord, tolerance float64) Match {
	var m Match
	if !cellsAdjacent(cellsA, cellsB) {
		return m
	}
	m.CellAdjacent = true

	for i := range a.Sockets {
		ax, az := a.SocketWorldPos(i)
		for j := range b.Sockets {
			bx, bz := b.SocketWorldPos(j)
			if math.Abs(ax-bx) <= tolerance && math.Abs(az-bz) <= tolerance {
				m.Pairs = append(m.Pairs, Pair{A: i, B: j})
			}
		}
	}
	return m
}

// cellsAdjacent reports whether any cell of a is a 4-directional neighbor of
// a cell of b. Diagonal contact does not count.
func cellsAdjacent(cellsA, cellsB []grid.Coord) bool {
	if len(cellsA) == 0 || len(cellsB) == 0 {
		return false
	}
	set := make(map[grid.Coord]bool, len(cellsA))
	for _, c := range cellsA {
		set[c] = true
	}
	for _, c := range cellsB {
		for _, n := range c.Neighbors4() {
			if set[n] {
				return true
			}
		}
	}
	return false
}
