package board

import "github.com/mivchik/platforge/internal/grid"

// Rules configures per-blueprint placement legality.
type Rules struct {
	// RequireEdgeAdjacency demands the candidate share a full edge with at
	// least one already-placed platform. The very first platform on the
	// board is always legal.
	RequireEdgeAdjacency bool
	// DisallowCornerAdjacency rejects candidates that touch placed
	// platforms only at corners, with no edge contact.
	DisallowCornerAdjacency bool
}

// PlacementCheck is the non-exceptional result of a legality query. Rule
// violations are routine during drag previews, so they surface as fields
// rather than errors.
type PlacementCheck struct {
	// Intact is true when the footprint lies fully inside the grid.
	Intact bool
	// Free is true when no candidate cell carries the Occupied bit.
	Free bool
	// HasEdgeAdjacency is true when a candidate cell shares an edge with
	// a placed (not preview, not picked-up) platform.
	HasEdgeAdjacency bool
	// HasCornerOnlyAdjacency is true when placed platforms touch the
	// candidate only diagonally.
	HasCornerOnlyAdjacency bool
	// OK is the combined verdict under the platform's rules.
	OK bool
}

// CanPlace checks whether the platform may legally commit at the given
// transform. Only Registered platforms count toward occupancy and adjacency;
// a platform mid-drag has already released its cells and neither blocks nor
// satisfies anything.
func (r *Registry) CanPlace(p *Platform, x, z, yawDeg float64) PlacementCheck {
	cells := r.res.ComputeCells(x, z, yawDeg, p.Footprint)
	return r.checkCells(p, cells, p.Footprint.Area())
}

func (r *Registry) checkCells(p *Platform, cells []grid.Coord, wantCells int) PlacementCheck {
	check := PlacementCheck{
		Intact: len(cells) == wantCells && wantCells > 0,
		Free:   r.areaFreeFor(p, cells),
	}
	check.HasEdgeAdjacency, check.HasCornerOnlyAdjacency = r.adjacencyTo(p, cells)

	check.OK = check.Free
	if !check.Intact && !r.cfg.AllowPartial {
		check.OK = false
	}
	if p.Rules.RequireEdgeAdjacency && !check.HasEdgeAdjacency && r.placedCount(p) > 0 {
		check.OK = false
	}
	if p.Rules.DisallowCornerAdjacency && check.HasCornerOnlyAdjacency {
		check.OK = false
	}
	return check
}

// areaFreeFor mirrors Grid.AreaIsFree but tolerates cells the platform
// itself already occupies (so re-registering in place stays idempotent) and
// additionally rejects Locked cells, so a Register can never partially
// apply.
func (r *Registry) areaFreeFor(p *Platform, cells []grid.Coord) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !r.grid.InBounds(c) || r.grid.Has(c, grid.FlagLocked) {
			return false
		}
		if r.grid.Has(c, grid.FlagOccupied) && r.byCell[c] != p.ID {
			return false
		}
	}
	return true
}

// adjacencyTo inspects the candidate cells' surroundings. Edge adjacency
// wins over corner adjacency: HasCornerOnlyAdjacency is set only when there
// is diagonal contact and no edge contact.
func (r *Registry) adjacencyTo(p *Platform, cells []grid.Coord) (edge, cornerOnly bool) {
	inCandidate := make(map[grid.Coord]bool, len(cells))
	for _, c := range cells {
		inCandidate[c] = true
	}
	isOther := func(c grid.Coord) bool {
		if inCandidate[c] {
			return false
		}
		q := r.PlatformAt(c)
		return q != nil && q != p && q.state == Registered
	}

	corner := false
	for _, c := range cells {
		for _, n := range c.Neighbors4() {
			if isOther(n) {
				edge = true
			}
		}
		for _, n := range c.Diagonals() {
			if isOther(n) {
				corner = true
			}
		}
	}
	return edge, corner && !edge
}

// placedCount returns how many Registered platforms other than p exist.
func (r *Registry) placedCount(p *Platform) int {
	n := 0
	for _, id := range r.order {
		q := r.platforms[id]
		if q != p && q.state == Registered {
			n++
		}
	}
	return n
}
