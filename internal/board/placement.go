package board

import (
	"github.com/mivchik/platforge/internal/footprint"
	"github.com/mivchik/platforge/internal/grid"
)

// Placement is an in-progress drag session: either a freshly spawned
// platform or an existing one that was picked up. It is the only write
// entry point presentation code gets into the registry.
type Placement struct {
	registry *Registry
	platform *Platform
	isNew    bool

	// pre-pickup transform, for cancel-revert
	prevX, prevZ, prevYaw float64

	previewCells []grid.Coord
	check        PlacementCheck
}

// Platform returns the platform being dragged.
func (pl *Placement) Platform() *Platform { return pl.platform }

// Check returns the legality verdict at the current drag position.
func (pl *Placement) Check() PlacementCheck { return pl.check }

// PreviewCells returns the cells the platform would occupy at the current
// drag position.
func (pl *Placement) PreviewCells() []grid.Coord { return pl.previewCells }

// StartPlacement spawns a new platform and opens a drag session for it. Any
// prior session is cancelled first; if that cancel cannot revert, the prior
// session stays open and nil is returned.
func (r *Registry) StartPlacement(kind string, fp footprint.Footprint, rules Rules) *Placement {
	if !r.CancelPlacement() {
		return nil
	}
	p := r.Spawn(kind, fp, rules)
	r.session = &Placement{
		registry: r,
		platform: p,
		isNew:    true,
	}
	return r.session
}

// RequestPickup lifts a registered platform into a drag session: its cells
// revert to Empty, freeing the space for previews, while its original
// transform is kept for cancel-revert. Returns nil if the platform is not
// registered or a prior session could not be cancelled.
func (r *Registry) RequestPickup(p *Platform) *Placement {
	if p == nil || p.state != Registered {
		return nil
	}
	if !r.CancelPlacement() {
		return nil
	}
	session := &Placement{
		registry: r,
		platform: p,
		prevX:    p.X,
		prevZ:    p.Z,
		prevYaw:  p.Yaw,
	}
	r.PickUp(p)
	r.session = session
	r.updateSession(p.X, p.Z, p.Yaw)
	return session
}

// ActivePlacement returns the current drag session, or nil.
func (r *Registry) ActivePlacement() *Placement { return r.session }

// UpdateDragPosition moves the active session to a new world position and
// yaw. The position snaps to the footprint's parity-correct grid point, the
// preview flags move with it, and legality is re-checked. The heavy
// connection recompute is deferred to Flush via the dirty flag.
func (r *Registry) UpdateDragPosition(x, z, yawDeg float64) {
	if r.session == nil {
		return
	}
	sx, sz := r.res.SnapForPlacement(x, z, yawDeg, r.session.platform.Footprint)
	r.updateSession(sx, sz, yawDeg)
}

func (r *Registry) updateSession(x, z, yawDeg float64) {
	pl := r.session
	p := pl.platform

	r.clearPreviewFlags(pl)

	p.X, p.Z, p.Yaw = x, z, yawDeg
	pl.previewCells = r.res.ComputeCells(x, z, yawDeg, p.Footprint)
	pl.check = r.checkCells(p, pl.previewCells, p.Footprint.Area())

	// Preview never writes Occupied; TrySet rejection on foreign cells is
	// routine.
	for _, c := range pl.previewCells {
		r.grid.TrySet(c, grid.FlagOccupyPreview, 0)
	}
	r.dirty = true
}

// ConfirmPlacement commits the active session at its current position.
// Returns false, leaving the session open, when the position is illegal.
func (r *Registry) ConfirmPlacement() bool {
	pl := r.session
	if pl == nil {
		return false
	}
	if !pl.check.OK {
		return false
	}
	r.clearPreviewFlags(pl)
	if !r.Register(pl.platform) {
		return false
	}
	r.session = nil
	r.dirty = true
	return true
}

// CancelPlacement reverts the active session: a picked-up platform
// re-occupies its original cells exactly; a freshly spawned one is
// destroyed. No partial state or dangling reverse-index entries survive.
// Returns false, keeping the session open at the original transform, when
// the old cells can no longer be taken (an external lock landed while the
// platform floated); a platform is never stranded without cells and
// without a session.
func (r *Registry) CancelPlacement() bool {
	pl := r.session
	if pl == nil {
		return true
	}
	r.clearPreviewFlags(pl)
	r.session = nil

	if pl.isNew {
		r.destroy(pl.platform)
		r.dirty = true
		return true
	}

	p := pl.platform
	p.X, p.Z, p.Yaw = pl.prevX, pl.prevZ, pl.prevYaw
	if !r.Register(p) {
		r.session = pl
		r.updateSession(p.X, p.Z, p.Yaw)
		return false
	}
	return true
}

// clearPreviewFlags removes the session's OccupyPreview marks.
func (r *Registry) clearPreviewFlags(pl *Placement) {
	for _, c := range pl.previewCells {
		r.grid.Clear(c, grid.FlagOccupyPreview)
	}
	pl.previewCells = nil
}

// destroy forgets a platform entirely. Cells are released if any remain.
func (r *Registry) destroy(p *Platform) {
	switch p.state {
	case Registered:
		r.Unregister(p)
	case PickedUp:
		// Was placed once; consumers tracking it still need the removal.
		r.emit(r.onRemoved, p)
	}
	delete(r.platforms, p.ID)
	for i, id := range r.order {
		if id == p.ID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	p.state = Unregistered
}

// Remove permanently deletes a platform from the board, tearing down its
// cells and connections.
func (r *Registry) Remove(p *Platform) {
	if r.session != nil && r.session.platform == p {
		r.clearPreviewFlags(r.session)
		r.session = nil
	}
	r.destroy(p)
	r.dirty = true
}
