// Package board is the stateful placement engine: it owns the set of active
// platforms, the cell-to-platform reverse index, connection resolution
// between neighbors, placement validation, and the batched recompute that
// keeps drag gestures from going quadratic.
package board

import (
	"github.com/mivchik/platforge/internal/footprint"
	"github.com/mivchik/platforge/internal/grid"
	"github.com/mivchik/platforge/internal/socket"
)

// State tracks where a platform is in its lifecycle.
type State uint8

const (
	// Unregistered platforms exist but occupy no cells.
	Unregistered State = iota
	// Registered platforms have committed cells in the grid.
	Registered
	// PickedUp platforms released their cells and float in preview.
	PickedUp
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unregistered:
		return "Unregistered"
	case Registered:
		return "Registered"
	case PickedUp:
		return "PickedUp"
	default:
		return "Unknown"
	}
}

// Platform is a placed or in-progress object on the board. It owns its
// socket layout and connection state as plain fields; the registry mutates
// them through the resolution passes.
type Platform struct {
	ID        int64
	Kind      string
	Footprint footprint.Footprint
	Rules     Rules

	// X, Z, Yaw form the world transform. Yaw is restricted to
	// 0/90/180/270 degrees.
	X   float64
	Z   float64
	Yaw float64

	// Cells is nil while unplaced or picked up. When non-nil it must
	// exactly equal the resolver's computed set for the current
	// transform, with every cell Occupied in the grid and reverse-indexed
	// to this platform.
	Cells []grid.Coord

	Sockets []socket.Socket

	connected map[int]bool
	blockers  map[int]int
	state     State
}

// State returns the platform's lifecycle state.
func (p *Platform) State() State { return p.state }

// Connected returns true if the socket at the given index is in the
// connected set.
func (p *Platform) Connected(index int) bool {
	return p.connected[index]
}

// ConnectedSet returns a copy of the connected socket indices.
func (p *Platform) ConnectedSet() map[int]bool {
	out := make(map[int]bool, len(p.connected))
	for i := range p.connected {
		out[i] = true
	}
	return out
}

// ConnectedSegments groups the connected sockets into maximal contiguous
// edge runs.
func (p *Platform) ConnectedSegments() []socket.Segment {
	return socket.Segments(p.Sockets, p.connected)
}

// registerModule marks a blocking module active on the given socket
// indices. A blocked socket reports Occupied and cannot connect. Only the
// registry's AttachModule may call this: a module change must also schedule
// the recompute that updates the neighbor's counterpart socket.
func (p *Platform) registerModule(indices ...int) {
	if p.blockers == nil {
		p.blockers = make(map[int]int)
	}
	for _, i := range indices {
		p.blockers[i]++
	}
	p.refreshSockets()
}

// unregisterModule releases a blocking module from the given socket indices.
func (p *Platform) unregisterModule(indices ...int) {
	for _, i := range indices {
		if p.blockers[i] > 1 {
			p.blockers[i]--
		} else {
			delete(p.blockers, i)
		}
	}
	p.refreshSockets()
}

// Blocked returns true if a blocking module is active on the socket.
func (p *Platform) Blocked(index int) bool {
	return p.blockers[index] > 0
}

// Bounds returns the smallest rectangle covering the platform's committed
// cells. The second return value is false while the platform holds none.
func (p *Platform) Bounds() (grid.Rect, bool) {
	return grid.BoundsOf(p.Cells)
}

// SocketWorldPos returns the world position of one of the platform's
// sockets under its current transform.
func (p *Platform) SocketWorldPos(index int) (x, z float64) {
	return socket.WorldPos(p.Sockets[index], p.X, p.Z, p.Yaw)
}

// refreshSockets recomputes every socket status from the connected set and
// active blockers.
func (p *Platform) refreshSockets() {
	socket.Refresh(p.Sockets, p.connected, p.Blocked)
}

// resetConnections empties the connected set and refreshes statuses.
func (p *Platform) resetConnections() {
	p.connected = make(map[int]bool)
	p.refreshSockets()
}

// setFootprint swaps the footprint and rebuilds the socket layout,
// preserving statuses for surviving positions.
func (p *Platform) setFootprint(fp footprint.Footprint) {
	p.Footprint = fp
	p.Sockets = socket.Rebuild(p.Sockets, fp)
}
