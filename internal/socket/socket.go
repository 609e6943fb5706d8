// Package socket generates the perimeter connection points of a platform
// footprint and maintains their derived status. Layout generation and status
// refresh are pure; nothing in this package touches the grid.
package socket

import (
	"math"

	"github.com/mivchik/platforge/internal/footprint"
	"github.com/mivchik/platforge/internal/grid"
)

// Status is the derived state of one socket. It is recomputed from
// authoritative inputs (connected set, blocking modules, explicit locks) and
// never updated piecemeal.
type Status uint8

const (
	// Linkable means the socket is free to connect.
	Linkable Status = iota
	// Occupied means a blocking module is registered on the socket; it
	// cannot connect even when physically adjacent.
	Occupied
	// Connected means the socket coincides with a neighbor's socket and
	// both platforms share an edge.
	Connected
	// Locked is an explicit external hold; only the authority that set it
	// clears it.
	Locked
	// Disabled turns a socket off permanently until explicitly cleared.
	Disabled
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Linkable:
		return "Linkable"
	case Occupied:
		return "Occupied"
	case Connected:
		return "Connected"
	case Locked:
		return "Locked"
	case Disabled:
		return "Disabled"
	default:
		return "Unknown"
	}
}

// Socket is one addressable point on a platform's perimeter, one per
// edge-unit. Index is stable for a given footprint size; LocalX/LocalZ are
// platform-local coordinates before yaw; Dir points outward.
type Socket struct {
	Index  int
	LocalX float64
	LocalZ float64
	Dir    grid.Dir
	Status Status
}

// Build generates the perimeter sockets for a footprint in fixed traversal
// order: the north edge west-to-east (W sockets), then south (W), then east
// (L), then west (L), for 2*(W+L) total. Sockets sit on the extreme edge,
// inset 0.5 from the corner along the edge at 1-unit intervals, so facing
// sockets of edge-adjacent platforms coincide exactly.
func Build(fp footprint.Footprint) []Socket {
	w := float64(fp.W)
	l := float64(fp.L)
	sockets := make([]Socket, 0, 2*(fp.W+fp.L))

	add := func(x, z float64, d grid.Dir) {
		sockets = append(sockets, Socket{
			Index:  len(sockets),
			LocalX: x,
			LocalZ: z,
			Dir:    d,
			Status: Linkable,
		})
	}

	for k := 0; k < fp.W; k++ {
		add(-w/2+0.5+float64(k), l/2, grid.North)
	}
	for k := 0; k < fp.W; k++ {
		add(-w/2+0.5+float64(k), -l/2, grid.South)
	}
	for k := 0; k < fp.L; k++ {
		add(w/2, -l/2+0.5+float64(k), grid.East)
	}
	for k := 0; k < fp.L; k++ {
		add(-w/2, -l/2+0.5+float64(k), grid.West)
	}
	return sockets
}

// Rebuild regenerates the layout for a possibly-changed footprint,
// preserving the status of sockets whose edge address survives: same edge,
// same offset from the edge's starting corner. Center-relative coordinates
// shift whenever a dimension changes, so survival cannot be matched on
// LocalX/LocalZ directly. Addresses no longer present default to Linkable.
func Rebuild(old []Socket, fp footprint.Footprint) []Socket {
	next := Build(fp)
	if len(old) == 0 {
		return next
	}

	ow, ol := dimsOf(old)
	prev := make(map[edgeAddr]Status, len(old))
	for _, s := range old {
		prev[addrOf(s, ow, ol)] = s.Status
	}

	w, l := float64(fp.W), float64(fp.L)
	for i := range next {
		if st, ok := prev[addrOf(next[i], w, l)]; ok {
			next[i].Status = st
		}
	}
	return next
}

// edgeAddr identifies a socket independently of footprint size: the edge it
// sits on and its offset from that edge's starting corner, in half-units.
type edgeAddr struct {
	dir    grid.Dir
	offset int
}

func addrOf(s Socket, w, l float64) edgeAddr {
	var off float64
	switch s.Dir {
	case grid.North, grid.South:
		off = s.LocalX + w/2
	default:
		off = s.LocalZ + l/2
	}
	return edgeAddr{dir: s.Dir, offset: int(math.Round(off * 2))}
}

// dimsOf recovers the footprint a layout was built for: one socket per
// edge-unit means the north edge has W sockets and the east edge has L.
func dimsOf(sockets []Socket) (w, l float64) {
	for _, s := range sockets {
		switch s.Dir {
		case grid.North:
			w++
		case grid.East:
			l++
		}
	}
	return w, l
}

// Refresh recomputes every socket's status from authoritative inputs in a
// single full pass. Locked and Disabled are sticky; otherwise a blocked
// socket reports Occupied even when a stale connected set still names it (a
// module can activate without a connection-set change, and a blocked socket
// must never read Connected), else Connected iff in the connected set, else
// Linkable. A full pass is required because module activity can change
// without a connection-set change.
func Refresh(sockets []Socket, connected map[int]bool, blocked func(index int) bool) {
	for i := range sockets {
		s := &sockets[i]
		if s.Status == Locked || s.Status == Disabled {
			continue
		}
		switch {
		case blocked != nil && blocked(s.Index):
			s.Status = Occupied
		case connected[s.Index]:
			s.Status = Connected
		default:
			s.Status = Linkable
		}
	}
}

// WorldPos returns the world position of a socket on a platform at the
// given position and yaw.
func WorldPos(s Socket, platformX, platformZ, yawDeg float64) (x, z float64) {
	lx, lz := grid.RotateLocal(s.LocalX, s.LocalZ, footprint.Steps(yawDeg))
	return platformX + lx, platformZ + lz
}

// WorldDir returns the outward direction of a socket after the platform's
// yaw is applied.
func WorldDir(s Socket, yawDeg float64) grid.Dir {
	return s.Dir.Rotated(footprint.Steps(yawDeg))
}

// Segment is a maximal run of consecutive connected socket indices on one
// edge. Downstream consumers use segments to treat a contiguous span as a
// single wide opening instead of N narrow ones.
type Segment struct {
	Dir   grid.Dir // edge the run lies on, in local space
	Start int      // first socket index of the run
	End   int      // last socket index of the run, inclusive
}

// Width returns the segment length in sockets.
func (s Segment) Width() int {
	return s.End - s.Start + 1
}

// Segments groups the connected socket indices by edge and splits each
// edge's indices into maximal runs of consecutive integers. Pure grouping
// over already-resolved connection state.
func Segments(sockets []Socket, connected map[int]bool) []Segment {
	var segs []Segment
	var cur *Segment
	for i := range sockets {
		s := &sockets[i]
		if !connected[s.Index] {
			cur = nil
			continue
		}
		if cur != nil && cur.Dir == s.Dir && cur.End == s.Index-1 {
			cur.End = s.Index
			continue
		}
		segs = append(segs, Segment{Dir: s.Dir, Start: s.Index, End: s.Index})
		cur = &segs[len(segs)-1]
	}
	return segs
}
