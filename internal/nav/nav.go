// Package nav derives a walkability layer from the board: which cells can be
// stood on, and where a contiguous run of connected sockets forms a crossing
// between two platforms. Rebuilds are debounced so a drag gesture that fires
// dozens of board events costs one rebuild.
package nav

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/mivchik/platforge/internal/board"
	"github.com/mivchik/platforge/internal/grid"
	"github.com/mivchik/platforge/internal/socket"
)

// DefaultDebounce is how long the updater waits after the last board event
// before rebuilding.
const DefaultDebounce = 250 * time.Millisecond

// Link is one crossing between two platforms: a maximal contiguous run of
// mutually connected sockets. A wide shared edge yields one wide link, not
// one per socket. From is always the platform with the lower ID, so each
// crossing appears exactly once.
type Link struct {
	From  int64
	To    int64
	Dir   grid.Dir // outward from From's platform, in world space
	Width int      // crossing width in sockets
	X, Z  float64  // world midpoint of the run
}

// edge is an ordered pair of adjacent cells the walker may step across.
type edge struct {
	a, b grid.Coord
}

// Updater listens to board mutations and lazily rebuilds the walkability
// layer. It carries a rebuild deadline instead of a timer: callers drive it
// from their tick loop, which keeps rebuilds on the game loop thread and
// makes the debounce trivially testable.
type Updater struct {
	reg      *board.Registry
	debounce time.Duration
	clock    func() time.Time

	rebuildAt time.Time // zero when no rebuild is pending
	rebuilds  int

	walkable map[grid.Coord]int64 // cell -> owning platform ID
	crossing map[edge]bool
	links    []Link
}

// NewUpdater subscribes to the registry's mutation events and returns an
// updater with nothing built yet. A non-positive debounce falls back to
// DefaultDebounce.
func NewUpdater(reg *board.Registry, debounce time.Duration) *Updater {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	u := &Updater{
		reg:      reg,
		debounce: debounce,
		clock:    time.Now,
		walkable: make(map[grid.Coord]int64),
		crossing: make(map[edge]bool),
	}
	reg.OnPlatformPlaced(func(*board.Platform) { u.Invalidate() })
	reg.OnPlatformRemoved(func(*board.Platform) { u.Invalidate() })
	reg.OnConnectionsChanged(func(*board.Platform) { u.Invalidate() })
	return u
}

// Invalidate pushes the rebuild deadline out to debounce from now. Every
// event during a burst moves the deadline; the rebuild runs once, after the
// burst goes quiet.
func (u *Updater) Invalidate() {
	u.rebuildAt = u.clock().Add(u.debounce)
}

// Pending reports whether a rebuild is scheduled.
func (u *Updater) Pending() bool {
	return !u.rebuildAt.IsZero()
}

// Tick checks the deadline and rebuilds if it has passed. Call once per game
// tick. Returns true when a rebuild ran.
func (u *Updater) Tick(now time.Time) bool {
	if u.rebuildAt.IsZero() || now.Before(u.rebuildAt) {
		return false
	}
	u.rebuildAt = time.Time{}
	u.rebuild()
	return true
}

// Links returns the crossings from the last rebuild, in platform order.
func (u *Updater) Links() []Link {
	return u.links
}

// Walkable reports whether the cell was occupied at the last rebuild.
func (u *Updater) Walkable(c grid.Coord) bool {
	_, ok := u.walkable[c]
	return ok
}

// Rebuilds returns how many rebuilds have run, for tests and stats.
func (u *Updater) Rebuilds() int {
	return u.rebuilds
}

func (u *Updater) rebuild() {
	u.walkable = make(map[grid.Coord]int64)
	u.crossing = make(map[edge]bool)
	u.links = u.links[:0]

	platforms := u.reg.Platforms()
	for _, p := range platforms {
		if p.State() != board.Registered {
			continue
		}
		for _, c := range p.Cells {
			u.walkable[c] = p.ID
		}
	}

	for _, p := range platforms {
		if p.State() != board.Registered {
			continue
		}
		u.collectLinks(p)
	}

	u.rebuilds++
	log.Debug("nav rebuilt",
		"walkable", len(u.walkable),
		"links", len(u.links),
		"rebuilds", u.rebuilds)
}

// collectLinks walks p's connected segments, finds the neighbor behind each
// socket, and records crossings. A segment whose sockets face different
// neighbors is split per neighbor.
func (u *Updater) collectLinks(p *board.Platform) {
	for _, seg := range p.ConnectedSegments() {
		var (
			run      []int
			runTo    int64
			runDir   grid.Dir
			flushRun = func() {
				if len(run) == 0 {
					return
				}
				// The platform with the lower ID owns the link, so each
				// crossing is emitted once.
				if p.ID < runTo {
					u.links = append(u.links, u.makeLink(p, run, runTo, runDir))
				}
				run = run[:0]
			}
		)

		for i := seg.Start; i <= seg.End; i++ {
			inside, outside, dir := u.socketCells(p, i)
			qID, ok := u.walkable[outside]
			if !ok || qID == p.ID {
				flushRun()
				continue
			}
			u.crossing[edge{inside, outside}] = true
			u.crossing[edge{outside, inside}] = true
			if len(run) > 0 && qID != runTo {
				flushRun()
			}
			run = append(run, i)
			runTo, runDir = qID, dir
		}
		flushRun()
	}
}

// socketCells returns the cells on either side of a socket and its outward
// world direction. The socket sits exactly on the shared edge, so stepping
// half a cell along the normal lands in each cell.
func (u *Updater) socketCells(p *board.Platform, index int) (inside, outside grid.Coord, dir grid.Dir) {
	s := p.Sockets[index]
	wx, wz := socket.WorldPos(s, p.X, p.Z, p.Yaw)
	dir = socket.WorldDir(s, p.Yaw)
	nx, nz := dir.Vector()
	cs := u.reg.Grid().CellSize()
	inside = u.reg.Grid().WorldToCell(wx-nx*cs/2, wz-nz*cs/2)
	outside = u.reg.Grid().WorldToCell(wx+nx*cs/2, wz+nz*cs/2)
	return inside, outside, dir
}

func (u *Updater) makeLink(p *board.Platform, run []int, to int64, dir grid.Dir) Link {
	fx, fz := p.SocketWorldPos(run[0])
	lx, lz := p.SocketWorldPos(run[len(run)-1])
	return Link{
		From:  p.ID,
		To:    to,
		Dir:   dir,
		Width: len(run),
		X:     (fx + lx) / 2,
		Z:     (fz + lz) / 2,
	}
}

// Reachable reports whether a walker can get from one cell to another,
// stepping orthogonally within a platform and crossing between platforms
// only where a link exists. Uses the state of the last rebuild.
func (u *Updater) Reachable(from, to grid.Coord) bool {
	if _, ok := u.walkable[from]; !ok {
		return false
	}
	if _, ok := u.walkable[to]; !ok {
		return false
	}
	if from == to {
		return true
	}

	visited := map[grid.Coord]bool{from: true}
	queue := []grid.Coord{from}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, n := range c.Neighbors4() {
			if visited[n] {
				continue
			}
			nOwner, ok := u.walkable[n]
			if !ok {
				continue
			}
			if u.walkable[c] != nOwner && !u.crossing[edge{c, n}] {
				continue
			}
			if n == to {
				return true
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}
	return false
}
