package board

import (
	"fmt"

	"github.com/mivchik/platforge/internal/footprint"
	"github.com/mivchik/platforge/internal/grid"
)

// Config tunes registry behavior.
type Config struct {
	// AllowPartial permits committing footprints clipped at the grid
	// boundary. Off by default: a clipped footprint fails CanPlace and
	// Register.
	AllowPartial bool
	// SocketTolerance is the per-axis distance at which sockets coincide.
	// Zero selects DefaultSocketTolerance.
	SocketTolerance float64
}

// Registry owns the active platforms, the cell-to-platform reverse index,
// and the connection state between neighbors. It is an explicit object
// passed to whoever needs it; there is no package-level instance.
//
// All methods run on the single simulation goroutine. Heavy adjacency
// recompute triggered by pickup/drag is deferred behind a dirty flag and
// consumed once per tick by Flush.
type Registry struct {
	grid *grid.Grid
	res  *footprint.Resolver
	cfg  Config

	platforms map[int64]*Platform
	order     []int64 // registration order, the deterministic tie-break
	byCell    map[grid.Coord]int64
	nextID    int64
	dirty     bool

	session *Placement

	onPlaced      []func(*Platform)
	onPickedUp    []func(*Platform)
	onRemoved     []func(*Platform)
	onConnections []func(*Platform)
}

// NewRegistry creates a registry over the given grid. A nil grid is a fatal
// configuration error: the registry refuses to operate rather than run with
// invalid state.
func NewRegistry(g *grid.Grid, cfg Config) (*Registry, error) {
	if g == nil {
		return nil, fmt.Errorf("board: registry requires a grid")
	}
	if cfg.SocketTolerance <= 0 {
		cfg.SocketTolerance = DefaultSocketTolerance
	}
	return &Registry{
		grid:      g,
		res:       &footprint.Resolver{Grid: g},
		cfg:       cfg,
		platforms: make(map[int64]*Platform),
		byCell:    make(map[grid.Coord]int64),
		nextID:    1,
	}, nil
}

// Grid returns the grid the registry operates on.
func (r *Registry) Grid() *grid.Grid { return r.grid }

// Resolver returns the footprint resolver bound to the registry's grid.
func (r *Registry) Resolver() *footprint.Resolver { return r.res }

// OnPlatformPlaced subscribes to successful Register commits.
func (r *Registry) OnPlatformPlaced(fn func(*Platform)) {
	r.onPlaced = append(r.onPlaced, fn)
}

// OnPlatformPickedUp subscribes to pickups.
func (r *Registry) OnPlatformPickedUp(fn func(*Platform)) {
	r.onPickedUp = append(r.onPickedUp, fn)
}

// OnPlatformRemoved subscribes to unregistrations.
func (r *Registry) OnPlatformRemoved(fn func(*Platform)) {
	r.onRemoved = append(r.onRemoved, fn)
}

// OnConnectionsChanged subscribes to connection-set changes of any platform.
func (r *Registry) OnConnectionsChanged(fn func(*Platform)) {
	r.onConnections = append(r.onConnections, fn)
}

// Spawn creates a new platform in the Unregistered state. It occupies no
// cells until registered.
func (r *Registry) Spawn(kind string, fp footprint.Footprint, rules Rules) *Platform {
	p := &Platform{
		ID:        r.nextID,
		Kind:      kind,
		Footprint: fp,
		Rules:     rules,
		connected: make(map[int]bool),
		state:     Unregistered,
	}
	p.setFootprint(fp)
	r.nextID++
	r.platforms[p.ID] = p
	r.order = append(r.order, p.ID)
	return p
}

// Platforms returns all known platforms in registration order.
func (r *Registry) Platforms() []*Platform {
	out := make([]*Platform, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.platforms[id])
	}
	return out
}

// PlatformAt returns the platform whose committed cells cover the given
// cell, or nil.
func (r *Registry) PlatformAt(c grid.Coord) *Platform {
	id, ok := r.byCell[c]
	if !ok {
		return nil
	}
	return r.platforms[id]
}

// IsCellOccupied returns true if the cell carries the Occupied bit.
func (r *Registry) IsCellOccupied(c grid.Coord) bool {
	return r.grid.Has(c, grid.FlagOccupied)
}

// OccupiedBounds returns the rectangle covering a platform's committed
// cells; false while it holds none.
func (r *Registry) OccupiedBounds(p *Platform) (grid.Rect, bool) {
	return p.Bounds()
}

// Register commits the platform's cells at its current transform. If it was
// previously registered elsewhere, the old cells are released first.
// Registering an already-registered platform at unchanged cells is a no-op
// beyond the connection recompute. Returns false, with no state change, when
// the placement is illegal; the registry never partially commits.
func (r *Registry) Register(p *Platform) bool {
	cells := r.res.ComputeCells(p.X, p.Z, p.Yaw, p.Footprint)
	if !r.checkCells(p, cells, p.Footprint.Area()).OK {
		return false
	}

	// Re-registering in place leaves the grid untouched; only the
	// connection recompute runs.
	if p.state == Registered && sameCells(p.Cells, cells) {
		r.recompute(map[int64]bool{p.ID: true})
		r.emit(r.onPlaced, p)
		return true
	}

	// Neighbors of the old location must be recomputed after the move.
	prior := r.adjacentPlatforms(p)

	if p.state == Registered {
		r.releaseCells(p)
	}

	p.Cells = cells
	for _, c := range cells {
		r.grid.TrySet(c, grid.FlagOccupied, grid.FlagOccupyPreview|grid.FlagBuildable)
		r.byCell[c] = p.ID
	}
	p.state = Registered

	affected := map[int64]bool{p.ID: true}
	for _, q := range prior {
		affected[q.ID] = true
	}
	for _, q := range r.adjacentPlatforms(p) {
		affected[q.ID] = true
	}
	r.recompute(affected)

	r.emit(r.onPlaced, p)
	return true
}

// Unregister releases the platform's cells and tears down every connection
// that involved it. Neighbors that were adjacent before removal are
// recomputed against the remaining platforms.
func (r *Registry) Unregister(p *Platform) {
	prior := r.adjacentPlatforms(p)

	r.releaseCells(p)
	p.state = Unregistered
	p.resetConnections()
	r.emit(r.onConnections, p)

	affected := make(map[int64]bool, len(prior))
	for _, q := range prior {
		affected[q.ID] = true
	}
	r.recompute(affected)

	r.emit(r.onRemoved, p)
}

// PickUp releases the platform's cells back to Empty so other placements can
// preview into the space, but leaves its socket and connection data alone.
// The expensive adjacency recompute is deferred: the registry only marks
// itself dirty, and Flush performs one batched pass per tick no matter how
// many mutations a drag gesture produced.
func (r *Registry) PickUp(p *Platform) {
	if p.state != Registered {
		return
	}
	r.releaseCells(p)
	p.state = PickedUp
	r.dirty = true
	r.emit(r.onPickedUp, p)
}

// MarkDirty requests a batched recompute on the next Flush. Drag updates
// call this instead of resolving eagerly.
func (r *Registry) MarkDirty() {
	r.dirty = true
}

// AttachModule registers a blocking module on the platform's sockets and
// schedules the connection recompute that drops any links through them.
func (r *Registry) AttachModule(p *Platform, indices ...int) {
	p.registerModule(indices...)
	r.dirty = true
}

// DetachModule releases a blocking module and schedules the recompute that
// may re-form links through the freed sockets.
func (r *Registry) DetachModule(p *Platform, indices ...int) {
	p.unregisterModule(indices...)
	r.dirty = true
}

// Flush consumes the dirty flag: it re-resolves connections among all
// registered platforms (a pickup may have broken links that involved the
// lifted platform) and computes preview-only connections for every floating
// platform from the cells it would currently occupy, whether it was picked
// up or freshly spawned into a drag session. Preview resolution never writes
// Occupied. Call once per tick, after all per-frame movement has been
// applied. Returns true if a pass ran.
func (r *Registry) Flush() bool {
	if !r.dirty {
		return false
	}
	r.dirty = false

	affected := make(map[int64]bool, len(r.order))
	for _, id := range r.order {
		if r.platforms[id].state == Registered {
			affected[id] = true
		}
	}
	r.recompute(affected)

	for _, id := range r.order {
		p := r.platforms[id]
		if p.state != PickedUp {
			continue
		}
		r.resolvePreview(p)
		r.emit(r.onConnections, p)
	}

	// A freshly spawned session platform is Unregistered until confirmed,
	// so the loop above misses it.
	if pl := r.session; pl != nil && pl.platform.state == Unregistered {
		r.resolvePreview(pl.platform)
		r.emit(r.onConnections, pl.platform)
	}
	return true
}

// releaseCells returns the platform's committed cells to Empty and drops the
// reverse-index entries.
func (r *Registry) releaseCells(p *Platform) {
	for _, c := range p.Cells {
		r.grid.Clear(c, grid.FlagOccupied)
		if r.byCell[c] == p.ID {
			delete(r.byCell, c)
		}
	}
	p.Cells = nil
}

// adjacentPlatforms returns the registered platforms currently connected to
// or cell-adjacent to p.
func (r *Registry) adjacentPlatforms(p *Platform) []*Platform {
	seen := make(map[int64]bool)
	var out []*Platform
	for _, c := range p.Cells {
		for _, n := range c.Neighbors4() {
			id, ok := r.byCell[n]
			if !ok || id == p.ID || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, r.platforms[id])
		}
	}
	return out
}

// recompute rebuilds the connected set of every affected registered platform
// from scratch against all other registered platforms, refreshes socket
// statuses, and notifies.
func (r *Registry) recompute(affected map[int64]bool) {
	for _, id := range r.order {
		if !affected[id] {
			continue
		}
		p := r.platforms[id]
		if p.state != Registered {
			continue
		}
		r.resolveInto(p)
		r.emit(r.onConnections, p)
	}
}

// resolveInto recomputes p's connected set against every other registered
// platform. Pairs where either side carries an active blocking module are
// dropped on both sides: a blocked socket cannot become Connected, and its
// counterpart has nothing to connect to.
func (r *Registry) resolveInto(p *Platform) {
	p.connected = make(map[int]bool)
	for _, id := range r.order {
		q := r.platforms[id]
		if q == p || q.state != Registered {
			continue
		}
		m := Resolve(p, q, r.cfg.SocketTolerance)
		for _, pair := range m.Pairs {
			if p.Blocked(pair.A) || q.Blocked(pair.B) {
				continue
			}
			p.connected[pair.A] = true
		}
	}
	p.refreshSockets()
}

// resolvePreview computes would-connect status for a floating platform from
// the cells it would occupy at its current transform. Only p's own state is
// touched; registered neighbors are not lit up by a preview.
func (r *Registry) resolvePreview(p *Platform) {
	cells := r.res.ComputeCells(p.X, p.Z, p.Yaw, p.Footprint)
	p.connected = make(map[int]bool)
	for _, id := range r.order {
		q := r.platforms[id]
		if q == p || q.state != Registered {
			continue
		}
		m := resolveCells(p, cells, q, q.Cells, r.cfg.SocketTolerance)
		for _, pair := range m.Pairs {
			if p.Blocked(pair.A) || q.Blocked(pair.B) {
				continue
			}
			p.connected[pair.A] = true
		}
	}
	p.refreshSockets()
}

// sameCells compares two cell lists produced by the resolver, which emits
// them in a fixed row-major order.
func sameCells(a, b []grid.Coord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (r *Registry) emit(subs []func(*Platform), p *Platform) {
	for _, fn := range subs {
		fn(p)
	}
}
