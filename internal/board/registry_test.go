package board

import (
	"testing"

	"github.com/mivchik/platforge/internal/footprint"
	"github.com/mivchik/platforge/internal/grid"
	"github.com/mivchik/platforge/internal/socket"
)

func newTestRegistry(t *testing.T, w, h int) *Registry {
	t.Helper()
	g, err := grid.New(w, h, 1.0)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	r, err := NewRegistry(g, Config{})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

// place spawns a platform, positions it, and registers it.
func place(t *testing.T, r *Registry, kind string, fp footprint.Footprint, x, z, yaw float64) *Platform {
	t.Helper()
	p := r.Spawn(kind, fp, Rules{})
	p.X, p.Z = r.res.SnapForPlacement(x, z, yaw, fp)
	p.Yaw = yaw
	if !r.Register(p) {
		t.Fatalf("Register %s at (%v,%v) failed", kind, x, z)
	}
	return p
}

// checkInvariants asserts the occupancy correspondence: committed cells
// equal the resolver's set, carry the Occupied bit, and reverse-index back
// to the platform.
func checkInvariants(t *testing.T, r *Registry, p *Platform) {
	t.Helper()
	want := r.res.ComputeCells(p.X, p.Z, p.Yaw, p.Footprint)
	if !sameCells(p.Cells, want) {
		t.Errorf("%s: cells %v drifted from resolver set %v", p.Kind, p.Cells, want)
	}
	for _, c := range p.Cells {
		if !r.grid.Has(c, grid.FlagOccupied) {
			t.Errorf("%s: cell %v not Occupied", p.Kind, c)
		}
		if got := r.PlatformAt(c); got != p {
			t.Errorf("%s: cell %v reverse-indexed to %v", p.Kind, c, got)
		}
	}
}

func socketsWithStatus(p *Platform, s socket.Status) []int {
	var out []int
	for _, sock := range p.Sockets {
		if sock.Status == s {
			out = append(out, sock.Index)
		}
	}
	return out
}

func TestNewRegistryRequiresGrid(t *testing.T) {
	if _, err := NewRegistry(nil, Config{}); err == nil {
		t.Fatal("NewRegistry(nil) should fail")
	}
}

// Scenario 1: a 4x4 platform dropped near cell-center (2,2) snaps to the
// cell edge and occupies x,y in [0,3].
func TestPlaceEvenPlatformSnapsAndOccupies(t *testing.T) {
	r := newTestRegistry(t, 10, 10)

	r.StartPlacement("plaza", footprint.Footprint{W: 4, L: 4}, Rules{})
	r.UpdateDragPosition(2.3, 1.8, 0)
	if !r.ConfirmPlacement() {
		t.Fatal("ConfirmPlacement failed")
	}

	a := r.Platforms()[0]
	if a.State() != Registered {
		t.Fatalf("state = %v", a.State())
	}
	if len(a.Cells) != 16 {
		t.Fatalf("got %d cells, want 16", len(a.Cells))
	}
	want := grid.NewRect(grid.C(0, 0), grid.C(3, 3))
	for _, c := range a.Cells {
		if !want.Contains(c) {
			t.Errorf("cell %v outside %v", c, want)
		}
	}
	checkInvariants(t, r, a)
}

// Scenario 2: platform B immediately east of A shares the edge at x=4; the
// four facing sockets connect on both sides, everything else stays Linkable.
func TestAdjacentPlatformsConnect(t *testing.T) {
	r := newTestRegistry(t, 12, 12)
	fp := footprint.Footprint{W: 4, L: 4}

	a := place(t, r, "A", fp, 2, 2, 0)
	b := place(t, r, "B", fp, 6, 2, 0)

	m := Resolve(a, b, DefaultSocketTolerance)
	if !m.CellAdjacent {
		t.Fatal("A and B should be cell-adjacent")
	}
	if len(m.Pairs) != 4 {
		t.Fatalf("got %d matched pairs, want 4", len(m.Pairs))
	}

	aConn := socketsWithStatus(a, socket.Connected)
	bConn := socketsWithStatus(b, socket.Connected)
	if len(aConn) != 4 || len(bConn) != 4 {
		t.Fatalf("connected sockets: A=%v B=%v", aConn, bConn)
	}
	for _, i := range aConn {
		if a.Sockets[i].Dir != grid.East {
			t.Errorf("A socket %d connected on %v edge", i, a.Sockets[i].Dir)
		}
	}
	for _, j := range bConn {
		if b.Sockets[j].Dir != grid.West {
			t.Errorf("B socket %d connected on %v edge", j, b.Sockets[j].Dir)
		}
	}
	if n := len(socketsWithStatus(a, socket.Linkable)); n != len(a.Sockets)-4 {
		t.Errorf("A has %d linkable sockets", n)
	}
}

// Connection symmetry: each matched pair is connected on both platforms,
// and resolving in either argument order transposes exactly.
func TestResolveIsSymmetric(t *testing.T) {
	r := newTestRegistry(t, 12, 12)
	fp := footprint.Footprint{W: 4, L: 2}

	a := place(t, r, "A", fp, 4, 5, 0)
	b := place(t, r, "B", fp, 4, 7, 0)

	ab := Resolve(a, b, DefaultSocketTolerance)
	ba := Resolve(b, a, DefaultSocketTolerance)

	if len(ab.Pairs) == 0 {
		t.Fatal("expected matched pairs")
	}
	want := ab.Transposed()
	if len(ba.Pairs) != len(want.Pairs) || ba.CellAdjacent != want.CellAdjacent {
		t.Fatalf("Resolve(b,a) = %+v, want transpose %+v", ba, want)
	}
	wantSet := make(map[Pair]bool)
	for _, p := range want.Pairs {
		wantSet[p] = true
	}
	for _, p := range ba.Pairs {
		if !wantSet[p] {
			t.Errorf("pair %+v missing from transpose", p)
		}
	}

	for _, pair := range ab.Pairs {
		if !a.Connected(pair.A) || !b.Connected(pair.B) {
			t.Errorf("pair %+v not mutually connected", pair)
		}
	}
}

// Scenario 3: picking up A reverts its cells to Empty and, after the batched
// recompute, B's west sockets return to Linkable.
func TestPickupDisconnectsNeighborsAfterFlush(t *testing.T) {
	r := newTestRegistry(t, 12, 12)
	fp := footprint.Footprint{W: 4, L: 4}

	a := place(t, r, "A", fp, 2, 2, 0)
	b := place(t, r, "B", fp, 6, 2, 0)

	r.PickUp(a)

	for _, c := range grid.NewRect(grid.C(0, 0), grid.C(3, 3)).Cells() {
		if f := r.grid.Flags(c); f != grid.FlagEmpty {
			t.Errorf("cell %v = %v after pickup, want Empty", c, f)
		}
		if r.PlatformAt(c) != nil {
			t.Errorf("cell %v still reverse-indexed", c)
		}
	}

	// Heavy recompute is deferred: B still shows stale connections until
	// the batched pass runs.
	if len(socketsWithStatus(b, socket.Connected)) != 4 {
		t.Fatal("recompute ran eagerly instead of batched")
	}

	if !r.Flush() {
		t.Fatal("Flush should consume the dirty flag")
	}
	if n := len(socketsWithStatus(b, socket.Connected)); n != 0 {
		t.Errorf("B keeps %d connected sockets after flush", n)
	}
	if r.Flush() {
		t.Error("second Flush should be a no-op")
	}
}

// The deferred pass also computes would-connect status for the floating
// platform from the cells it would occupy, without writing Occupied.
func TestPickupPreviewConnections(t *testing.T) {
	r := newTestRegistry(t, 16, 12)
	fp := footprint.Footprint{W: 4, L: 4}

	a := place(t, r, "A", fp, 2, 2, 0)
	place(t, r, "B", fp, 6, 2, 0)

	if r.RequestPickup(a) == nil {
		t.Fatal("RequestPickup failed")
	}
	// Drag A to the far side of B: east edge of B, x in [8,11].
	r.UpdateDragPosition(10, 2, 0)
	r.Flush()

	if n := len(socketsWithStatus(a, socket.Connected)); n != 4 {
		t.Fatalf("floating A shows %d would-connect sockets, want 4", n)
	}
	for _, c := range r.ActivePlacement().PreviewCells() {
		if r.grid.Has(c, grid.FlagOccupied) {
			t.Errorf("preview wrote Occupied at %v", c)
		}
		if !r.grid.Has(c, grid.FlagOccupyPreview) {
			t.Errorf("preview cell %v missing OccupyPreview", c)
		}
	}
}

// A brand-new placement session gets the same would-connect pass as a
// picked-up one.
func TestNewPlacementPreviewConnections(t *testing.T) {
	r := newTestRegistry(t, 16, 12)
	fp := footprint.Footprint{W: 4, L: 4}

	place(t, r, "A", fp, 2, 2, 0)

	pl := r.StartPlacement("B", fp, Rules{})
	if pl == nil {
		t.Fatal("StartPlacement failed")
	}
	r.UpdateDragPosition(6, 2, 0)
	r.Flush()

	b := pl.Platform()
	conn := socketsWithStatus(b, socket.Connected)
	if len(conn) != 4 {
		t.Fatalf("new placement shows %d would-connect sockets, want 4", len(conn))
	}
	for _, i := range conn {
		if b.Sockets[i].Dir != grid.West {
			t.Errorf("socket %d connected on %v edge", i, b.Sockets[i].Dir)
		}
	}
	for _, c := range pl.PreviewCells() {
		if r.grid.Has(c, grid.FlagOccupied) {
			t.Errorf("preview wrote Occupied at %v", c)
		}
	}
}

// Scenario 4: a placement overlapping an occupied cell is rejected and
// nothing changes.
func TestOverlapRejected(t *testing.T) {
	r := newTestRegistry(t, 12, 12)
	fp := footprint.Footprint{W: 4, L: 4}

	b := place(t, r, "B", fp, 6, 2, 0)
	version := r.grid.Version()

	c := r.Spawn("C", fp, Rules{})
	check := r.CanPlace(c, 6, 2, 0)
	if check.OK || check.Free {
		t.Errorf("overlap check = %+v, want rejection", check)
	}
	c.X, c.Z = 6, 2
	if r.Register(c) {
		t.Fatal("Register should reject overlap")
	}
	if r.grid.Version() != version {
		t.Error("rejected placement mutated the grid")
	}
	checkInvariants(t, r, b)
}

// Scenario 5: with edge adjacency required, corner-only contact is reported
// and rejected.
func TestCornerOnlyAdjacencyRejected(t *testing.T) {
	r := newTestRegistry(t, 20, 20)
	fp := footprint.Footprint{W: 4, L: 4}
	rules := Rules{RequireEdgeAdjacency: true, DisallowCornerAdjacency: true}

	// First platform is always legal.
	first := r.Spawn("B", fp, rules)
	first.X, first.Z = 6, 6 // cells [4,7]x[4,7]
	if !r.Register(first) {
		t.Fatal("first platform must always be legal")
	}

	d := r.Spawn("D", fp, rules)

	// Touching only at B's north-east corner: cells [8,11]x[8,11].
	check := r.CanPlace(d, 10, 10, 0)
	if check.HasEdgeAdjacency {
		t.Error("corner placement reports edge adjacency")
	}
	if !check.HasCornerOnlyAdjacency {
		t.Error("corner placement should report corner-only adjacency")
	}
	if check.OK {
		t.Error("corner placement accepted")
	}

	// Sharing B's east edge: cells [8,11]x[4,7].
	check = r.CanPlace(d, 10, 6, 0)
	if !check.HasEdgeAdjacency || check.HasCornerOnlyAdjacency || !check.OK {
		t.Errorf("edge placement check = %+v", check)
	}

	// Detached entirely: rejected for missing adjacency.
	check = r.CanPlace(d, 16, 16, 0)
	if check.OK {
		t.Error("detached placement accepted despite adjacency rule")
	}
}

// Registering twice at the same position must change nothing.
func TestRegisterIdempotent(t *testing.T) {
	r := newTestRegistry(t, 12, 12)
	fp := footprint.Footprint{W: 4, L: 4}

	a := place(t, r, "A", fp, 2, 2, 0)
	b := place(t, r, "B", fp, 6, 2, 0)

	version := r.grid.Version()
	cellsBefore := append([]grid.Coord(nil), a.Cells...)
	connBefore := a.ConnectedSet()

	if !r.Register(a) {
		t.Fatal("re-register failed")
	}

	if r.grid.Version() != version {
		t.Errorf("re-register mutated grid: version %d -> %d", version, r.grid.Version())
	}
	if !sameCells(a.Cells, cellsBefore) {
		t.Error("re-register changed cells")
	}
	after := a.ConnectedSet()
	if len(after) != len(connBefore) {
		t.Errorf("re-register changed connections: %v -> %v", connBefore, after)
	}
	checkInvariants(t, r, a)
	checkInvariants(t, r, b)
}

// Pickup followed by an immediate cancel restores cells, flags, statuses
// and connections exactly.
func TestPickupCancelRoundTrip(t *testing.T) {
	r := newTestRegistry(t, 12, 12)
	fp := footprint.Footprint{W: 4, L: 4}

	a := place(t, r, "A", fp, 2, 2, 0)
	b := place(t, r, "B", fp, 6, 2, 0)

	cellsBefore := append([]grid.Coord(nil), a.Cells...)
	statusBefore := make([]socket.Status, len(a.Sockets))
	for i, s := range a.Sockets {
		statusBefore[i] = s.Status
	}

	if r.RequestPickup(a) == nil {
		t.Fatal("RequestPickup failed")
	}
	r.UpdateDragPosition(8, 8, 90)
	r.Flush()
	r.CancelPlacement()
	r.Flush()

	if a.State() != Registered {
		t.Fatalf("state after cancel = %v", a.State())
	}
	if !sameCells(a.Cells, cellsBefore) {
		t.Errorf("cells after cancel = %v, want %v", a.Cells, cellsBefore)
	}
	for i, s := range a.Sockets {
		if s.Status != statusBefore[i] {
			t.Errorf("socket %d status %v, want %v", i, s.Status, statusBefore[i])
		}
	}
	for _, c := range a.Cells {
		if r.grid.Has(c, grid.FlagOccupyPreview) {
			t.Errorf("dangling preview flag at %v", c)
		}
	}
	checkInvariants(t, r, a)
	checkInvariants(t, r, b)
}

// When the original cells are no longer takeable at cancel time, the revert
// fails visibly: the session stays open and the platform never ends up
// floating with no cells and no session.
func TestCancelPickupBlockedByLock(t *testing.T) {
	r := newTestRegistry(t, 12, 12)
	fp := footprint.Footprint{W: 4, L: 4}

	a := place(t, r, "A", fp, 2, 2, 0)

	if r.RequestPickup(a) == nil {
		t.Fatal("RequestPickup failed")
	}
	r.UpdateDragPosition(8, 8, 0)

	// An external hold lands on one of A's original cells mid-drag.
	if !r.grid.TrySet(grid.C(1, 1), grid.FlagLocked, 0) {
		t.Fatal("could not lock cell")
	}

	if r.CancelPlacement() {
		t.Fatal("cancel should fail while an original cell is locked")
	}
	if r.ActivePlacement() == nil {
		t.Fatal("failed cancel must keep the session open")
	}
	if a.State() != PickedUp {
		t.Errorf("state = %v, want PickedUp", a.State())
	}
	if a.Cells != nil {
		t.Errorf("failed cancel committed cells: %v", a.Cells)
	}

	// Releasing the hold lets the revert complete.
	r.grid.Clear(grid.C(1, 1), grid.FlagLocked)
	if !r.CancelPlacement() {
		t.Fatal("cancel should succeed once the lock is cleared")
	}
	if a.State() != Registered {
		t.Errorf("state = %v, want Registered", a.State())
	}
	checkInvariants(t, r, a)
}

// Cancelling a brand-new placement destroys the platform and leaves no
// trace in the grid.
func TestCancelNewPlacement(t *testing.T) {
	r := newTestRegistry(t, 10, 10)

	r.StartPlacement("hut", footprint.Footprint{W: 2, L: 2}, Rules{})
	r.UpdateDragPosition(5, 5, 0)
	r.CancelPlacement()

	if len(r.Platforms()) != 0 {
		t.Fatalf("platform survived cancel: %v", r.Platforms())
	}
	for _, c := range r.grid.Bounds().Cells() {
		if r.grid.Flags(c) != grid.FlagEmpty {
			t.Errorf("cell %v = %v after cancel", c, r.grid.Flags(c))
		}
	}
}

func TestUnregisterTearsDownConnections(t *testing.T) {
	r := newTestRegistry(t, 16, 12)
	fp := footprint.Footprint{W: 4, L: 4}

	a := place(t, r, "A", fp, 2, 2, 0)
	b := place(t, r, "B", fp, 6, 2, 0)
	c := place(t, r, "C", fp, 10, 2, 0)

	// B bridges A and C: both its east and west edges are connected.
	if n := len(socketsWithStatus(b, socket.Connected)); n != 8 {
		t.Fatalf("B has %d connected sockets, want 8", n)
	}

	r.Unregister(b)

	if n := len(socketsWithStatus(b, socket.Connected)); n != 0 {
		t.Errorf("unregistered B keeps %d connections", n)
	}
	if n := len(socketsWithStatus(a, socket.Connected)); n != 0 {
		t.Errorf("A keeps %d connections to removed B", n)
	}
	if n := len(socketsWithStatus(c, socket.Connected)); n != 0 {
		t.Errorf("C keeps %d connections to removed B", n)
	}
	if b.State() != Unregistered {
		t.Errorf("B state = %v", b.State())
	}
}

// A blocking module on a socket forces Occupied on it and Linkable on its
// counterpart, on both resolve directions.
func TestBlockingModulePreventsConnection(t *testing.T) {
	r := newTestRegistry(t, 12, 12)
	fp := footprint.Footprint{W: 4, L: 4}

	a := place(t, r, "A", fp, 2, 2, 0)
	b := place(t, r, "B", fp, 6, 2, 0)

	m := Resolve(a, b, DefaultSocketTolerance)
	if len(m.Pairs) != 4 {
		t.Fatalf("want 4 pairs, got %d", len(m.Pairs))
	}
	blockedPair := m.Pairs[0]

	r.AttachModule(a, blockedPair.A)
	if !r.Flush() {
		t.Fatal("AttachModule should schedule a recompute")
	}

	if got := a.Sockets[blockedPair.A].Status; got != socket.Occupied {
		t.Errorf("blocked socket status = %v, want Occupied", got)
	}
	if got := b.Sockets[blockedPair.B].Status; got != socket.Linkable {
		t.Errorf("counterpart status = %v, want Linkable", got)
	}
	if n := len(socketsWithStatus(a, socket.Connected)); n != 3 {
		t.Errorf("A keeps %d connections, want 3", n)
	}

	r.DetachModule(a, blockedPair.A)
	r.Flush()
	if n := len(socketsWithStatus(a, socket.Connected)); n != 4 {
		t.Errorf("A has %d connections after detach, want 4", n)
	}
}

// Cell-adjacent platforms with misaligned sockets report adjacency without
// connection.
func TestAdjacentButSocketMismatch(t *testing.T) {
	r := newTestRegistry(t, 12, 12)

	a := place(t, r, "A", footprint.Footprint{W: 2, L: 2}, 2, 2, 0)
	b := r.Spawn("B", footprint.Footprint{W: 2, L: 2}, Rules{})
	b.X, b.Z = 4, 2
	if !r.Register(b) {
		t.Fatal("Register B failed")
	}

	// Force a half-cell offset on B's sockets to simulate mismatched
	// scale: shift the platform origin used for socket positions.
	b.Z += 0.5

	m := Resolve(a, b, 0.1)
	if !m.CellAdjacent {
		t.Error("misaligned platforms should still be cell-adjacent")
	}
	if m.Connected() {
		t.Errorf("misaligned sockets matched: %+v", m.Pairs)
	}
}

func TestRemovePickedUpPlatform(t *testing.T) {
	r := newTestRegistry(t, 12, 12)
	fp := footprint.Footprint{W: 4, L: 4}

	a := place(t, r, "A", fp, 2, 2, 0)
	b := place(t, r, "B", fp, 6, 2, 0)

	var removed []*Platform
	r.OnPlatformRemoved(func(p *Platform) { removed = append(removed, p) })

	r.RequestPickup(a)
	r.Remove(a)
	r.Flush()

	if len(removed) != 1 || removed[0] != a {
		t.Errorf("removed events = %v", removed)
	}
	if len(r.Platforms()) != 1 {
		t.Fatalf("platform count = %d", len(r.Platforms()))
	}
	if n := len(socketsWithStatus(b, socket.Connected)); n != 0 {
		t.Errorf("B keeps %d connections after removal", n)
	}
}

func TestEventsFireWithConsistentState(t *testing.T) {
	r := newTestRegistry(t, 12, 12)
	fp := footprint.Footprint{W: 4, L: 4}

	var placed, picked int
	r.OnPlatformPlaced(func(p *Platform) {
		placed++
		// State must be fully consistent at the moment of firing.
		checkInvariants(t, r, p)
	})
	r.OnPlatformPickedUp(func(p *Platform) {
		picked++
		if p.Cells != nil {
			t.Error("picked-up platform still holds cells during event")
		}
	})

	a := place(t, r, "A", fp, 2, 2, 0)
	r.PickUp(a)

	if placed != 1 || picked != 1 {
		t.Errorf("events placed=%d picked=%d", placed, picked)
	}
}

// Partial footprints at the map edge are rejected by default and permitted
// with AllowPartial.
func TestBoundaryClippingConfigurable(t *testing.T) {
	g, _ := grid.New(10, 10, 1.0)
	strict, _ := NewRegistry(g, Config{})

	p := strict.Spawn("edge", footprint.Footprint{W: 4, L: 4}, Rules{})
	if strict.CanPlace(p, 0, 0, 0).OK {
		t.Error("clipped footprint accepted by strict registry")
	}

	g2, _ := grid.New(10, 10, 1.0)
	loose, _ := NewRegistry(g2, Config{AllowPartial: true})
	q := loose.Spawn("edge", footprint.Footprint{W: 4, L: 4}, Rules{})
	q.X, q.Z = 0, 0
	if !loose.Register(q) {
		t.Fatal("AllowPartial registry rejected clipped footprint")
	}
	if len(q.Cells) != 4 {
		t.Errorf("clipped platform holds %d cells, want 4", len(q.Cells))
	}
}
