package grid

import "testing"

func TestNewRejectsInvalidDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 10}, {10, 0}, {-1, 10}, {10, -5}} {
		if _, err := New(dims[0], dims[1], 1.0); err == nil {
			t.Errorf("New(%d, %d) should fail", dims[0], dims[1])
		}
	}
	if _, err := New(10, 10, 0); err == nil {
		t.Error("New with zero cell size should fail")
	}
}

func TestOutOfBoundsIsNoop(t *testing.T) {
	g, _ := New(4, 4, 1.0)
	before := g.Version()

	if g.TrySet(C(-1, 0), FlagOccupied, 0) {
		t.Error("TrySet out of bounds should return false")
	}
	g.ForceSet(C(4, 0), FlagOccupied, 0)
	g.Clear(C(0, 99), FlagOccupied)

	if g.Version() != before {
		t.Errorf("version changed on out-of-bounds mutation: %d -> %d", before, g.Version())
	}
	if g.Flags(C(-1, 0)) != FlagEmpty {
		t.Error("out-of-bounds read should be Empty")
	}
}

func TestVersionBumpsOnlyOnRealChanges(t *testing.T) {
	g, _ := New(4, 4, 1.0)
	v0 := g.Version()

	if !g.TrySet(C(1, 1), FlagOccupied, 0) {
		t.Fatal("TrySet should succeed")
	}
	v1 := g.Version()
	if v1 != v0+1 {
		t.Errorf("version = %d, want %d", v1, v0+1)
	}

	// Same flags again: no change, no bump.
	g.TrySet(C(1, 1), FlagOccupied, 0)
	if g.Version() != v1 {
		t.Errorf("version bumped on identical write: %d", g.Version())
	}

	// Rejected transition: no bump.
	g.TrySet(C(1, 1), FlagOccupyPreview, 0)
	if g.Version() != v1 {
		t.Errorf("version bumped on rejected write: %d", g.Version())
	}
}

func TestAreaIsFree(t *testing.T) {
	g, _ := New(4, 4, 1.0)
	g.TrySet(C(2, 2), FlagOccupied, 0)
	g.TrySet(C(1, 1), FlagOccupyPreview, 0)

	testCases := []struct {
		name  string
		cells []Coord
		want  bool
	}{
		{"empty cells", []Coord{C(0, 0), C(0, 1)}, true},
		{"preview does not block", []Coord{C(1, 1)}, true},
		{"occupied blocks", []Coord{C(0, 0), C(2, 2)}, false},
		{"out of bounds counts as not free", []Coord{C(0, 0), C(4, 0)}, false},
		{"empty list is not free", nil, false},
	}
	for _, tc := range testCases {
		if got := g.AreaIsFree(tc.cells); got != tc.want {
			t.Errorf("%s: AreaIsFree = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAreaOpsBatchNotifications(t *testing.T) {
	g, _ := New(6, 6, 1.0)

	var cellEvents int
	var areaEvents []Rect
	g.OnCellChanged(func(Coord) { cellEvents++ })
	g.OnAreaChanged(func(r Rect) { areaEvents = append(areaEvents, r) })

	g.AddFlagInArea(NewRect(C(1, 1), C(3, 3)), FlagBuildable, 0)

	if cellEvents != 0 {
		t.Errorf("area op fired %d per-cell events", cellEvents)
	}
	if len(areaEvents) != 1 {
		t.Fatalf("area op fired %d area events, want 1", len(areaEvents))
	}
	if areaEvents[0] != NewRect(C(1, 1), C(3, 3)) {
		t.Errorf("area event rect = %v", areaEvents[0])
	}
	for _, c := range NewRect(C(1, 1), C(3, 3)).Cells() {
		if !g.Has(c, FlagBuildable) {
			t.Errorf("cell %v missing Buildable", c)
		}
	}
}

func TestAreaOpsClipToBounds(t *testing.T) {
	g, _ := New(4, 4, 1.0)

	var got Rect
	g.OnAreaChanged(func(r Rect) { got = r })

	g.SetExactInArea(NewRect(C(-2, -2), C(1, 1)), FlagBuildable)
	if got != NewRect(C(0, 0), C(1, 1)) {
		t.Errorf("clipped rect = %v", got)
	}
	if g.Flags(C(0, 0)) != FlagBuildable {
		t.Errorf("cell (0,0) = %v", g.Flags(C(0, 0)))
	}

	// Entirely outside: nothing happens.
	v := g.Version()
	g.ClearArea(NewRect(C(10, 10), C(12, 12)), FlagBuildable)
	if g.Version() != v {
		t.Error("fully out-of-bounds area op bumped version")
	}
}

func TestAddFlagInAreaRespectsPriority(t *testing.T) {
	g, _ := New(4, 4, 1.0)
	g.TrySet(C(1, 1), FlagOccupied, 0)

	g.AddFlagInArea(NewRect(C(0, 0), C(3, 3)), FlagOccupyPreview, 0)

	if g.Flags(C(1, 1)) != FlagOccupied {
		t.Errorf("occupied cell mutated by area preview: %v", g.Flags(C(1, 1)))
	}
	if !g.Has(C(0, 0), FlagOccupyPreview) {
		t.Error("free cell should gain preview")
	}
}

func TestSetExactInAreaSelfHeals(t *testing.T) {
	g, _ := New(4, 4, 1.0)
	g.SetExactInArea(NewRect(C(0, 0), C(0, 0)), FlagLocked|FlagOccupied|FlagBuildable)
	if g.Flags(C(0, 0)) != FlagLocked {
		t.Errorf("exact write did not collapse: %v", g.Flags(C(0, 0)))
	}
}

func TestWorldConversions(t *testing.T) {
	g, _ := New(10, 10, 2.0)
	g.SetOrigin(-4, -4)

	if c := g.WorldToCell(-4, -4); c != C(0, 0) {
		t.Errorf("WorldToCell(-4,-4) = %v", c)
	}
	if c := g.WorldToCell(-0.1, 3.9); c != C(1, 3) {
		t.Errorf("WorldToCell(-0.1,3.9) = %v", c)
	}
	x, z := g.CellCenter(C(0, 0))
	if x != -3 || z != -3 {
		t.Errorf("CellCenter(0,0) = (%v,%v)", x, z)
	}
}
