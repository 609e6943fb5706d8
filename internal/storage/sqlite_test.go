package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndLoad(t *testing.T) {
	store := openTestStore(t)

	saved := Layout{
		Name:     "harbor",
		GridW:    32,
		GridH:    24,
		CellSize: 1.0,
		Platforms: []PlatformRecord{
			{Kind: "plaza", X: 2, Z: 2, Yaw: 0},
			{Kind: "walkway", X: 6, Z: 2, Yaw: 90},
			{Kind: "pad", X: 6.5, Z: 6.5, Yaw: 0},
		},
	}

	id, err := store.SaveLayout(saved)
	if err != nil {
		t.Fatalf("SaveLayout() failed: %v", err)
	}
	if id == 0 {
		t.Error("SaveLayout() returned zero ID")
	}

	loaded, err := store.LoadLayout("harbor")
	if err != nil {
		t.Fatalf("LoadLayout() failed: %v", err)
	}

	if loaded.GridW != 32 || loaded.GridH != 24 || loaded.CellSize != 1.0 {
		t.Errorf("grid dims = %dx%d cell %v", loaded.GridW, loaded.GridH, loaded.CellSize)
	}
	if len(loaded.Platforms) != 3 {
		t.Fatalf("Expected 3 platforms, got %d", len(loaded.Platforms))
	}
	// Order must survive the round trip: replay depends on it.
	for i, p := range loaded.Platforms {
		if p != saved.Platforms[i] {
			t.Errorf("platform %d = %+v, want %+v", i, p, saved.Platforms[i])
		}
	}
}

func TestStoreSaveReplacesByName(t *testing.T) {
	store := openTestStore(t)

	first := Layout{
		Name: "draft", GridW: 16, GridH: 16, CellSize: 1,
		Platforms: []PlatformRecord{{Kind: "plaza", X: 2, Z: 2}},
	}
	id1, err := store.SaveLayout(first)
	if err != nil {
		t.Fatalf("SaveLayout() failed: %v", err)
	}

	second := Layout{
		Name: "draft", GridW: 16, GridH: 16, CellSize: 1,
		Platforms: []PlatformRecord{
			{Kind: "pad", X: 4.5, Z: 4.5},
			{Kind: "strip", X: 8.5, Z: 4.5, Yaw: 90},
		},
	}
	id2, err := store.SaveLayout(second)
	if err != nil {
		t.Fatalf("SaveLayout() replace failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("replace changed ID: %d -> %d", id1, id2)
	}

	loaded, err := store.LoadLayout("draft")
	if err != nil {
		t.Fatalf("LoadLayout() failed: %v", err)
	}
	if len(loaded.Platforms) != 2 {
		t.Errorf("Expected 2 platforms after replace, got %d", len(loaded.Platforms))
	}
	if loaded.Platforms[0].Kind != "pad" {
		t.Errorf("First platform is %q, want pad", loaded.Platforms[0].Kind)
	}
}

func TestStoreListLayouts(t *testing.T) {
	store := openTestStore(t)

	for _, name := range []string{"one", "two", "three"} {
		if _, err := store.SaveLayout(Layout{Name: name, GridW: 8, GridH: 8, CellSize: 1}); err != nil {
			t.Fatalf("SaveLayout(%s) failed: %v", name, err)
		}
	}

	layouts, err := store.ListLayouts()
	if err != nil {
		t.Fatalf("ListLayouts() failed: %v", err)
	}
	if len(layouts) != 3 {
		t.Fatalf("Expected 3 layouts, got %d", len(layouts))
	}
	for _, l := range layouts {
		if l.Platforms != nil {
			t.Errorf("ListLayouts() loaded platforms for %q", l.Name)
		}
	}
}

func TestStoreDeleteLayout(t *testing.T) {
	store := openTestStore(t)

	_, err := store.SaveLayout(Layout{
		Name: "gone", GridW: 8, GridH: 8, CellSize: 1,
		Platforms: []PlatformRecord{{Kind: "plaza", X: 2, Z: 2}},
	})
	if err != nil {
		t.Fatalf("SaveLayout() failed: %v", err)
	}

	if err := store.DeleteLayout("gone"); err != nil {
		t.Fatalf("DeleteLayout() failed: %v", err)
	}
	if _, err := store.LoadLayout("gone"); err == nil {
		t.Error("LoadLayout() found deleted layout")
	}
	if err := store.DeleteLayout("gone"); err == nil {
		t.Error("DeleteLayout() should fail for missing layout")
	}
}

func TestLoadLayoutMissing(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.LoadLayout("nope"); err == nil {
		t.Error("LoadLayout() should fail for unknown name")
	}
}
