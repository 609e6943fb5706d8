package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mivchik/platforge/internal/blueprint"
	"github.com/mivchik/platforge/internal/board"
	"github.com/mivchik/platforge/internal/grid"
	"github.com/mivchik/platforge/internal/nav"
	"github.com/mivchik/platforge/internal/render"
	"github.com/mivchik/platforge/internal/storage"
)

// Config holds the builder session parameters.
type Config struct {
	GridW      int
	GridH      int
	CellSize   float64
	TickRate   int
	LayoutName string
	// AllowPartial permits footprints clipped by the map edge.
	AllowPartial bool
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		GridW:      32,
		GridH:      24,
		CellSize:   1.0,
		TickRate:   30,
		LayoutName: "default",
	}
}

// Model is the Bubble Tea model for the interactive platform builder.
type Model struct {
	reg     *board.Registry
	nav     *nav.Updater
	catalog blueprint.Catalog
	store   *storage.Store
	keys    *KeyMapper
	config  Config

	cursorX  float64
	cursorZ  float64
	yaw      float64
	selected int
	status   string
	viewW    int
	viewH    int
	quitting bool
}

// NewModel creates a builder model with a fresh board.
func NewModel(catalog blueprint.Catalog, store *storage.Store, cfg Config) (Model, error) {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 30
	}
	g, err := grid.New(cfg.GridW, cfg.GridH, cfg.CellSize)
	if err != nil {
		return Model{}, fmt.Errorf("tui: cannot create grid: %w", err)
	}
	reg, err := board.NewRegistry(g, board.Config{AllowPartial: cfg.AllowPartial})
	if err != nil {
		return Model{}, fmt.Errorf("tui: cannot create registry: %w", err)
	}

	m := Model{
		reg:     reg,
		nav:     nav.NewUpdater(reg, nav.DefaultDebounce),
		catalog: catalog,
		store:   store,
		keys:    NewKeyMapper(),
		config:  cfg,
		cursorX: float64(cfg.GridW) / 2 * cfg.CellSize,
		cursorZ: float64(cfg.GridH) / 2 * cfg.CellSize,
		status:  "tab: blueprint  enter: place  u: pick up  ctrl+s: save",
	}
	return m, nil
}

// Registry exposes the board for the serve command's live feed.
func (m Model) Registry() *board.Registry { return m.reg }

// RestoreLayout replays a saved layout onto the board: every platform is
// re-placed through Register, so occupancy and connections are rebuilt rather
// than trusted from disk.
func (m Model) RestoreLayout(l storage.Layout) error {
	for _, rec := range l.Platforms {
		b, ok := m.catalog.Get(rec.Kind)
		if !ok {
			return fmt.Errorf("tui: layout references unknown blueprint %q", rec.Kind)
		}
		p := m.reg.Spawn(rec.Kind, b.Footprint(), b.BoardRules())
		p.X, p.Z, p.Yaw = rec.X, rec.Z, rec.Yaw
		if !m.reg.Register(p) {
			return fmt.Errorf("tui: layout platform %q at (%v,%v) no longer fits", rec.Kind, rec.X, rec.Z)
		}
	}
	return nil
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.viewW = msg.Width
		m.viewH = msg.Height
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

// handleTick runs the deferred board work: one batched connection flush and
// the debounced nav rebuild check.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m.reg.Flush()
	m.nav.Tick(now)
	return m, tickCmd(m.config.TickRate)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}

	switch action {
	case ActionMoveNorth:
		m.moveCursor(0, m.config.CellSize)
	case ActionMoveSouth:
		m.moveCursor(0, -m.config.CellSize)
	case ActionMoveWest:
		m.moveCursor(-m.config.CellSize, 0)
	case ActionMoveEast:
		m.moveCursor(m.config.CellSize, 0)
	case ActionRotate:
		if m.reg.ActivePlacement() != nil {
			m.yaw += 90
			m.reg.UpdateDragPosition(m.cursorX, m.cursorZ, m.yaw)
		}
	case ActionConfirm:
		m = m.confirm()
	case ActionPickup:
		m = m.pickup()
	case ActionCancel:
		if m.reg.ActivePlacement() != nil {
			if m.reg.CancelPlacement() {
				m.status = "placement cancelled"
			} else {
				m.status = "original spot is locked, cannot put back"
			}
		}
	case ActionDelete:
		m = m.deleteUnderCursor()
	case ActionNextBlueprint:
		m.selected = (m.selected + 1) % len(m.catalog.Blueprints)
		m.status = "blueprint: " + m.catalog.Blueprints[m.selected].Name
	case ActionPrevBlueprint:
		m.selected = (m.selected + len(m.catalog.Blueprints) - 1) % len(m.catalog.Blueprints)
		m.status = "blueprint: " + m.catalog.Blueprints[m.selected].Name
	case ActionSave:
		m = m.saveLayout()
	case ActionSnapshot:
		m = m.saveSnapshot()
	}

	return m, nil
}

// moveCursor shifts the cursor, clamped to the board, and drags any active
// placement along with it.
func (m *Model) moveCursor(dx, dz float64) {
	m.cursorX = clamp(m.cursorX+dx, 0, float64(m.config.GridW)*m.config.CellSize)
	m.cursorZ = clamp(m.cursorZ+dz, 0, float64(m.config.GridH)*m.config.CellSize)
	if m.reg.ActivePlacement() != nil {
		m.reg.UpdateDragPosition(m.cursorX, m.cursorZ, m.yaw)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// confirm commits an active placement, or starts one from the selected
// blueprint when none is active.
func (m Model) confirm() Model {
	if pl := m.reg.ActivePlacement(); pl != nil {
		kind := pl.Platform().Kind
		if m.reg.ConfirmPlacement() {
			m.status = kind + " placed"
		} else {
			m.status = placementProblem(pl.Check())
		}
		return m
	}

	if len(m.catalog.Blueprints) == 0 {
		m.status = "catalog is empty"
		return m
	}
	b := m.catalog.Blueprints[m.selected]
	m.yaw = 0
	m.reg.StartPlacement(b.ID, b.Footprint(), b.BoardRules())
	m.reg.UpdateDragPosition(m.cursorX, m.cursorZ, m.yaw)
	m.status = "placing " + b.Name
	return m
}

func placementProblem(check board.PlacementCheck) string {
	switch {
	case !check.Intact:
		return "footprint hangs off the map"
	case !check.Free:
		return "space is occupied"
	case check.HasCornerOnlyAdjacency:
		return "corner contact is not allowed"
	case !check.HasEdgeAdjacency:
		return "must share an edge with a platform"
	default:
		return "cannot place here"
	}
}

func (m Model) pickup() Model {
	if m.reg.ActivePlacement() != nil {
		return m
	}
	c := m.reg.Grid().WorldToCell(m.cursorX, m.cursorZ)
	p := m.reg.PlatformAt(c)
	if p == nil {
		m.status = "nothing to pick up here"
		return m
	}
	if m.reg.RequestPickup(p) == nil {
		m.status = "cannot pick that up"
		return m
	}
	m.yaw = p.Yaw
	m.cursorX, m.cursorZ = p.X, p.Z
	m.status = "moving " + p.Kind
	return m
}

func (m Model) deleteUnderCursor() Model {
	if m.reg.ActivePlacement() != nil {
		return m
	}
	c := m.reg.Grid().WorldToCell(m.cursorX, m.cursorZ)
	p := m.reg.PlatformAt(c)
	if p == nil {
		m.status = "nothing to remove here"
		return m
	}
	kind := p.Kind
	m.reg.Remove(p)
	m.status = kind + " removed"
	return m
}

func (m Model) saveLayout() Model {
	if m.store == nil {
		m.status = "no database configured"
		return m
	}
	layout := storage.Layout{
		Name:     m.config.LayoutName,
		GridW:    m.config.GridW,
		GridH:    m.config.GridH,
		CellSize: m.config.CellSize,
	}
	for _, p := range m.reg.Platforms() {
		if p.State() != board.Registered {
			continue
		}
		layout.Platforms = append(layout.Platforms, storage.PlatformRecord{
			Kind: p.Kind, X: p.X, Z: p.Z, Yaw: p.Yaw,
		})
	}
	if _, err := m.store.SaveLayout(layout); err != nil {
		m.status = "save failed: " + err.Error()
		return m
	}
	m.status = fmt.Sprintf("saved %q (%d platforms)", layout.Name, len(layout.Platforms))
	return m
}

// saveSnapshot writes a PNG of the current board to ~/.platforge/snapshots.
func (m Model) saveSnapshot() Model {
	home, err := os.UserHomeDir()
	if err != nil {
		m.status = "snapshot failed: " + err.Error()
		return m
	}
	dir := filepath.Join(home, ".platforge", "snapshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.status = "snapshot failed: " + err.Error()
		return m
	}
	name := fmt.Sprintf("%s_%s.png", m.config.LayoutName, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	r := render.New(m.reg)
	for _, b := range m.catalog.Blueprints {
		if b.Color != "" {
			r.KindColors[b.ID] = b.Color
		}
	}
	if err := r.SavePNG(path); err != nil {
		m.status = "snapshot failed: " + err.Error()
		return m
	}
	m.status = "snapshot saved to " + path
	return m
}

// View renders the board, blueprint panel and status line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return renderBuilder(m)
}

// Run starts the Bubble Tea program with the given model.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
