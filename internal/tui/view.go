package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mivchik/platforge/internal/board"
	"github.com/mivchik/platforge/internal/grid"
	"github.com/mivchik/platforge/internal/socket"
)

var (
	styleEmpty     = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	stylePlatform  = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	stylePreviewOK = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	stylePreviewNo = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	styleLocked    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	styleCursor    = lipgloss.NewStyle().Reverse(true)
	styleSelected  = lipgloss.NewStyle().Foreground(lipgloss.Color("223")).Bold(true)
	stylePanel     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleStatus    = lipgloss.NewStyle().Foreground(lipgloss.Color("251")).Italic(true)
)

// renderBuilder lays out the board next to the blueprint panel with the
// status line underneath.
func renderBuilder(m Model) string {
	boardView := renderBoard(m)
	panel := renderPanel(m)
	joined := lipgloss.JoinHorizontal(lipgloss.Top, boardView, "  ", panel)
	return joined + "\n" + styleStatus.Render(m.status)
}

// renderBoard draws the grid with north up: row z = H-1 first.
func renderBoard(m Model) string {
	g := m.reg.Grid()
	cursor := g.WorldToCell(m.cursorX, m.cursorZ)

	previewOK := true
	previewCells := map[grid.Coord]bool{}
	if pl := m.reg.ActivePlacement(); pl != nil {
		previewOK = pl.Check().OK
		for _, c := range pl.PreviewCells() {
			previewCells[c] = true
		}
	}

	var sb strings.Builder
	for y := g.H() - 1; y >= 0; y-- {
		if y < g.H()-1 {
			sb.WriteRune('\n')
		}
		for x := 0; x < g.W(); x++ {
			c := grid.C(x, y)
			glyph, style := cellGlyph(m, c, previewCells, previewOK)
			if c == cursor {
				style = styleCursor
			}
			sb.WriteString(style.Render(glyph))
		}
	}
	return sb.String()
}

func cellGlyph(m Model, c grid.Coord, preview map[grid.Coord]bool, previewOK bool) (string, lipgloss.Style) {
	g := m.reg.Grid()
	switch {
	case preview[c] && previewOK:
		return "░░", stylePreviewOK
	case preview[c]:
		return "░░", stylePreviewNo
	case g.Has(c, grid.FlagLocked):
		return "##", styleLocked
	case g.Has(c, grid.FlagOccupied):
		p := m.reg.PlatformAt(c)
		return kindGlyph(p), stylePlatform
	default:
		return "· ", styleEmpty
	}
}

// kindGlyph renders a platform cell as the first letter of its kind, doubled
// to keep cells square-ish in a terminal.
func kindGlyph(p *board.Platform) string {
	if p == nil || p.Kind == "" {
		return "██"
	}
	ch := strings.ToUpper(p.Kind[:1])
	return ch + ch
}

// renderPanel shows the blueprint list and the platform under the cursor.
func renderPanel(m Model) string {
	var sb strings.Builder
	sb.WriteString(stylePanel.Render("blueprints") + "\n")
	for i, b := range m.catalog.Blueprints {
		line := fmt.Sprintf("  %s %dx%d", b.Name, b.Width, b.Length)
		if i == m.selected {
			line = styleSelected.Render("> " + line[2:])
		} else {
			line = stylePanel.Render(line)
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n")
	c := m.reg.Grid().WorldToCell(m.cursorX, m.cursorZ)
	if p := m.reg.PlatformAt(c); p != nil {
		sb.WriteString(stylePanel.Render(platformSummary(p)))
	} else if pl := m.reg.ActivePlacement(); pl != nil {
		sb.WriteString(stylePanel.Render(placementSummary(pl)))
	}
	return sb.String()
}

func platformSummary(p *board.Platform) string {
	connected := len(p.ConnectedSet())
	segs := p.ConnectedSegments()
	parts := []string{
		fmt.Sprintf("%s  %s", p.Kind, p.State()),
		fmt.Sprintf("sockets: %d/%d connected", connected, len(p.Sockets)),
	}
	for _, s := range segs {
		parts = append(parts, fmt.Sprintf("  %v run of %d", s.Dir, s.Width()))
	}
	return strings.Join(parts, "\n")
}

func placementSummary(pl *board.Placement) string {
	check := pl.Check()
	lines := []string{
		"placing " + pl.Platform().Kind,
		fmt.Sprintf("would connect: %d sockets", countConnected(pl.Platform().Sockets)),
	}
	if !check.OK {
		lines = append(lines, placementProblem(check))
	}
	return strings.Join(lines, "\n")
}

func countConnected(sockets []socket.Socket) int {
	n := 0
	for _, s := range sockets {
		if s.Status == socket.Connected {
			n++
		}
	}
	return n
}
