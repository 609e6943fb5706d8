package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mivchik/platforge/internal/storage"
)

// BrowserKeyMap defines the key bindings for the layout browser.
type BrowserKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Delete key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k BrowserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Delete, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k BrowserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Delete, k.Quit}}
}

// DefaultBrowserKeyMap returns default key bindings.
func DefaultBrowserKeyMap() BrowserKeyMap {
	return BrowserKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "move down"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete layout"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// BrowserModel is the Bubble Tea model for browsing saved layouts.
type BrowserModel struct {
	store    *storage.Store
	layouts  []storage.Layout
	table    table.Model
	help     help.Model
	keys     BrowserKeyMap
	status   string
	quitting bool
}

// NewBrowserModel loads the saved layouts into a table.
func NewBrowserModel(store *storage.Store) (BrowserModel, error) {
	m := BrowserModel{
		store: store,
		help:  help.New(),
		keys:  DefaultBrowserKeyMap(),
	}
	if err := m.reload(); err != nil {
		return m, err
	}
	return m, nil
}

func (m *BrowserModel) reload() error {
	layouts, err := m.store.ListLayouts()
	if err != nil {
		return fmt.Errorf("tui: cannot list layouts: %w", err)
	}
	m.layouts = layouts

	columns := []table.Column{
		{Title: "Name", Width: 20},
		{Title: "Board", Width: 10},
		{Title: "Updated", Width: 16},
	}
	rows := make([]table.Row, len(layouts))
	for i, l := range layouts {
		rows[i] = table.Row{
			l.Name,
			fmt.Sprintf("%dx%d", l.GridW, l.GridH),
			l.UpdatedAt.Format("2006-01-02 15:04"),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows)+1, 15)),
	)
	styles := table.DefaultStyles()
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("223")).Bold(true)
	t.SetStyles(styles)
	m.table = t
	return nil
}

// Init implements tea.Model.
func (m BrowserModel) Init() tea.Cmd { return nil }

// Update handles browser input.
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Delete):
		i := m.table.Cursor()
		if i < 0 || i >= len(m.layouts) {
			return m, nil
		}
		name := m.layouts[i].Name
		if err := m.store.DeleteLayout(name); err != nil {
			m.status = "delete failed: " + err.Error()
			return m, nil
		}
		if err := m.reload(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("deleted %q", name)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table with help underneath.
func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}
	if len(m.layouts) == 0 {
		return "No layouts saved yet.\n\nRun 'platforge build' to create one.\n"
	}
	out := m.table.View() + "\n"
	if m.status != "" {
		out += styleStatus.Render(m.status) + "\n"
	}
	return out + m.help.View(m.keys)
}

// RunBrowser starts the layout browser.
func RunBrowser(store *storage.Store) error {
	m, err := NewBrowserModel(store)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m).Run()
	return err
}
