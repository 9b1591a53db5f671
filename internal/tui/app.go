package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcgeq/mcg/pkg/manager"
)

// App wraps the Model with bubbletea components
type App struct {
	*Model
	textInput textinput.Model
	help      help.Model
	filtering bool
}

// NewApp creates a new dependency browser
func NewApp(managerName string, nodes []manager.DependencyNode) *App {
	ti := textinput.New()
	ti.Placeholder = "package name"
	ti.Prompt = ""
	ti.CharLimit = 100
	ti.Width = 40

	return &App{
		Model:     NewModel(managerName, nodes),
		textInput: ti,
		help:      help.New(),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetSize(msg.Width, msg.Height)
		a.help.Width = msg.Width
		a.ready = true

	case tea.KeyMsg:
		if a.filtering {
			return a.updateFilter(msg)
		}

		switch {
		case key.Matches(msg, a.keys.Quit):
			a.quitting = true
			return a, tea.Quit

		case key.Matches(msg, a.keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp

		case key.Matches(msg, a.keys.Up):
			a.MoveCursor(-1)
		case key.Matches(msg, a.keys.Down):
			a.MoveCursor(1)
		case key.Matches(msg, a.keys.PageUp):
			a.MoveCursor(-a.VisibleHeight())
		case key.Matches(msg, a.keys.PageDown):
			a.MoveCursor(a.VisibleHeight())
		case key.Matches(msg, a.keys.Top):
			a.CursorTop()
		case key.Matches(msg, a.keys.Bottom):
			a.CursorBottom()

		case key.Matches(msg, a.keys.Toggle):
			a.Toggle()
		case key.Matches(msg, a.keys.Expand):
			a.Expand()
		case key.Matches(msg, a.keys.Collapse):
			a.Collapse()
		case key.Matches(msg, a.keys.ExpandAll):
			a.ExpandAll()
		case key.Matches(msg, a.keys.CollapseAll):
			a.CollapseAll()

		case key.Matches(msg, a.keys.Filter):
			a.filtering = true
			a.textInput.SetValue(a.filter)
			a.textInput.CursorEnd()
			return a, a.textInput.Focus()

		case key.Matches(msg, a.keys.Cancel):
			a.SetFilter("")
		}
	}

	return a, nil
}

// updateFilter edits the filter live; enter keeps it, esc discards it.
func (a *App) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		a.filtering = false
		a.textInput.Blur()
		return a, nil
	case tea.KeyEsc:
		a.filtering = false
		a.textInput.Blur()
		a.textInput.SetValue("")
		a.SetFilter("")
		return a, nil
	case tea.KeyCtrlC:
		a.quitting = true
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.textInput, cmd = a.textInput.Update(msg)
	a.SetFilter(a.textInput.Value())
	return a, cmd
}

// View implements tea.Model
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")
	b.WriteString(a.renderFilterLine())
	b.WriteString("\n")
	b.WriteString(a.renderRows())
	b.WriteString(a.renderFooter())

	return b.String()
}

// renderHeader renders the title bar with dependency counts
func (a *App) renderHeader() string {
	total := 0
	for _, n := range a.nodes {
		total += n.Count()
	}

	title := a.styles.Header.Render("Dependencies") + " " + ManagerBadge(a.managerName)
	right := a.styles.Count.Render(fmt.Sprintf("%d direct, %d total", len(a.nodes), total))

	padding := a.width - lipgloss.Width(title) - lipgloss.Width(right) - 1
	if padding < 1 {
		padding = 1
	}
	return title + strings.Repeat(" ", padding) + right
}

func (a *App) renderFilterLine() string {
	prompt := a.styles.FilterPrompt.Render("/ ")
	switch {
	case a.filtering:
		return prompt + a.textInput.View()
	case a.filter != "":
		return prompt + a.styles.FilterText.Render(a.filter) +
			a.styles.Count.Render(fmt.Sprintf("  (%d shown, esc to clear)", len(a.rows)))
	default:
		return ""
	}
}

// renderRows renders the visible window of the flattened tree
func (a *App) renderRows() string {
	height := a.VisibleHeight()
	if a.showHelp {
		height -= 3
	}

	var b strings.Builder
	if len(a.rows) == 0 {
		if a.filter != "" {
			b.WriteString(a.styles.Empty.Render("No dependencies match " + fmt.Sprintf("%q", a.filter)))
		} else {
			b.WriteString(a.styles.Empty.Render("No dependencies"))
		}
		b.WriteString("\n")
	}

	end := a.scroll + height
	if end > len(a.rows) {
		end = len(a.rows)
	}
	for i := a.scroll; i < end; i++ {
		b.WriteString(a.renderRow(a.rows[i], i == a.cursor))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Height(height).Render(strings.TrimSuffix(b.String(), "\n")) + "\n"
}

func (a *App) renderRow(r Row, selected bool) string {
	marker := "  "
	if r.HasChildren() {
		marker = "▸ "
		if a.isExpanded(r.Key) || (a.filter != "" && !r.Match) {
			marker = "▾ "
		}
	}

	name := a.styles.Name.Render(r.Node.Name)
	if r.Match {
		name = a.styles.NameMatch.Render(r.Node.Name)
	}

	line := strings.Repeat("  ", r.Depth) + a.styles.Marker.Render(marker) + name
	if v := r.Node.Version; v != "" && v != manager.UnknownVersion {
		line += " " + a.styles.Version.Render(v)
	}
	if r.HasChildren() && !a.isExpanded(r.Key) && a.filter == "" {
		line += " " + a.styles.Count.Render(fmt.Sprintf("(%d)", len(r.Node.Dependencies)))
	}

	if selected {
		return a.styles.RowSelected.Render("> ") + line
	}
	return a.styles.Row.Render(line)
}

// renderFooter renders the key help
func (a *App) renderFooter() string {
	return a.styles.Footer.Render(a.help.View(a.keys))
}

// Run starts the browser and blocks until the user quits
func Run(managerName string, nodes []manager.DependencyNode) error {
	app := NewApp(managerName, nodes)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
