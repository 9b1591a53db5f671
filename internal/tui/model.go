package tui

import (
	"strconv"
	"strings"

	"github.com/mcgeq/mcg/pkg/manager"
)

// Row is one visible line of the flattened tree.
type Row struct {
	Node  *manager.DependencyNode
	Depth int
	Key   string // index path, e.g. "0.3.1"
	Match bool   // name matches the active filter
}

// HasChildren reports whether the row can be expanded.
func (r Row) HasChildren() bool {
	return len(r.Node.Dependencies) > 0
}

// Model holds the browser state. It has no bubbletea dependency so it can
// be tested directly.
type Model struct {
	// Core state
	ready    bool
	quitting bool
	showHelp bool

	// Dimensions
	width  int
	height int

	// Data
	managerName string
	nodes       []manager.DependencyNode
	expanded    map[string]bool
	rows        []Row

	// Navigation
	cursor int
	scroll int
	filter string

	styles *Styles
	keys   KeyMap
}

// NewModel creates a model over nodes with every node collapsed.
func NewModel(managerName string, nodes []manager.DependencyNode) *Model {
	m := &Model{
		managerName: managerName,
		nodes:       nodes,
		expanded:    make(map[string]bool),
		styles:      DefaultStyles(),
		keys:        DefaultKeyMap(),
	}
	m.rebuild()
	return m
}

// SetSize sets the terminal size
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.ensureVisible()
}

// Rows returns the visible rows.
func (m *Model) Rows() []Row {
	return m.rows
}

// Cursor returns the selected row index.
func (m *Model) Cursor() int {
	return m.cursor
}

// Filter returns the active filter text.
func (m *Model) Filter() string {
	return m.filter
}

// Selected returns the row under the cursor.
func (m *Model) Selected() (Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return Row{}, false
	}
	return m.rows[m.cursor], true
}

// VisibleHeight returns the number of rows that fit on screen.
func (m *Model) VisibleHeight() int {
	// header, filter line, footer
	h := m.height - 4
	if h < 1 {
		return 1
	}
	return h
}

// MoveCursor moves the cursor by delta, clamped to the rows.
func (m *Model) MoveCursor(delta int) {
	m.setCursor(m.cursor + delta)
}

// CursorTop moves to the first row.
func (m *Model) CursorTop() {
	m.setCursor(0)
}

// CursorBottom moves to the last row.
func (m *Model) CursorBottom() {
	m.setCursor(len(m.rows) - 1)
}

// Toggle expands or collapses the selected row.
func (m *Model) Toggle() {
	row, ok := m.Selected()
	if !ok || !row.HasChildren() {
		return
	}
	m.expanded[row.Key] = !m.isExpanded(row.Key)
	m.rebuild()
}

// Expand opens the selected row.
func (m *Model) Expand() {
	row, ok := m.Selected()
	if !ok || !row.HasChildren() || m.isExpanded(row.Key) {
		return
	}
	m.expanded[row.Key] = true
	m.rebuild()
}

// Collapse closes the selected row, or jumps to its parent when it is
// already closed.
func (m *Model) Collapse() {
	row, ok := m.Selected()
	if !ok {
		return
	}
	if row.HasChildren() && m.isExpanded(row.Key) {
		m.expanded[row.Key] = false
		m.rebuild()
		return
	}
	if i := strings.LastIndexByte(row.Key, '.'); i > 0 {
		m.selectKey(row.Key[:i])
	}
}

// ExpandAll opens every node.
func (m *Model) ExpandAll() {
	walk(m.nodes, "", func(key string, n *manager.DependencyNode) {
		if len(n.Dependencies) > 0 {
			m.expanded[key] = true
		}
	})
	m.rebuild()
}

// CollapseAll closes every node.
func (m *Model) CollapseAll() {
	m.expanded = make(map[string]bool)
	m.cursor = 0
	m.rebuild()
}

// SetFilter shows only nodes whose name contains text, plus their
// ancestors. Matching branches are shown expanded.
func (m *Model) SetFilter(text string) {
	m.filter = strings.TrimSpace(text)
	m.cursor = 0
	m.scroll = 0
	m.rebuild()
}

func (m *Model) isExpanded(key string) bool {
	return m.expanded[key]
}

func (m *Model) setCursor(pos int) {
	if pos >= len(m.rows) {
		pos = len(m.rows) - 1
	}
	if pos < 0 {
		pos = 0
	}
	m.cursor = pos
	m.ensureVisible()
}

func (m *Model) selectKey(key string) {
	for i, r := range m.rows {
		if r.Key == key {
			m.setCursor(i)
			return
		}
	}
}

func (m *Model) ensureVisible() {
	h := m.VisibleHeight()
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+h {
		m.scroll = m.cursor - h + 1
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

// rebuild flattens the tree into rows, keeping the cursor on the same node
// when it is still visible.
func (m *Model) rebuild() {
	var selected string
	if row, ok := m.Selected(); ok {
		selected = row.Key
	}

	m.rows = m.rows[:0]
	needle := strings.ToLower(m.filter)
	m.flatten(m.nodes, "", 0, needle)

	if selected != "" {
		for i, r := range m.rows {
			if r.Key == selected {
				m.cursor = i
				break
			}
		}
	}
	m.setCursor(m.cursor)
}

func (m *Model) flatten(nodes []manager.DependencyNode, prefix string, depth int, needle string) {
	for i := range nodes {
		n := &nodes[i]
		key := childKey(prefix, i)
		match := needle != "" && strings.Contains(strings.ToLower(n.Name), needle)

		if needle != "" && !match && !subtreeMatches(n.Dependencies, needle) {
			continue
		}

		m.rows = append(m.rows, Row{Node: n, Depth: depth, Key: key, Match: match})

		open := m.isExpanded(key)
		if needle != "" && subtreeMatches(n.Dependencies, needle) {
			open = true
		}
		if open {
			m.flatten(n.Dependencies, key, depth+1, needle)
		}
	}
}

func subtreeMatches(nodes []manager.DependencyNode, needle string) bool {
	for i := range nodes {
		if strings.Contains(strings.ToLower(nodes[i].Name), needle) || subtreeMatches(nodes[i].Dependencies, needle) {
			return true
		}
	}
	return false
}

func walk(nodes []manager.DependencyNode, prefix string, fn func(key string, n *manager.DependencyNode)) {
	for i := range nodes {
		key := childKey(prefix, i)
		fn(key, &nodes[i])
		walk(nodes[i].Dependencies, key, fn)
	}
}

func childKey(prefix string, i int) string {
	if prefix == "" {
		return strconv.Itoa(i)
	}
	return prefix + "." + strconv.Itoa(i)
}
