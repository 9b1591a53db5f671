// Package tui provides the interactive dependency browser behind
// `mcg analyze -i`.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette - matches existing CLI colors
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorWarning   = lipgloss.Color("#F59E0B") // Yellow
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorText      = lipgloss.Color("#F3F4F6") // Light gray
	ColorBgAlt     = lipgloss.Color("#374151")
)

// ManagerColors tint the header badge.
var ManagerColors = map[string]lipgloss.Color{
	"cargo":  lipgloss.Color("#DEA584"), // Rust orange
	"npm":    lipgloss.Color("#CB3837"),
	"pnpm":   lipgloss.Color("#F69220"),
	"yarn":   lipgloss.Color("#2C8EBB"),
	"bun":    lipgloss.Color("#FBF0DF"),
	"pip":    lipgloss.Color("#3776AB"), // Python blue
	"pdm":    lipgloss.Color("#3776AB"),
	"poetry": lipgloss.Color("#60A5FA"),
}

// Styles contains all the lipgloss styles used in the TUI
type Styles struct {
	Header lipgloss.Style
	Footer lipgloss.Style
	Title  lipgloss.Style

	Row         lipgloss.Style
	RowSelected lipgloss.Style
	Marker      lipgloss.Style
	Name        lipgloss.Style
	NameMatch   lipgloss.Style
	Version     lipgloss.Style
	Count       lipgloss.Style
	Empty       lipgloss.Style

	FilterPrompt lipgloss.Style
	FilterText   lipgloss.Style
}

// DefaultStyles returns the default style configuration
func DefaultStyles() *Styles {
	s := &Styles{}

	s.Header = lipgloss.NewStyle().
		Foreground(ColorText).
		Background(ColorBgAlt).
		Padding(0, 1).
		Bold(true)

	s.Footer = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Padding(0, 1)

	s.Title = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true)

	s.Row = lipgloss.NewStyle().
		PaddingLeft(2)

	s.RowSelected = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	s.Marker = lipgloss.NewStyle().
		Foreground(ColorMuted)

	s.Name = lipgloss.NewStyle().
		Foreground(ColorText)

	s.NameMatch = lipgloss.NewStyle().
		Foreground(ColorWarning).
		Bold(true)

	s.Version = lipgloss.NewStyle().
		Foreground(ColorSuccess)

	s.Count = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true)

	s.Empty = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true).
		PaddingLeft(2)

	s.FilterPrompt = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	s.FilterText = lipgloss.NewStyle().
		Foreground(ColorWarning)

	return s
}

// Badge creates a badge-style label
func Badge(text string, color lipgloss.Color) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#000000")).
		Background(color).
		Padding(0, 1).
		Render(text)
}

// ManagerBadge creates a badge for a package manager name
func ManagerBadge(name string) string {
	color, ok := ManagerColors[name]
	if !ok {
		color = ColorMuted
	}
	return Badge(name, color)
}
