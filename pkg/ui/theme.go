package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles used by the list view.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor

	Selected lipgloss.Style
	Parent   lipgloss.Style
	Child    lipgloss.Style
	Footer   lipgloss.Style
}

// DefaultTheme returns the default palette bound to r. A nil renderer uses
// lipgloss's default.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#1B5E20", Dark: "#8BE9FD"},
		Secondary: lipgloss.AdaptiveColor{Light: "#4A148C", Dark: "#BD93F9"},
		Muted:     lipgloss.AdaptiveColor{Light: "#757575", Dark: "#6272A4"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Error:     lipgloss.AdaptiveColor{Light: "#B71C1C", Dark: "#FF5555"},
	}
	t.Selected = r.NewStyle().Background(t.Highlight).Bold(true)
	t.Parent = r.NewStyle().Foreground(t.Primary)
	t.Child = r.NewStyle().Foreground(t.Secondary)
	t.Footer = r.NewStyle().Foreground(t.Muted)
	return t
}
