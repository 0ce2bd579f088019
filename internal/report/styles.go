package report

import "github.com/charmbracelet/lipgloss"

var (
	colorGreen  = lipgloss.Color("#5fd787")
	colorYellow = lipgloss.Color("#ffd75f")
	colorRed    = lipgloss.Color("#ff5f5f")
	colorDim    = lipgloss.Color("#808080")
)

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	component lipgloss.Style
	issues    lipgloss.Style
	base      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	base := r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	return styles{
		title:     r.NewStyle().Bold(true),
		header:    r.NewStyle().Bold(true).Foreground(colorDim),
		component: r.NewStyle().Bold(true),
		issues:    base.BorderForeground(colorRed).Foreground(colorRed),
		base:      base,
	}
}

// panel colours a bordered box by health status.
func (s styles) panel(status string) lipgloss.Style {
	switch status {
	case "healthy":
		return s.base.BorderForeground(colorGreen).Foreground(colorGreen)
	case "degraded":
		return s.base.BorderForeground(colorYellow).Foreground(colorYellow)
	default:
		return s.base.BorderForeground(colorRed).Foreground(colorRed)
	}
}
