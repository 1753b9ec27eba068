package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	cyan    = lipgloss.Color("#00FFFF")
	magenta = lipgloss.Color("#FF00FF")
	green   = lipgloss.Color("#39FF14")
	yellow  = lipgloss.Color("#FFFF00")
	red     = lipgloss.Color("#FF3131")
)

// styles are bound to a renderer so colors are dropped when the output is
// not a terminal.
type styles struct {
	logo      lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	success   lipgloss.Style
	warning   lipgloss.Style
	err       lipgloss.Style
	highlight lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		logo:      r.NewStyle().Foreground(cyan).Bold(true),
		label:     r.NewStyle().Foreground(cyan).Bold(true),
		value:     r.NewStyle().Foreground(yellow),
		success:   r.NewStyle().Foreground(green).Bold(true),
		warning:   r.NewStyle().Foreground(yellow),
		err:       r.NewStyle().Foreground(red).Bold(true),
		highlight: r.NewStyle().Foreground(magenta),
	}
}
