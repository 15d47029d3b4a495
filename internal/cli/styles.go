package cli

import "github.com/charmbracelet/lipgloss"

// palette holds the lipgloss styles shared by show, route list and check
// output. The plain palette renders text unchanged.
type palette struct {
	section lipgloss.Style
	name    lipgloss.Style
	dim     lipgloss.Style
	warn    lipgloss.Style
}

func newPalette(color bool) palette {
	if !color {
		plain := lipgloss.NewStyle()
		return palette{section: plain, name: plain, dim: plain, warn: plain}
	}
	return palette{
		section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		name:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
}
