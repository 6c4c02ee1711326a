package home

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/rpscam/internal/ui/theme"
)

const arcadeTitleFull = ` ██████╗ ██████╗ ███████╗ ██████╗ █████╗ ███╗   ███╗
 ██╔══██╗██╔══██╗██╔════╝██╔════╝██╔══██╗████╗ ████║
 ██████╔╝██████╔╝███████╗██║     ███████║██╔████╔██║
 ██╔══██╗██╔═══╝ ╚════██║██║     ██╔══██║██║╚██╔╝██║
 ██║  ██║██║     ███████║╚██████╗██║  ██║██║ ╚═╝ ██║
 ╚═╝  ╚═╝╚═╝     ╚══════╝ ╚═════╝╚═╝  ╚═╝╚═╝     ╚═╝`

const arcadeTitleCompact = "R · P · S · C · A · M"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.ArcadeYellow).
		Bold(true)

	title := arcadeTitleFull
	if compact {
		title = arcadeTitleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title))
}

// renderInfoBar names the classifier backend in a bordered box.
func renderInfoBar(backend string, cw int) string {
	if backend == "" {
		backend = "none"
	}
	label := lipgloss.NewStyle().Foreground(theme.TextDim).Render("CLASSIFIER ")
	value := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true).Render(strings.ToUpper(backend))

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(label + value)
}
