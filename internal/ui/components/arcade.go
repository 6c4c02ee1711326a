package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/rpscam/internal/ui/theme"
)

// Cabinet is the double-bordered arcade frame a screen body is drawn in.
// Sections stack top to bottom in a centred column.
type Cabinet struct {
	Width, Height int
}

// Column is the width every section is drawn at so the cards line up. It
// stays between 20 and 60 whatever the window size.
func (c Cabinet) Column() int {
	// Border (2) plus inner padding (4).
	return min(max(c.Width-6, 20), 60)
}

// Render centres sections in the cabinet, a blank line apart. Empty
// sections are dropped.
func (c Cabinet) Render(sections ...string) string {
	kept := sections[:0:0]
	for _, s := range sections {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(c.Width-2).
		Height(c.Height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(kept, "\n\n"))
}

// Card boxes lines in a rounded panel one column wide.
func Card(column int, lines ...string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(column-2).
		Align(lipgloss.Center).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}
