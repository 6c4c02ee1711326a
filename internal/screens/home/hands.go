package home

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rpscam/internal/move"
	"github.com/abhisek/rpscam/internal/ui/theme"
)

// handTickMsg advances the attract-mode hand animation.
type handTickMsg struct{}

const handInterval = 700 * time.Millisecond

// handCycle is the order the hands are shown in.
var handCycle = move.All()

func handTick() tea.Cmd {
	return tea.Tick(handInterval, func(time.Time) tea.Msg { return handTickMsg{} })
}

// renderHands shows the current hand against the one it beats.
func renderHands(frame int, cw int) string {
	m := handCycle[frame%len(handCycle)]
	var beaten move.Move
	for _, other := range handCycle {
		if move.Beats(m, other) {
			beaten = other
		}
	}

	line := move.Glyph(m) + "  beats  " + move.Glyph(beaten)
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render(line)
}
