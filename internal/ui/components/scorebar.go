package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/rpscam/internal/ui/theme"
)

// ScoreBar shows the classifier's confidence in one gesture.
type ScoreBar struct {
	Label string
	Score float64
	// Leading marks the gesture the round was resolved to.
	Leading bool
	Width   int
}

// scoreLabelWidth fits the longest gesture label.
const scoreLabelWidth = 9

// View renders "label  ████····  42%" in Width cells. Scores outside [0, 1]
// are clamped.
func (b ScoreBar) View() string {
	score := min(max(b.Score, 0), 1)

	labelStyle := lipgloss.NewStyle().Foreground(theme.TextDim).Width(scoreLabelWidth)
	fill := theme.Secondary
	if b.Leading {
		labelStyle = labelStyle.Foreground(theme.Text).Bold(true)
		fill = theme.ArcadeYellow
	}
	pct := fmt.Sprintf("%4d%%", int(score*100+0.5))

	barWidth := max(b.Width-scoreLabelWidth-len(pct)-2, 4)
	filled := int(float64(barWidth)*score + 0.5)

	return labelStyle.Render(b.Label) + " " +
		lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled)) +
		" " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(pct)
}
