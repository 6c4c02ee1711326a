// Package theme is the arcade palette: neon on deep navy.
package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rpscam/internal/move"
)

var (
	Primary   = lipgloss.Color("#8B5CF6") // cabinet purple
	Secondary = lipgloss.Color("#14B8A6") // score bar teal
	Accent    = lipgloss.Color("#F97316")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgDark    = lipgloss.Color("#0F172A")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")

	// ArcadeYellow marks whatever is live: the countdown, the selected
	// button, the leading score. ArcadeCyan is the player's side.
	ArcadeYellow = lipgloss.Color("#FACC15")
	ArcadeCyan   = lipgloss.Color("#22D3EE")
)

var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(Primary).Align(lipgloss.Center)
	Subtitle = lipgloss.NewStyle().Foreground(TextDim).Align(lipgloss.Center)
	Body     = lipgloss.NewStyle().Foreground(Text)
	Hint     = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	Countdown = lipgloss.NewStyle().Foreground(ArcadeYellow).Bold(true)

	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2)

	Alert = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Error).
		Foreground(Text).
		Padding(0, 2)
)

var (
	win  = lipgloss.NewStyle().Foreground(Success).Bold(true)
	loss = lipgloss.NewStyle().Foreground(Error).Bold(true)
	tie  = lipgloss.NewStyle().Foreground(ArcadeYellow).Bold(true)
)

// Outcome is the style for a round result, seen from the player's side.
func Outcome(o move.Outcome) lipgloss.Style {
	switch o {
	case move.PlayerWin:
		return win
	case move.OpponentWin:
		return loss
	default:
		return tie
	}
}
