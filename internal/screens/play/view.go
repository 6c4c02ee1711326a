package play

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/rpscam/internal/classify"
	"github.com/abhisek/rpscam/internal/move"
	"github.com/abhisek/rpscam/internal/round"
	"github.com/abhisek/rpscam/internal/ui/components"
	"github.com/abhisek/rpscam/internal/ui/theme"
)

const handWidth = 16

func (s *PlayScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}

	cab := components.Cabinet{Width: width, Height: height}
	cw := cab.Column()
	v := s.sess.View()

	var scores string
	if r := s.sess.LastResult(); r != nil && v.MovesVisible {
		scores = renderScores(r.Prediction, cw)
	}

	var footnote string
	if notices := s.sess.Notices(); len(notices) > 0 {
		footnote = components.NewAlert(notices[0].Message(), cw).View()
	} else if s.hint != "" {
		footnote = lipgloss.NewStyle().
			Width(cw).Align(lipgloss.Center).Foreground(theme.Accent).
			Render(s.hint)
	}

	return cab.Render(
		renderScoreboard(v, cw),
		renderArena(v, cw),
		s.renderStatus(v, cw),
		scores,
		footnote,
	)
}

func renderScoreboard(v round.View, cw int) string {
	you := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true).
		Render(fmt.Sprintf("YOU %d", v.Scores.PlayerWins))
	cpu := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
		Render(fmt.Sprintf("%d CPU", v.Scores.OpponentWins))
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Render("  :  ")

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2).
		Align(lipgloss.Center).
		Render(you + dim + cpu)
}

// renderArena shows the two hands with the countdown or banner between them.
func renderArena(v round.View, cw int) string {
	hand := lipgloss.NewStyle().
		Width(handWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)

	player := v.PlayerGlyph
	if player == "" {
		player = " "
	}
	left := lipgloss.JoinVertical(lipgloss.Center,
		theme.Hint.Render("you"),
		hand.Render(player))
	right := lipgloss.JoinVertical(lipgloss.Center,
		theme.Hint.Render("computer"),
		hand.Render(v.OpponentGlyph))

	middleWidth := cw - 2*(handWidth+2)
	if middleWidth < 6 {
		middleWidth = 6
	}
	var middle string
	switch {
	case v.CountdownVisible:
		middle = theme.Countdown.Render(fmt.Sprintf("%d", v.Countdown))
	case v.BannerVisible:
		middle = theme.Outcome(v.Outcome).Render(v.Banner)
	case v.State == round.Capturing || v.State == round.Resolving:
		middle = theme.Hint.Render("...")
	default:
		middle = theme.Hint.Render("vs")
	}
	middle = lipgloss.NewStyle().Width(middleWidth).Align(lipgloss.Center).
		PaddingTop(2).Render(middle)

	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, left, middle, right))
}

func (s *PlayScreen) renderStatus(v round.View, cw int) string {
	var model string
	switch s.sess.Model().Status() {
	case classify.StatusLoading:
		model = s.spinner.View() + " loading model"
	case classify.StatusFailed:
		model = lipgloss.NewStyle().Foreground(theme.Error).Render("model unavailable")
	default:
		model = lipgloss.NewStyle().Foreground(theme.Success).Render("model ready")
	}

	camera := "camera live"
	if s.deps.Video != nil && !s.deps.Video.Playing() {
		camera = "camera paused"
	}

	line := model + theme.Hint.Render("  ·  "+camera+"  ·  "+v.State.String())
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(line)
}

// renderScores draws one confidence bar per label.
func renderScores(pred *classify.Prediction, cw int) string {
	if pred == nil || len(pred.Scores) != len(move.All()) {
		return ""
	}
	var lines []string
	for i, m := range move.All() {
		lines = append(lines, components.ScoreBar{
			Label:   m.String(),
			Score:   pred.Scores[i],
			Leading: m == pred.Move,
			Width:   cw - 4,
		}.View())
	}
	return components.Card(cw, lines...)
}
