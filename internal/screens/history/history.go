package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rpscam/internal/move"
	"github.com/abhisek/rpscam/internal/router"
	"github.com/abhisek/rpscam/internal/screen"
	"github.com/abhisek/rpscam/internal/store"
	"github.com/abhisek/rpscam/internal/ui/layout"
	"github.com/abhisek/rpscam/internal/ui/theme"
)

// Source is the read side of the event log the screen needs.
type Source interface {
	SessionSummaries(ctx context.Context, limit int) ([]store.SessionSummary, error)
	RecentRounds(ctx context.Context, opts store.QueryOpts) ([]store.RoundRecord, error)
}

const (
	sessionLimit = 50
	roundLimit   = 20
)

type historyLoadedMsg struct {
	Sessions []store.SessionSummary
	Err      error
}

type roundsLoadedMsg struct {
	SessionID string
	Rounds    []store.RoundRecord
	Err       error
}

// HistoryScreen lists past sessions; Enter expands a session's rounds.
type HistoryScreen struct {
	source   Source
	sessions []store.SessionSummary
	rounds   map[string][]store.RoundRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.StatusProvider = (*HistoryScreen)(nil)

func New(source Source) *HistoryScreen {
	return &HistoryScreen{
		source:   source,
		rounds:   make(map[string][]store.RoundRecord),
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		sessions, err := s.source.SessionSummaries(context.Background(), sessionLimit)
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) loadRounds(sessionID string) tea.Cmd {
	return func() tea.Msg {
		rounds, err := s.source.RecentRounds(context.Background(), store.QueryOpts{
			SessionID: sessionID,
			Limit:     roundLimit,
		})
		return roundsLoadedMsg{SessionID: sessionID, Rounds: rounds, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Rounds"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case roundsLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.rounds[msg.SessionID] = msg.Rounds
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if s.selected >= len(s.sessions) {
				return s, nil
			}
			s.expanded[s.selected] = !s.expanded[s.selected]
			id := s.sessions[s.selected].SessionID
			if _, ok := s.rounds[id]; s.expanded[s.selected] && !ok {
				return s, s.loadRounds(id)
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return message(width, theme.Error, "Error: "+s.errMsg)
	case !s.loaded:
		return message(width, theme.TextDim, "Loading history...")
	case len(s.sessions) == 0:
		return message(width, theme.TextDim, "No rounds played yet.")
	}

	center := func(line string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, line)
	}
	lines := []string{"", center(theme.Subtitle.Render(s.Status())), ""}
	for i, sess := range s.sessions {
		cursor, style := "  ", theme.Body
		if i == s.selected {
			cursor, style = "> ", theme.Title
		}
		lines = append(lines, center(style.Render(fmt.Sprintf("%s%s  %d rounds  you %d : %d cpu  %d ties",
			cursor, sess.LastPlayed.Local().Format("Jan 02, 2006 15:04"),
			sess.Rounds, sess.PlayerWins, sess.OpponentWins, sess.Ties))))

		if s.expanded[i] {
			for _, l := range roundLines(s.rounds[sess.SessionID]) {
				lines = append(lines, center(l))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// Status sums the listed sessions. Ties do not count against the win rate.
func (s *HistoryScreen) Status() string {
	var rounds, won, lost int
	for _, sess := range s.sessions {
		rounds += sess.Rounds
		won += sess.PlayerWins
		lost += sess.OpponentWins
	}
	if won+lost == 0 {
		return fmt.Sprintf("%d sessions, %d rounds", len(s.sessions), rounds)
	}
	return fmt.Sprintf("%d sessions, %d rounds, you win %d%%", len(s.sessions), rounds, won*100/(won+lost))
}

func message(width int, color color.Color, text string) string {
	return lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(color).
		Render("\n\n" + text)
}

var outcomeWords = map[move.Outcome]string{
	move.PlayerWin:   "won",
	move.OpponentWin: "lost",
	move.Tie:         "tie",
}

func roundLines(rounds []store.RoundRecord) []string {
	if len(rounds) == 0 {
		return []string{theme.Hint.Render("    No rounds recorded")}
	}
	lines := make([]string, 0, len(rounds))
	for _, r := range rounds {
		o := move.ParseOutcome(r.Outcome)
		line := fmt.Sprintf("    #%-3d %s vs %s  %s",
			r.Round, glyph(r.PlayerMove), glyph(r.OpponentMove), outcomeWords[o])
		lines = append(lines, theme.Outcome(o).Render(line))
	}
	return lines
}

func glyph(label string) string {
	m, err := move.Parse(label)
	if err != nil {
		return label
	}
	return move.Glyph(m)
}
