package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rpscam/internal/store"
)

type fakeSource struct {
	sessions []store.SessionSummary
	rounds   map[string][]store.RoundRecord
	err      error
	queried  []string
}

func (f *fakeSource) SessionSummaries(context.Context, int) ([]store.SessionSummary, error) {
	return f.sessions, f.err
}

func (f *fakeSource) RecentRounds(_ context.Context, opts store.QueryOpts) ([]store.RoundRecord, error) {
	f.queried = append(f.queried, opts.SessionID)
	return f.rounds[opts.SessionID], nil
}

func TestHistory_ListsSessions(t *testing.T) {
	src := &fakeSource{sessions: []store.SessionSummary{
		{SessionID: "a", Rounds: 3, PlayerWins: 2, OpponentWins: 1, LastPlayed: time.Now()},
	}}
	s := New(src)
	s.Update(s.Init()())

	out := s.View(100, 30)
	if !strings.Contains(out, "3 rounds") || !strings.Contains(out, "you 2 : 1 cpu") {
		t.Errorf("view = %q", out)
	}
}

func TestHistory_StatusSumsSessions(t *testing.T) {
	src := &fakeSource{sessions: []store.SessionSummary{
		{SessionID: "a", Rounds: 4, PlayerWins: 2, OpponentWins: 1, Ties: 1},
		{SessionID: "b", Rounds: 3, PlayerWins: 1, OpponentWins: 0, Ties: 2},
	}}
	s := New(src)
	s.Update(s.Init()())

	if got := s.Status(); got != "2 sessions, 7 rounds, you win 75%" {
		t.Errorf("status = %q", got)
	}
	if !strings.Contains(s.View(100, 30), "you win 75%") {
		t.Error("summary missing from view")
	}

	ties := New(&fakeSource{sessions: []store.SessionSummary{{SessionID: "c", Rounds: 2, Ties: 2}}})
	ties.Update(ties.Init()())
	if got := ties.Status(); got != "1 sessions, 2 rounds" {
		t.Errorf("all-tie status = %q", got)
	}
}

func TestHistory_ExpandLoadsRoundsOnce(t *testing.T) {
	src := &fakeSource{
		sessions: []store.SessionSummary{{SessionID: "a", Rounds: 1}},
		rounds: map[string][]store.RoundRecord{"a": {{RoundEventData: store.RoundEventData{
			SessionID: "a", Round: 1, PlayerMove: "rock", OpponentMove: "scissors", Outcome: "player_win",
		}}}},
	}
	s := New(src)
	s.Update(s.Init()())

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected rounds to load")
	}
	s.Update(cmd())
	if !strings.Contains(s.View(100, 30), "won") {
		t.Error("expanded view missing round")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("rounds reloaded on second expand")
	}
	if len(src.queried) != 1 {
		t.Errorf("queried %d times", len(src.queried))
	}
}

func TestHistory_Empty(t *testing.T) {
	s := New(&fakeSource{})
	s.Update(s.Init()())
	if !strings.Contains(s.View(100, 30), "No rounds played yet.") {
		t.Error("missing empty message")
	}
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("enter on empty list produced a command")
	}
}

func TestHistory_Error(t *testing.T) {
	s := New(&fakeSource{err: errors.New("database is locked")})
	s.Update(s.Init()())
	if !strings.Contains(s.View(100, 30), "database is locked") {
		t.Error("missing error")
	}
}
