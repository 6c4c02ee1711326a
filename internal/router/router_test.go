package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rpscam/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title   string
	initRan bool
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func TestPush(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPop(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)
	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.Active().Title() != "first" {
		t.Errorf("expected active 'first', got %q", r.Active().Title())
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
}

// closingScreen records Close calls.
type closingScreen struct {
	stubScreen
	closed int
}

func (s *closingScreen) Close() { s.closed++ }

func TestPopClosesScreen(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	play := &closingScreen{stubScreen: stubScreen{title: "play"}}
	r.Push(play)

	r.Update(PopScreenMsg{})

	if play.closed != 1 {
		t.Errorf("expected Close once, got %d", play.closed)
	}
	if r.Active().Title() != "home" {
		t.Errorf("expected active 'home', got %q", r.Active().Title())
	}
}

func TestPopAtBottomDoesNotClose(t *testing.T) {
	home := &closingScreen{stubScreen: stubScreen{title: "home"}}
	r := New(home)
	r.Pop()
	if home.closed != 0 {
		t.Errorf("bottom screen closed %d times", home.closed)
	}
}

func TestCloseAll(t *testing.T) {
	home := &closingScreen{stubScreen: stubScreen{title: "home"}}
	play := &closingScreen{stubScreen: stubScreen{title: "play"}}
	r := New(home)
	r.Push(play)

	r.CloseAll()
	if home.closed != 1 || play.closed != 1 {
		t.Errorf("closed home=%d play=%d, want 1 each", home.closed, play.closed)
	}
}

// resumingScreen counts Resume calls and hands back a marker command.
type resumingScreen struct {
	stubScreen
	resumed int
}

type resumedMsg struct{}

func (s *resumingScreen) Resume() tea.Cmd {
	s.resumed++
	return func() tea.Msg { return resumedMsg{} }
}

func TestPopResumesUncoveredScreen(t *testing.T) {
	home := &resumingScreen{stubScreen: stubScreen{title: "home"}}
	r := New(home)
	r.Push(&closingScreen{stubScreen: stubScreen{title: "play"}})

	cmd := r.Update(PopScreenMsg{})
	if home.resumed != 1 {
		t.Fatalf("expected Resume once, got %d", home.resumed)
	}
	if cmd == nil {
		t.Fatal("expected the resume command")
	}
	if _, ok := cmd().(resumedMsg); !ok {
		t.Error("pop did not return the uncovered screen's command")
	}
}

func TestPopAtBottomDoesNotResume(t *testing.T) {
	home := &resumingScreen{stubScreen: stubScreen{title: "home"}}
	r := New(home)
	if cmd := r.Pop(); cmd != nil {
		t.Error("pop at bottom returned a command")
	}
	if home.resumed != 0 {
		t.Errorf("root resumed %d times", home.resumed)
	}
}
