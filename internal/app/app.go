package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rpscam/internal/router"
	"github.com/abhisek/rpscam/internal/screen"
	"github.com/abhisek/rpscam/internal/screens/history"
	"github.com/abhisek/rpscam/internal/screens/home"
	"github.com/abhisek/rpscam/internal/screens/play"
	"github.com/abhisek/rpscam/internal/ui/layout"
)

// Options holds the dependencies the screens are built from.
type Options struct {
	Play play.Deps

	// History is the event log read by the history screen. Nil shows a
	// placeholder instead.
	History history.Source
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	homeScreen := home.New(opts.Play, opts.History)
	return AppModel{
		router: router.New(homeScreen),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.CloseAll()
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.chrome().Render(m.width, m.height, m.router.View))
	return v
}

// chrome takes the title bar and hints from the active screen, falling back
// to menu or back-navigation hints.
func (m AppModel) chrome() layout.Chrome {
	active := m.router.Active()
	if active == nil {
		return layout.Chrome{Hints: []layout.KeyHint{layout.QuitHint}}
	}

	c := layout.Chrome{Title: active.Title()}
	if sp, ok := active.(screen.StatusProvider); ok {
		c.Status = sp.Status()
	}
	switch kp, ok := active.(screen.KeyHintProvider); {
	case ok:
		c.Hints = kp.KeyHints()
	case m.router.Depth() > 1:
		c.Hints = []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	default:
		c.Hints = []layout.KeyHint{{Key: "↑↓", Description: "Navigate"}, {Key: "Enter", Description: "Select"}}
	}
	c.Hints = append(c.Hints, layout.QuitHint)
	return c
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	final, err := p.Run()
	if m, ok := final.(AppModel); ok {
		m.router.CloseAll()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
