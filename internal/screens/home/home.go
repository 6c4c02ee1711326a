package home

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rpscam/internal/router"
	"github.com/abhisek/rpscam/internal/screen"
	"github.com/abhisek/rpscam/internal/screens/history"
	"github.com/abhisek/rpscam/internal/screens/placeholder"
	"github.com/abhisek/rpscam/internal/screens/play"
	"github.com/abhisek/rpscam/internal/ui/components"
)

// HomeScreen is the main menu.
type HomeScreen struct {
	menu    components.Menu
	backend string
	frame   int
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates the home screen. history may be nil when no event log is open.
func New(deps play.Deps, hist history.Source) *HomeScreen {
	items := []components.MenuItem{
		{Label: "PLAY", Hotkey: "p", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: play.New(deps)}
			}
		}},
		{Label: "HISTORY", Hotkey: "h", Action: func() tea.Cmd {
			if hist == nil {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: placeholder.New("History", "No event log is open.")}
				}
			}
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(hist)}
			}
		}},
		{Label: "EXIT", Hotkey: "x", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		menu:    components.NewMenu(items),
		backend: deps.Backend,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return handTick()
}

// Resume restarts the hand animation, whose ticks went to the screen that
// covered the menu.
func (h *HomeScreen) Resume() tea.Cmd {
	return handTick()
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(handTickMsg); ok {
		h.frame = (h.frame + 1) % len(handCycle)
		return h, handTick()
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	termHeight := height + 8
	compact := termHeight < 30 || width < 100

	cab := components.Cabinet{Width: width, Height: height}
	cw := cab.Column()

	var hands string
	if !compact {
		hands = renderHands(h.frame, cw)
	}
	return cab.Render(
		renderTitle(cw, compact),
		hands,
		renderInfoBar(h.backend, cw),
		h.menu.View(cw),
	)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

// Labels returns the menu labels in display order.
func (h *HomeScreen) Labels() []string {
	labels := make([]string, len(h.menu.Items))
	for i, it := range h.menu.Items {
		labels[i] = it.Label
	}
	return labels
}
