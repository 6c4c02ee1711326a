package placeholder

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rpscam/internal/screen"
	"github.com/abhisek/rpscam/internal/ui/theme"
)

// PlaceholderScreen shows a fixed message in place of a screen that cannot
// be built, such as history without an event log.
type PlaceholderScreen struct {
	title   string
	message string
}

var _ screen.Screen = (*PlaceholderScreen)(nil)

// New creates a new PlaceholderScreen with the given title and message.
func New(title, message string) *PlaceholderScreen {
	return &PlaceholderScreen{title: title, message: message}
}

func (p *PlaceholderScreen) Init() tea.Cmd {
	return nil
}

func (p *PlaceholderScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	return p, nil
}

func (p *PlaceholderScreen) View(width, height int) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.Title.Render("╌╌ "+p.title+" ╌╌"),
		"",
		theme.Subtitle.Render(p.message),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (p *PlaceholderScreen) Title() string {
	return p.title
}
