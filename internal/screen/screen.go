package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rpscam/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is an optional interface for screens that show a status
// line on the right of the header.
type StatusProvider interface {
	Status() string
}

// Closer is an optional interface for screens that release resources when
// popped off the stack.
type Closer interface {
	Close()
}

// Resumer is an optional interface for screens that restart background work,
// such as animation ticks, when they are back on top after a pop.
type Resumer interface {
	Resume() tea.Cmd
}
