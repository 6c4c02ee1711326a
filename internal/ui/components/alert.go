package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rpscam/internal/ui/theme"
)

// Alert is a dismissable message box with an OK button.
type Alert struct {
	Message string
	Width   int
}

// NewAlert creates an alert box of the given width.
func NewAlert(message string, width int) Alert {
	return Alert{Message: message, Width: width}
}

// View renders the alert.
func (a Alert) View() string {
	w := a.Width
	if w < 20 {
		w = 20
	}
	msg := lipgloss.NewStyle().
		Width(w - 6).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render(a.Message)
	ok := lipgloss.NewStyle().
		Width(w - 6).
		Align(lipgloss.Center).
		Render(theme.ButtonActive.Render("▸ OK"))
	return theme.Alert.Width(w - 2).Render(msg + "\n\n" + ok)
}
