// Package layout draws the window chrome around the active screen: a title
// bar with the running status and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/rpscam/internal/ui/theme"
)

// The cabinet, score bars and hint footer need at least this much room.
const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// QuitHint is appended to every footer.
var QuitHint = KeyHint{Key: "Ctrl+C", Description: "Quit"}

// IsTooSmall reports whether the terminal cannot fit the chrome.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// Chrome is the title bar and footer for one screen.
type Chrome struct {
	Title  string
	Status string
	Hints  []KeyHint
}

// Render lays the chrome out in a width x height window. body is called with
// the room left between header and footer.
func (c Chrome) Render(width, height int, body func(width, height int) string) string {
	if IsTooSmall(width, height) {
		return resizeNotice(width, height)
	}
	header := c.header(width)
	footer := c.footer(width)

	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := lipgloss.NewStyle().
		Width(width).
		Height(bodyHeight).
		Render(body(width, bodyHeight))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (c Chrome) header(width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  rpscam")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(c.Title)
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(c.Status)
	return bar(spread(width-4, left, center, right), width)
}

func (c Chrome) footer(width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, 0, len(c.Hints))
	for _, h := range c.Hints {
		parts = append(parts, keyStyle.Render(h.Key)+" "+descStyle.Render(h.Description))
	}
	return bar("  "+strings.Join(parts, "   "), width)
}

// spread centres center in inner columns, with left and right at the edges
// and at least one space between neighbours.
func spread(inner int, left, center, right string) string {
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	leftGap := max((inner-cw)/2-lw, 1)
	rightGap := max(inner-lw-leftGap-cw-rw, 1)
	return left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right
}

func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

func resizeNotice(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("The arcade needs a bigger window.\n\nAt least %d x %d, have %d x %d.",
			MinWidth, MinHeight, width, height))
}
