package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rpscam/internal/ui/theme"
)

// ButtonWidth is the fixed width of an arcade menu button.
const ButtonWidth = 22

// MenuItem is one arcade button. Hotkey, when set, selects and fires the
// item in one press.
type MenuItem struct {
	Label  string
	Hotkey string
	Action func() tea.Cmd
}

// Menu is a column of arcade buttons. Arrow keys and j/k move the cursor
// and wrap at either end; enter or space fires the selected item.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	return Menu{Items: items}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	n := len(m.Items)
	switch k := key.String(); k {
	case "up", "k":
		m.Selected = (m.Selected + n - 1) % n
	case "down", "j", "tab":
		m.Selected = (m.Selected + 1) % n
	case "enter", "space", " ":
		return m, m.fire()
	default:
		for i, it := range m.Items {
			if it.Hotkey != "" && strings.EqualFold(it.Hotkey, k) {
				m.Selected = i
				return m, m.fire()
			}
		}
	}
	return m, nil
}

func (m Menu) fire() tea.Cmd {
	if it := m.Items[m.Selected]; it.Action != nil {
		return it.Action()
	}
	return nil
}

// View renders the buttons centred in a column cw cells wide. The selected
// button is lit; each label shows its hotkey when it has one.
func (m Menu) View(cw int) string {
	lit := lipgloss.NewStyle().
		Width(ButtonWidth).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.ArcadeYellow).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ArcadeYellow).
		Padding(0, 1)
	unlit := lit.
		Bold(false).
		Foreground(theme.Text).
		UnsetBackground().
		BorderForeground(theme.Border)

	buttons := make([]string, 0, len(m.Items))
	for i, it := range m.Items {
		label := it.Label
		if it.Hotkey != "" {
			label += " [" + strings.ToUpper(it.Hotkey) + "]"
		}
		if i == m.Selected {
			buttons = append(buttons, lit.Render("▸ "+label))
		} else {
			buttons = append(buttons, unlit.Render(label))
		}
	}
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(strings.Join(buttons, "\n"))
}
