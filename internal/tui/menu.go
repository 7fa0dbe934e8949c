package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type menuChoice struct {
	key   string
	label string
	hint  string
	cmd   tea.Cmd
}

type MenuModel struct {
	choices []menuChoice
	cursor  int
	width   int
	height  int
}

func NewMenuModel() *MenuModel {
	return &MenuModel{
		choices: []menuChoice{
			{"g", "📁 Generate evidence folders", "one folder per customer with its excel extracts and audio", ChangeScreen(GenerateScreen)},
			{"a", "🔍 Audit latest run", "check every folder and repair what is missing", ChangeScreen(AuditScreen)},
			{"s", "🧪 Simulate run", "list the files a run would create", ChangeScreen(SimulateScreen)},
			{"x", "🚪 Exit", "", tea.Quit},
		},
	}
}

func (m *MenuModel) Init() tea.Cmd {
	return nil
}

func (m *MenuModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m, m.choices[m.cursor].cmd
	default:
		for i, c := range m.choices {
			if key.String() == c.key {
				m.cursor = i
				return m, c.cmd
			}
		}
	}
	return m, nil
}

func (m *MenuModel) View() string {
	title, _, help := GetAdaptiveStyles(m.width, m.height)

	var b strings.Builder
	for i, c := range m.choices {
		style, cursor := menuItemStyle, " "
		if i == m.cursor {
			style, cursor = selectedMenuItemStyle, ">"
		}
		b.WriteString(cursor + " " + style.Render(c.key+"  "+c.label) + "\n")
		if i == m.cursor && c.hint != "" {
			b.WriteString("      " + inputStyle.Render(c.hint) + "\n")
		}
	}

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title.Render("🗂️  Evidencias - IVR / SMS / CALL"),
		b.String(),
		help.Render("↑/↓ or j/k: Navigate • Enter or g/a/s: Select • q: Quit"),
	)
	return place(m.width, m.height, lipgloss.Center, content)
}
