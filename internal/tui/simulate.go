package tui

import (
	"fmt"
	"strings"

	"excelEvidence/internal/evidence"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SimulateModel lists what a run would create without touching the disk.
type SimulateModel struct {
	factory Factory
	plans   []evidence.Plan
	files   int
	err     error
	cursor  int
	width   int
	height  int
}

type SimulateCompleteMsg struct {
	Plans []evidence.Plan
	Err   error
}

func NewSimulateModel(factory Factory) *SimulateModel {
	return &SimulateModel{factory: factory}
}

func (m *SimulateModel) Init() tea.Cmd {
	m.plans, m.err, m.cursor, m.files = nil, nil, 0, 0
	return func() tea.Msg {
		p, err := m.factory()
		if err != nil {
			return SimulateCompleteMsg{Err: err}
		}
		defer p.Close()
		plans, err := p.Simulate()
		return SimulateCompleteMsg{Plans: plans, Err: err}
	}
}

func (m *SimulateModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *SimulateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.plans)-1 {
				m.cursor++
			}
		}

	case SimulateCompleteMsg:
		m.plans = msg.Plans
		m.err = msg.Err
		m.files = 0
		for _, p := range msg.Plans {
			m.files += len(p.Files)
		}
	}
	return m, nil
}

func (m *SimulateModel) View() string {
	title := titleStyle.Render("🧪 Simulated run")

	if m.err != nil {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			errorStyle.Render(fmt.Sprintf("❌ %v", m.err)),
			helpStyle.Render("Esc: Back to menu"))
	}
	if m.plans == nil {
		return lipgloss.JoinVertical(lipgloss.Left, title, "Loading datasets...")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d customers, %d files\n\n", len(m.plans), m.files)
	start, end := window(len(m.plans), m.cursor, m.height-12)
	for i := start; i < end; i++ {
		plan := m.plans[i]
		if i != m.cursor {
			fmt.Fprintf(&b, "  %s\n", menuItemStyle.Render(plan.String()))
			continue
		}
		fmt.Fprintf(&b, "> %s\n", selectedMenuItemStyle.Render(plan.String()))
		for _, f := range plan.Files {
			fmt.Fprintf(&b, "      %s\n", inputStyle.Render(plan.Folder+"/"+f))
		}
	}

	help := helpStyle.Render("↑/↓: Navigate • Esc: Back to menu")
	return lipgloss.JoinVertical(lipgloss.Left, title, b.String(), help)
}
