package tui

import (
	"fmt"

	"excelEvidence/internal/config"
	"excelEvidence/internal/pipeline"

	tea "github.com/charmbracelet/bubbletea"
)

type Screen int

const (
	MenuScreen Screen = iota
	GenerateScreen
	AuditScreen
	SimulateScreen
)

// Factory builds a pipeline from the loaded configuration.
type Factory func(opts ...pipeline.Option) (*pipeline.Pipeline, error)

type Model struct {
	currentScreen Screen
	menuModel     *MenuModel
	generateModel *GenerateModel
	auditModel    *AuditModel
	simulateModel *SimulateModel
	err           error
	quitting      bool
	width         int
	height        int
}

// NewModel builds the TUI. cfg seeds the form defaults; every run gets a fresh pipeline
// from factory.
func NewModel(cfg *config.Config, factory Factory) Model {
	return Model{
		currentScreen: MenuScreen,
		menuModel:     NewMenuModel(),
		generateModel: NewGenerateModel(cfg, factory),
		auditModel:    NewAuditModel(factory),
		simulateModel: NewSimulateModel(factory),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menuModel.SetSize(msg.Width, msg.Height)
		m.generateModel.SetSize(msg.Width, msg.Height)
		m.auditModel.SetSize(msg.Width, msg.Height)
		m.simulateModel.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "q":
			if m.currentScreen == MenuScreen {
				m.quitting = true
				return m, tea.Quit
			}
		case "esc":
			if m.currentScreen != MenuScreen && !m.busy() {
				m.currentScreen = MenuScreen
				m.err = nil
				return m, nil
			}
		}

	case ScreenChangeMsg:
		m.currentScreen = msg.Screen
		m.err = nil
		switch msg.Screen {
		case GenerateScreen:
			return m, m.generateModel.Init()
		case AuditScreen:
			return m, m.auditModel.Init()
		case SimulateScreen:
			return m, m.simulateModel.Init()
		}
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	switch m.currentScreen {
	case MenuScreen:
		newMenuModel, cmd := m.menuModel.Update(msg)
		m.menuModel = newMenuModel.(*MenuModel)
		return m, cmd
	case GenerateScreen:
		newGenerateModel, cmd := m.generateModel.Update(msg)
		m.generateModel = newGenerateModel.(*GenerateModel)
		return m, cmd
	case AuditScreen:
		newAuditModel, cmd := m.auditModel.Update(msg)
		m.auditModel = newAuditModel.(*AuditModel)
		return m, cmd
	case SimulateScreen:
		newSimulateModel, cmd := m.simulateModel.Update(msg)
		m.simulateModel = newSimulateModel.(*SimulateModel)
		return m, cmd
	}

	return m, cmd
}

// busy reports whether a background run is in flight on the current screen.
func (m Model) busy() bool {
	switch m.currentScreen {
	case GenerateScreen:
		return m.generateModel.running
	case AuditScreen:
		return m.auditModel.running
	}
	return false
}

func (m Model) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	var content string
	switch m.currentScreen {
	case MenuScreen:
		content = m.menuModel.View()
	case GenerateScreen:
		content = m.generateModel.View()
	case AuditScreen:
		content = m.auditModel.View()
	case SimulateScreen:
		content = m.simulateModel.View()
	}

	if m.err != nil {
		content += errorStyle.Margin(1, 0).Render(fmt.Sprintf("Error: %v", m.err))
	}

	return content
}

type ScreenChangeMsg struct {
	Screen Screen
}

type ErrorMsg struct {
	Err error
}

func ChangeScreen(screen Screen) tea.Cmd {
	return func() tea.Msg {
		return ScreenChangeMsg{Screen: screen}
	}
}

func ShowError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}
