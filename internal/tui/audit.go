package tui

import (
	"context"
	"fmt"
	"strings"

	"excelEvidence/internal/audit"
	"excelEvidence/internal/pipeline"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type AuditModel struct {
	factory     Factory
	state       AuditState
	runDirInput textinput.Model
	spinner     spinner.Model
	running     bool
	status      string
	session     *pipeline.Session
	repair      *audit.RepairSummary
	before      int
	err         error
	cursor      int
	width       int
	height      int
}

type AuditState int

const (
	AuditInputState AuditState = iota
	AuditRunningState
	AuditResultState
	AuditConfirmState
)

type AuditCompleteMsg struct {
	Session *pipeline.Session
	Err     error
}

type RepairCompleteMsg struct {
	Summary audit.RepairSummary
	Err     error
}

func NewAuditModel(factory Factory) *AuditModel {
	runDirInput := textinput.New()
	runDirInput.Placeholder = "latest evidencias_* folder"
	runDirInput.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = inputStyle

	return &AuditModel{
		factory:     factory,
		state:       AuditInputState,
		runDirInput: runDirInput,
		spinner:     s,
	}
}

func (m *AuditModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *AuditModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *AuditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case AuditInputState:
			if msg.String() == "enter" {
				return m.startAudit()
			}
			var cmd tea.Cmd
			m.runDirInput, cmd = m.runDirInput.Update(msg)
			return m, cmd
		case AuditResultState:
			return m.updateResultState(msg)
		case AuditConfirmState:
			switch msg.String() {
			case "y", "Y":
				return m.startRepair()
			case "n", "N", "backspace":
				m.state = AuditResultState
			}
		}
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case AuditCompleteMsg:
		m.running = false
		m.session = msg.Session
		m.err = msg.Err
		m.cursor = 0
		m.state = AuditResultState
		return m, nil

	case RepairCompleteMsg:
		m.running = false
		m.repair = &msg.Summary
		m.err = msg.Err
		m.cursor = 0
		m.state = AuditResultState
		return m, nil
	}
	return m, nil
}

func (m *AuditModel) updateResultState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.session != nil && m.cursor < len(m.session.Report.Findings)-1 {
			m.cursor++
		}
	case "r":
		if m.session != nil && len(m.session.Report.Findings) > 0 {
			m.state = AuditConfirmState
		}
	case "enter", " ":
		m.reset()
	}
	return m, nil
}

func (m *AuditModel) startAudit() (tea.Model, tea.Cmd) {
	p, err := m.factory()
	if err != nil {
		return m, ShowError(err)
	}
	explicit := strings.TrimSpace(m.runDirInput.Value())

	m.state = AuditRunningState
	m.running = true
	m.status = "Auditing run folder..."
	m.repair = nil
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		defer p.Close()
		dir, err := p.RunDir(explicit)
		if err != nil {
			return AuditCompleteMsg{Err: fmt.Errorf("failed to find run folder: %w", err)}
		}
		s, err := p.Audit(context.Background(), dir)
		return AuditCompleteMsg{Session: s, Err: err}
	})
}

func (m *AuditModel) startRepair() (tea.Model, tea.Cmd) {
	p, err := m.factory()
	if err != nil {
		return m, ShowError(err)
	}
	s := m.session

	m.state = AuditRunningState
	m.running = true
	m.status = fmt.Sprintf("Repairing %d folders...", len(s.Report.Findings))
	m.before = len(s.Report.Findings)
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		defer p.Close()
		sum, err := p.Repair(context.Background(), s)
		return RepairCompleteMsg{Summary: sum, Err: err}
	})
}

func (m *AuditModel) reset() {
	m.state = AuditInputState
	m.session = nil
	m.repair = nil
	m.err = nil
	m.cursor = 0
	m.runDirInput.Focus()
}

func (m *AuditModel) View() string {
	switch m.state {
	case AuditInputState:
		return m.renderInputForm()
	case AuditRunningState:
		return m.renderRunning()
	case AuditResultState:
		return m.renderResult()
	case AuditConfirmState:
		return m.renderConfirmation()
	}
	return ""
}

func (m *AuditModel) renderInputForm() string {
	adaptiveTitleStyle, adaptiveFormStyle, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	title := adaptiveTitleStyle.Render("🔍 Audit run folder")
	form := adaptiveFormStyle.Render(
		labelStyle.Render("Run folder (empty for the latest):") + "\n" + m.runDirInput.View(),
	)
	help := adaptiveHelpStyle.Render("Enter: Audit • Esc: Back to menu")

	return place(m.width, m.height, lipgloss.Top, lipgloss.JoinVertical(lipgloss.Left, title, form, help))
}

func (m *AuditModel) renderRunning() string {
	adaptiveTitleStyle, _, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	title := adaptiveTitleStyle.Render("🔍 Audit")
	content := progressStyle.Render(m.spinner.View() + " " + m.status)
	help := adaptiveHelpStyle.Render("Please wait...")

	return place(m.width, m.height, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Left, title, content, help))
}

func (m *AuditModel) renderResult() string {
	title := titleStyle.Render("🔍 Audit result")

	if m.err != nil {
		status := errorStyle.Render(fmt.Sprintf("❌ %v", m.err))
		help := helpStyle.Render("Enter: Audit again • Esc: Back to menu")
		return lipgloss.JoinVertical(lipgloss.Left, title, status, help)
	}

	report := m.session.Report
	var lines []string
	if m.repair != nil {
		lines = append(lines, successStyle.Render(fmt.Sprintf(
			"🔧 Repaired %d folders (%d skipped, %d failures); findings %d -> %d",
			m.repair.Attempted, len(m.repair.Skipped), len(m.repair.Failures), m.before, len(report.Findings))))
	}
	lines = append(lines, fmt.Sprintf("Run folder: %s", report.RunDir))
	lines = append(lines, fmt.Sprintf("Folders: %d • OK: %d • Findings: %d",
		report.TotalFolders, report.OKFolders, len(report.Findings)))

	if len(report.Findings) == 0 {
		lines = append(lines, successStyle.Render("✅ Every folder meets expectations"))
	} else {
		lines = append(lines, warningStyle.Render("⚠️  Folders with problems:"))
		lines = append(lines, m.renderFindings())
	}

	help := "↑/↓: Navigate • Enter: Audit again • Esc: Back to menu"
	if len(report.Findings) > 0 {
		help = "↑/↓: Navigate • r: Repair all • Enter: Audit again • Esc: Back to menu"
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n"), helpStyle.Render(help))
}

// renderFindings shows the window of findings around the cursor that fits the screen.
func (m *AuditModel) renderFindings() string {
	findings := m.session.Report.Findings
	start, end := window(len(findings), m.cursor, m.height-14)

	var b strings.Builder
	for i := start; i < end; i++ {
		f := findings[i]
		cursor := " "
		style := menuItemStyle
		if i == m.cursor {
			cursor = ">"
			style = selectedMenuItemStyle
		}
		fmt.Fprintf(&b, "%s %s\n", cursor, style.Render(f.Folder))
		if i == m.cursor {
			for _, e := range f.Errors {
				fmt.Fprintf(&b, "      %s\n", errorStyle.Render(e))
			}
		}
	}
	return b.String()
}

func (m *AuditModel) renderConfirmation() string {
	adaptiveTitleStyle, _, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	title := adaptiveTitleStyle.Render("⚠️  Confirm repair")
	message := warningStyle.Render(fmt.Sprintf(
		"Rebuild the missing files of %d folders in %s?\nExisting files are kept.",
		len(m.session.Report.Findings), m.session.RunDir))
	help := adaptiveHelpStyle.Render("y: Repair • n: Cancel")

	return place(m.width, m.height, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Left, title, message, help))
}
