package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"excelEvidence/internal/config"
	"excelEvidence/internal/evidence"
	"excelEvidence/internal/models"
	"excelEvidence/internal/pipeline"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type GenerateModel struct {
	factory        Factory
	state          GenerateState
	customersInput textinput.Model
	outputInput    textinput.Model
	focusedInput   int
	progress       progress.Model
	progressVal    float64
	current        string
	done           int
	total          int
	running        bool
	updates        chan tea.Msg
	result         *evidence.Result
	err            error
	files          []string
	selectedFile   int
	width          int
	height         int
}

type GenerateState int

const (
	GenerateInputState GenerateState = iota
	GenerateFileSelectState
	GenerateProgressState
	GenerateResultState
)

type GenerateProgressMsg struct {
	Done     int
	Total    int
	Customer string
}

type GenerateCompleteMsg struct {
	Result *evidence.Result
	Err    error
}

func NewGenerateModel(cfg *config.Config, factory Factory) *GenerateModel {
	customersInput := textinput.New()
	customersInput.Placeholder = "clientes.xlsx"
	customersInput.SetValue(cfg.CustomersFile)
	customersInput.Focus()

	outputInput := textinput.New()
	outputInput.Placeholder = "."
	outputInput.SetValue(cfg.OutputRoot)

	return &GenerateModel{
		factory:        factory,
		state:          GenerateInputState,
		customersInput: customersInput,
		outputInput:    outputInput,
		progress: progress.New(
			progress.WithSolidFill("#00aadd"),
			progress.WithoutPercentage(),
		),
	}
}

func (m *GenerateModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *GenerateModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *GenerateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case GenerateInputState:
			return m.updateInputState(msg)
		case GenerateFileSelectState:
			return m.updateFileSelectState(msg)
		case GenerateResultState:
			if msg.String() == "enter" || msg.String() == " " {
				m.reset()
			}
		}
		return m, nil

	case GenerateProgressMsg:
		m.done, m.total, m.current = msg.Done, msg.Total, msg.Customer
		if msg.Total > 0 {
			m.progressVal = float64(msg.Done) / float64(msg.Total)
		}
		return m, waitForUpdate(m.updates)

	case GenerateCompleteMsg:
		m.running = false
		m.result = msg.Result
		m.err = msg.Err
		m.state = GenerateResultState
		return m, nil
	}
	return m, nil
}

func (m *GenerateModel) updateInputState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "tab", "down", "shift+tab", "up":
		m.focusedInput = 1 - m.focusedInput
		m.updateInputFocus()
		return m, nil
	case "ctrl+f":
		return m.browseFiles()
	case "enter":
		if strings.TrimSpace(m.customersInput.Value()) != "" {
			return m.startGenerate()
		}
		return m, nil
	}

	if m.focusedInput == 0 {
		m.customersInput, cmd = m.customersInput.Update(msg)
	} else {
		m.outputInput, cmd = m.outputInput.Update(msg)
	}
	return m, cmd
}

func (m *GenerateModel) updateFileSelectState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedFile > 0 {
			m.selectedFile--
		}
	case "down", "j":
		if m.selectedFile < len(m.files)-1 {
			m.selectedFile++
		}
	case "enter":
		if len(m.files) > 0 {
			m.customersInput.SetValue(m.files[m.selectedFile])
		}
		m.state = GenerateInputState
	case "backspace":
		m.state = GenerateInputState
	}
	return m, nil
}

// browseFiles lists the spreadsheets in the working directory.
func (m *GenerateModel) browseFiles() (tea.Model, tea.Cmd) {
	cwd, err := os.Getwd()
	if err != nil {
		return m, ShowError(err)
	}
	var files []string
	for _, pattern := range []string{"*.xlsx", "*.xls", "*.csv"} {
		matches, err := filepath.Glob(filepath.Join(cwd, pattern))
		if err != nil {
			return m, ShowError(err)
		}
		for _, f := range matches {
			rel, _ := filepath.Rel(cwd, f)
			files = append(files, rel)
		}
	}

	m.files = files
	m.selectedFile = 0
	m.state = GenerateFileSelectState
	return m, nil
}

func (m *GenerateModel) updateInputFocus() {
	inputs := []*textinput.Model{&m.customersInput, &m.outputInput}
	for i, input := range inputs {
		if i == m.focusedInput {
			input.Focus()
		} else {
			input.Blur()
		}
	}
}

func (m *GenerateModel) startGenerate() (tea.Model, tea.Cmd) {
	updates := make(chan tea.Msg, 64)
	p, err := m.factory(pipeline.WithProgress(func(done, total int, c models.CustomerRecord) {
		updates <- GenerateProgressMsg{Done: done, Total: total, Customer: c.Name}
	}))
	if err != nil {
		return m, ShowError(err)
	}
	p.Config.CustomersFile = strings.TrimSpace(m.customersInput.Value())
	if root := strings.TrimSpace(m.outputInput.Value()); root != "" {
		p.Config.OutputRoot = root
	}

	m.state = GenerateProgressState
	m.running = true
	m.updates = updates
	m.progressVal, m.done, m.total, m.current = 0, 0, 0, ""
	return m, tea.Batch(runGenerate(p, updates), waitForUpdate(updates))
}

// runGenerate publishes the completion on updates so it arrives after every progress
// message the run produced.
func runGenerate(p *pipeline.Pipeline, updates chan<- tea.Msg) tea.Cmd {
	return func() tea.Msg {
		defer close(updates)
		defer p.Close()
		res, err := p.Generate(context.Background())
		updates <- GenerateCompleteMsg{Result: res, Err: err}
		return nil
	}
}

func waitForUpdate(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *GenerateModel) reset() {
	m.state = GenerateInputState
	m.running = false
	m.result = nil
	m.err = nil
	m.progressVal = 0
	m.focusedInput = 0
	m.updateInputFocus()
}

func (m *GenerateModel) View() string {
	switch m.state {
	case GenerateInputState:
		return m.renderInputForm()
	case GenerateFileSelectState:
		return m.renderFileSelector()
	case GenerateProgressState:
		return m.renderProgress()
	case GenerateResultState:
		return m.renderResult()
	}
	return ""
}

func (m *GenerateModel) renderInputForm() string {
	adaptiveTitleStyle, adaptiveFormStyle, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	title := adaptiveTitleStyle.Render("📁 Generate evidence folders")

	form := adaptiveFormStyle.Render(
		labelStyle.Render("Customer table:") + "\n" + m.customersInput.View() + "\n\n" +
			labelStyle.Render("Output root:") + "\n" + m.outputInput.View(),
	)

	help := adaptiveHelpStyle.Render("Tab: Switch field • Ctrl+F: Browse files • Enter: Generate • Esc: Back to menu")

	return place(m.width, m.height, lipgloss.Top, lipgloss.JoinVertical(lipgloss.Left, title, form, help))
}

func (m *GenerateModel) renderFileSelector() string {
	title := titleStyle.Render("📂 Select customer table")

	if len(m.files) == 0 {
		content := warningStyle.Render("No spreadsheets found in current directory")
		help := helpStyle.Render("Backspace: Back to form")
		return lipgloss.JoinVertical(lipgloss.Left, title, content, help)
	}

	var fileList string
	for i, file := range m.files {
		cursor := " "
		style := menuItemStyle
		if i == m.selectedFile {
			cursor = ">"
			style = selectedMenuItemStyle
		}
		fileList += fmt.Sprintf("%s %s\n", cursor, style.Render(file))
	}

	help := helpStyle.Render("↑/↓: Navigate • Enter: Select • Backspace: Cancel")

	return lipgloss.JoinVertical(lipgloss.Left, title, fileList, help)
}

func (m *GenerateModel) renderProgress() string {
	adaptiveTitleStyle, _, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	title := adaptiveTitleStyle.Render("📁 Generating evidence...")

	progressWidth := m.width - 10
	if progressWidth < 20 {
		progressWidth = 20
	}
	if progressWidth > 80 {
		progressWidth = 80
	}

	progressBar := lipgloss.NewStyle().Width(progressWidth).Render(m.progress.ViewAs(m.progressVal))
	progressText := fmt.Sprintf("%d/%d customers (%.1f%%)", m.done, m.total, m.progressVal*100)
	if m.current != "" {
		progressText += "\n" + inputStyle.Render(m.current)
	}

	content := progressStyle.Render(progressBar + "\n" + progressText)
	help := adaptiveHelpStyle.Render("Please wait while the folders are being built...")

	return place(m.width, m.height, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Left, title, content, help))
}

func (m *GenerateModel) renderResult() string {
	title := titleStyle.Render("📁 Generation complete")

	var status string
	if m.err != nil {
		status = errorStyle.Render(fmt.Sprintf("❌ Generation failed: %v", m.err))
	} else {
		status = successStyle.Render("✅ Evidence folders generated!")
	}

	var stats string
	if m.result != nil {
		stats = fmt.Sprintf(
			"📊 Run statistics:\n"+
				"   Run folder: %s\n"+
				"   Customers: %d\n"+
				"   Folders: %d\n"+
				"   Not created: %d\n"+
				"   Resource failures: %d",
			m.result.RunDir,
			m.result.Total,
			len(m.result.Folders),
			m.result.Registry.Len(),
			len(m.result.Failures),
		)
		stats += bucketLines(m.result.Registry.Counts())
	}

	help := helpStyle.Render("Enter: Generate again • Esc: Back to menu")

	return lipgloss.JoinVertical(lipgloss.Left, title, status, stats, help)
}

func bucketLines(counts map[models.Bucket]int) string {
	var out string
	for _, b := range models.Buckets {
		if n := counts[b]; n > 0 {
			out += fmt.Sprintf("\n      %s: %d", b, n)
		}
	}
	return out
}
