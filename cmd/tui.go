package cmd

import (
	"fmt"

	"excelEvidence/internal/pipeline"
	"excelEvidence/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// tuiLogFile receives the pipeline logs while the TUI owns the terminal.
const tuiLogFile = "evidencias.log"

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive TUI (same as default)",
	Long: `Start the Terminal User Interface (TUI) to generate evidence folders,
audit and repair a run folder, or simulate a run.

Logs are written to evidencias.log while the TUI is running.
Note: This is the same as running the program without any commands.`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	logFile, err := tea.LogToFile(tuiLogFile, "tui")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	factory := func(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
		p, err := newPipeline(opts...)
		if err != nil {
			return nil, err
		}
		p.Logger.SetOutput(logFile)
		return p, nil
	}

	program := tea.NewProgram(
		tui.NewModel(cfg, factory),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
