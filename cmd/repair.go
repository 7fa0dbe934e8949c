package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var skipConfirmation bool

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Audit a run folder and rebuild what is missing",
	Long: `Audit a run folder, rebuild the missing artifacts of every finding and audit again.
Files already present are never overwritten. Artifacts that still cannot be built are
recorded again in the run ledger.`,
	RunE: runRepair,
}

func init() {
	repairCmd.Flags().StringVar(&runDir, "run-dir", "", "Run folder to repair (defaults to the latest)")
	repairCmd.Flags().BoolVar(&skipConfirmation, "yes", false, "Skip confirmation prompts")
}

func runRepair(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	dir, err := p.RunDir(runDir)
	if err != nil {
		return fmt.Errorf("failed to find run folder: %w", err)
	}
	ctx := context.Background()
	s, err := p.Audit(ctx, dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(s.Report.Findings) == 0 {
		fmt.Fprintf(out, "Nothing to repair in %s\n", dir)
		return nil
	}

	if !skipConfirmation {
		log.Printf("About to repair %d folders in %s", len(s.Report.Findings), dir)
		if !confirmAction("Do you want to continue?") {
			log.Println("Repair cancelled")
			return nil
		}
	}

	before := len(s.Report.Findings)
	sum, err := p.Repair(ctx, s)
	if err != nil {
		return fmt.Errorf("repair failed: %w", err)
	}

	fmt.Fprintf(out, "Repaired %d folders (%d skipped); findings %d -> %d\n",
		sum.Attempted, len(sum.Skipped), before, len(s.Report.Findings))
	for _, f := range sum.Failures {
		fmt.Fprintf(out, "  failed %s %s: %s\n", f.Folder, f.Artifact, f.Error)
	}
	if len(s.Report.Findings) > 0 {
		printReport(out, s.Report)
	}
	return nil
}

func confirmAction(message string) bool {
	fmt.Printf("%s (y/N): ", message)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
