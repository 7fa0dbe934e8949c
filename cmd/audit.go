package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"excelEvidence/internal/models"
	"excelEvidence/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	runDir     string
	jsonOutput bool
	history    int64
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit a run folder",
	Long: `Audit every customer folder of a run against the channels of its customer. Artifacts
the run ledger records as not created are excused; anything else missing is reported.
The latest evidencias* folder under the output root is audited unless --run-dir is set.`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVar(&runDir, "run-dir", "", "Run folder to audit (defaults to the latest)")
	auditCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	auditCmd.Flags().Int64Var(&history, "history", 0, "List the last N audits stored in MongoDB instead of auditing")
}

func runAudit(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	dir, err := p.RunDir(runDir)
	if err != nil {
		return fmt.Errorf("failed to find run folder: %w", err)
	}
	if history > 0 {
		return printHistory(cmd, p, dir)
	}
	s, err := p.Audit(context.Background(), dir)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), s.Report)
	}
	printReport(cmd.OutOrStdout(), s.Report)
	return nil
}

func printHistory(cmd *cobra.Command, p *pipeline.Pipeline, dir string) error {
	reports, err := p.History(context.Background(), dir, history)
	if err != nil {
		return fmt.Errorf("failed to load audit history: %w", err)
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, reports)
	}
	if len(reports) == 0 {
		fmt.Fprintf(out, "No stored audits for %s\n", dir)
		return nil
	}
	for _, r := range reports {
		fmt.Fprintf(out, "%s  folders: %d  ok: %d  with findings: %d\n",
			r.AuditedAt.Local().Format("2006-01-02 15:04:05"), r.TotalFolders, r.OKFolders, len(r.Findings))
	}
	return nil
}

func printReport(out io.Writer, r *models.AuditReport) {
	fmt.Fprintf(out, "Audit of %s\n", r.RunDir)
	fmt.Fprintf(out, "  folders: %d  ok: %d  with findings: %d\n", r.TotalFolders, r.OKFolders, len(r.Findings))
	for _, f := range r.Findings {
		fmt.Fprintf(out, "\n%s (%s) %d/%d files\n", f.Folder, f.ExpectedChannels, f.FoundFiles, f.ExpectedFiles)
		fmt.Fprintf(out, "  %s\n", strings.Join(f.Errors, "\n  "))
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
