package cmd

import (
	"context"
	"fmt"

	"excelEvidence/internal/models"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the evidence folders of a run",
	Long: `Generate one folder per customer under the run folder, with the excel extracts and
audio files its channels call for. Artifacts that cannot be built are recorded in
no_creados.csv next to the run ledger.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	res, err := p.Generate(context.Background())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s: %d customers, %d folders in %s\n", res.RunID, res.Total, len(res.Folders), res.RunDir)
	counts := res.Registry.Counts()
	for _, b := range models.Buckets {
		if counts[b] > 0 {
			fmt.Fprintf(out, "  %-24s %d\n", b, counts[b])
		}
	}
	if len(res.Failures) > 0 {
		fmt.Fprintf(out, "WARNING: %d artifacts failed:\n", len(res.Failures))
		for _, f := range res.Failures {
			fmt.Fprintf(out, "  - %s %s: %s\n", f.Folder, f.Artifact, f.Error)
		}
	}
	return nil
}
