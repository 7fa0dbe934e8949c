package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare customer channels with the new data table",
	Long: `Report the customers whose effective management channels differ from the
TIPO DE GESTION of their first row in the new data table.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print mismatches as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	mismatches, err := p.Check()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, mismatches)
	}
	if len(mismatches) == 0 {
		fmt.Fprintln(out, "Customer table and new data agree")
		return nil
	}
	for _, m := range mismatches {
		fmt.Fprintf(out, "%d. %s (%s): %q vs %q\n", m.ID, m.Name, m.Account, m.Primary, m.Secondary)
	}
	fmt.Fprintf(out, "%d mismatches\n", len(mismatches))
	return nil
}
