package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "List the files a run would create, without creating them",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the plan as JSON")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	plans, err := p.Simulate()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, plans)
	}

	files := 0
	for _, plan := range plans {
		fmt.Fprintln(out, plan)
		for _, f := range plan.Files {
			fmt.Fprintf(out, "    %s/%s\n", plan.Folder, f)
		}
		files += len(plan.Files)
	}
	fmt.Fprintf(out, "%d customers, %d files\n", len(plans), files)
	return nil
}
