package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "proposalctl",
	Short: "Operator tooling for proposal workflows",
	Long: `proposalctl inspects proposal workflows outside the gateway.

Commands:
  estimate    Compute a cost summary from a YAML work-item file
  questions   Preview the template questions for a stage
  show        Print a saved questionnaire from the gateway or a store`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
