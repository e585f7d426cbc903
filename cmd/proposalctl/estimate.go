package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"proposalflow/internal/cost"
)

var estimateJSONFlag bool

var estimateCmd = &cobra.Command{
	Use:   "estimate <items.yaml>",
	Short: "Compute a cost summary from work items",
	Long: `Read work items from a YAML file and print the cost summary.

File format:
  contingencyRate: 10
  rateCard:
    backend: 120
  items:
    - category: backend
      task: API
      hours: 40
      complexity: medium
      riskFactor: 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEstimateFn(args[0], estimateJSONFlag, cmd.OutOrStdout())
	},
}

func init() {
	estimateCmd.Flags().BoolVar(&estimateJSONFlag, "json", false, "Print the summary as JSON")
	rootCmd.AddCommand(estimateCmd)
}

type estimateFile struct {
	ContingencyRate *float64           `yaml:"contingencyRate"`
	RateCard        map[string]float64 `yaml:"rateCard"`
	Items           []cost.WorkItem    `yaml:"items"`
}

func loadBreakdown(path string) (*cost.Breakdown, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var f estimateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	rate := 10.0
	if f.ContingencyRate != nil {
		rate = *f.ContingencyRate
	}
	b, err := cost.New(rate)
	if err != nil {
		return nil, err
	}
	if len(f.RateCard) > 0 {
		if err := b.SetRateCard(f.RateCard); err != nil {
			return nil, err
		}
	}
	for i, item := range f.Items {
		if _, err := b.Add(item); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
	}
	return b, nil
}

func runEstimateFn(path string, asJSON bool, out io.Writer) error {
	b, err := loadBreakdown(path)
	if err != nil {
		return err
	}
	sum := b.Summary()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	fmt.Fprintln(out, headerBox("Estimate "+path))
	for _, l := range sum.Lines {
		fmt.Fprintf(out, "  %-14s %-28s %8.1fh × %8.2f = %s\n",
			l.Category, l.Task, l.AdjustedHours, l.Rate, styleBold.Render(fmt.Sprintf("%.2f", l.Cost)))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, styleTitle.Render("By category"))
	for _, c := range sum.ByCategory {
		fmt.Fprintf(out, "  %-14s %8.1fh %8.1fh adj  %12.2f\n", c.Category, c.Hours, c.AdjustedHours, c.Cost)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s %.1fh (%.1fh adjusted)\n", styleMuted.Render("Hours:"), sum.TotalHours, sum.AdjustedHours)
	fmt.Fprintf(out, "  %s %.2f\n", styleMuted.Render("Subtotal:"), sum.Subtotal)
	fmt.Fprintf(out, "  %s %.2f (%g%%)\n", styleMuted.Render("Contingency:"), sum.Contingency, sum.ContingencyRate)
	fmt.Fprintf(out, "  %s %s\n", styleMuted.Render("Total:"), styleSuccess.Render(fmt.Sprintf("%.2f", sum.Total)))
	return nil
}
