package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"proposalflow/internal/questiongen"
	"proposalflow/internal/types"
	wf "proposalflow/internal/workflow"
)

var (
	questionsTemplatesFlag string
	questionsWorkflowFlag  string
)

var questionsCmd = &cobra.Command{
	Use:   "questions [stage]",
	Short: "Preview template questions",
	Long: `Print the template questions and suggestions for a stage, or for
every stage when none is given.

Examples:
  proposalctl questions
  proposalctl questions proposal
  proposalctl questions cost --templates ./my-templates.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stage := ""
		if len(args) > 0 {
			stage = args[0]
		}
		return runQuestionsFn(questionsTemplatesFlag, types.WorkflowType(questionsWorkflowFlag), stage, cmd.OutOrStdout())
	},
}

func init() {
	questionsCmd.Flags().StringVar(&questionsTemplatesFlag, "templates", "", "YAML template file (default: built-in)")
	questionsCmd.Flags().StringVarP(&questionsWorkflowFlag, "workflow", "w", string(types.WorkflowProposal), "Workflow type")
	rootCmd.AddCommand(questionsCmd)
}

func runQuestionsFn(templatesPath string, wt types.WorkflowType, stage string, out io.Writer) error {
	gen, err := questiongen.LoadTemplates(templatesPath)
	if err != nil {
		return err
	}
	stages := gen.Stages(wt)
	if stage != "" {
		st, err := wf.ParseStage(stage)
		if err != nil {
			return err
		}
		stages = []wf.Stage{st}
	}
	if len(stages) == 0 {
		return fmt.Errorf("no templates for workflow %q", wt)
	}

	ctx := context.Background()
	for _, st := range stages {
		sc := wf.StageContext{WorkflowType: wt, Stage: st}
		qs, err := gen.GenerateQuestions(ctx, wt, st, sc)
		if err != nil {
			return err
		}
		sugg, err := gen.SuggestAnswers(ctx, qs, sc)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, headerBox(fmt.Sprintf("%s / %s", wt, st)))
		for i, q := range qs {
			marker := " "
			if q.Required {
				marker = "*"
			}
			fmt.Fprintf(out, "%2d.%s %s %s\n", i+1, marker, styleBold.Render(q.Text), styleMuted.Render("["+q.ID+", "+string(q.Type)+"]"))
			if len(q.Options) > 0 {
				fmt.Fprintf(out, "     options: %s\n", strings.Join(q.Options, ", "))
			}
			if v, ok := sugg[q.ID]; ok {
				fmt.Fprintf(out, "     %s %v\n", styleAccent.Render("suggested:"), v)
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}
