package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	v1 "proposalflow/internal/api/proposalflowv1"
	questionnairerepo "proposalflow/internal/gateway/repository/questionnaire"
	"proposalflow/internal/gateway/repository/sqldb"
	qn "proposalflow/internal/questionnaire"
	"proposalflow/internal/types"
	wf "proposalflow/internal/workflow"
)

var (
	showServerFlag    string
	showDatabaseFlag  string
	showStorePathFlag string
	showWorkflowFlag  string
)

var showCmd = &cobra.Command{
	Use:   "show <project-id> <stage>",
	Short: "Print a saved questionnaire",
	Long: `Print the saved questions and answers for a project stage.

The questionnaire is read from a running gateway (--server), a database
(--database-url), or the JSON file store (--store-path), in that order.

Examples:
  proposalctl show p1 proposal --server http://localhost:8081
  proposalctl show p1 cost --database-url sqlite://tmp/proposalflow.db
  proposalctl show p1 upload --store-path tmp`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stage, err := wf.ParseStage(args[1])
		if err != nil {
			return err
		}
		key := qn.Key{ProjectID: args[0], WorkflowType: types.WorkflowType(showWorkflowFlag), Stage: stage}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		loader, closeFn, err := chooseLoader(ctx)
		if err != nil {
			return err
		}
		defer closeFn()
		return runShowFn(ctx, loader, key, cmd.OutOrStdout())
	},
}

func init() {
	showCmd.Flags().StringVar(&showServerFlag, "server", "", "Gateway base URL")
	showCmd.Flags().StringVar(&showDatabaseFlag, "database-url", "", "postgres:// or sqlite:// database")
	showCmd.Flags().StringVar(&showStorePathFlag, "store-path", "tmp", "JSON store directory")
	showCmd.Flags().StringVarP(&showWorkflowFlag, "workflow", "w", string(types.WorkflowProposal), "Workflow type")
	rootCmd.AddCommand(showCmd)
}

type savedLoader func(ctx context.Context, key qn.Key) (qn.Saved, error)

func chooseLoader(ctx context.Context) (savedLoader, func(), error) {
	switch {
	case strings.TrimSpace(showServerFlag) != "":
		return rpcLoader(http.DefaultClient, showServerFlag), func() {}, nil
	case strings.TrimSpace(showDatabaseFlag) != "":
		db, err := sqldb.Open(ctx, showDatabaseFlag)
		if err != nil {
			return nil, nil, err
		}
		return questionnairerepo.NewSQLStore(db).Load, func() { _ = db.Close() }, nil
	default:
		store := questionnairerepo.NewFileStore(filepath.Join(showStorePathFlag, "questionnaires.json"))
		return store.Load, func() {}, nil
	}
}

func rpcLoader(httpClient connect.HTTPClient, baseURL string) savedLoader {
	client := v1.NewQuestionnaireServiceClient(httpClient, strings.TrimRight(baseURL, "/"))
	return func(ctx context.Context, key qn.Key) (qn.Saved, error) {
		res, err := client.GetSaved(ctx, connect.NewRequest(&v1.GetSavedRequest{
			ProjectID:    key.ProjectID,
			WorkflowType: key.WorkflowType,
			Stage:        key.Stage,
		}))
		if err != nil {
			return qn.Saved{}, err
		}
		return res.Msg.Saved, nil
	}
}

func runShowFn(ctx context.Context, load savedLoader, key qn.Key, out io.Writer) error {
	saved, err := load(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	answers := make(map[string]types.QuestionnaireResponse, len(saved.Responses))
	for _, r := range saved.Responses {
		answers[r.QuestionID] = r
	}

	fmt.Fprintln(out, headerBox("Questionnaire "+key.String()))
	if !saved.SavedAt.IsZero() {
		fmt.Fprintln(out, styleMuted.Render("saved "+saved.SavedAt.Format(time.RFC3339)))
	}
	for i, q := range saved.Questions {
		fmt.Fprintf(out, "%2d. %s\n", i+1, styleBold.Render(q.Text))
		r, ok := answers[q.ID]
		if !ok {
			fmt.Fprintf(out, "    %s\n", styleMuted.Render("(unanswered)"))
			continue
		}
		fmt.Fprintf(out, "    %s %s\n", formatAnswer(r.Answer),
			styleMuted.Render(fmt.Sprintf("[%s, %.2f]", r.AnsweredBy, r.Confidence)))
	}
	return nil
}

func formatAnswer(v any) string {
	switch x := v.(type) {
	case []string:
		return strings.Join(x, ", ")
	case float64:
		return fmt.Sprintf("%g", x)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
