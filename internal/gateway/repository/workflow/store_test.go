package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"proposalflow/internal/cost"
	"proposalflow/internal/gateway/repository/sqldb"
	"proposalflow/internal/types"
	wf "proposalflow/internal/workflow"
)

func sampleRecord(t *testing.T) wf.Record {
	t.Helper()
	seq := wf.NewSequencer(wf.NewRecord("p1", types.WorkflowProposal))
	steps := []struct {
		stage  wf.Stage
		result any
	}{
		{wf.StageUpload, &types.RFPFile{Name: "rfp.pdf", ObjectKey: "p1/rfp.pdf"}},
		{wf.StageAnalysis, &types.RFPAnalysis{Summary: "s", Requirements: []types.Requirement{{ID: "r1", Title: "SSO", Mandatory: true}}}},
		{wf.StageResearch, &types.MarketResearch{Summary: "m"}},
		{wf.StageProposal, &types.ProposalDocument{Title: "T", Version: 1}},
	}
	for _, st := range steps {
		if err := seq.CompleteStage(st.stage, st.result); err != nil {
			t.Fatalf("CompleteStage(%s): %v", st.stage, err)
		}
	}
	b, err := cost.New(15)
	if err != nil {
		t.Fatalf("cost.New: %v", err)
	}
	if _, err := b.Add(cost.WorkItem{ID: "w1", Category: "dev", Task: "api", Hours: 10, HourlyRate: 100, Complexity: cost.ComplexityHigh}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := seq.CompleteStage(wf.StageCost, b); err != nil {
		t.Fatalf("CompleteStage(cost): %v", err)
	}
	return seq.Snapshot()
}

func TestWorkflowStoresRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db, err := sqldb.Open(context.Background(), "sqlite://:memory:")
	if err != nil {
		t.Fatalf("sqldb.Open: %v", err)
	}
	defer db.Close()

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(dir, "workflows.json")),
		"sqlite": NewSQLStore(db),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.Get(ctx, "p1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
			}
			want := sampleRecord(t)
			if err := store.Put(ctx, want); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, err := store.Get(ctx, "p1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Current != wf.StageCost || got.RFPAnalysis == nil || got.RFPAnalysis.Requirements[0].Title != "SSO" {
				t.Fatalf("record not restored: %+v", got)
			}
			if got.CostBreakdown == nil || got.CostBreakdown.Summary().Total != want.CostBreakdown.Summary().Total {
				t.Fatalf("cost breakdown not restored")
			}
			if got.Versions[wf.StageCost].Upstream != want.Versions[wf.StageProposal].Version {
				t.Fatalf("versions not restored: %+v", got.Versions)
			}

			// the stored copy is isolated from later edits to the caller's breakdown
			if _, err := want.CostBreakdown.Add(cost.WorkItem{Task: "extra", Hours: 1}); err != nil {
				t.Fatalf("Add: %v", err)
			}
			again, err := store.Get(ctx, "p1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if len(again.CostBreakdown.Items()) != 1 {
				t.Fatalf("store shares the breakdown with the caller")
			}
		})
	}
}
