package questionnaire

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proposalflow/internal/gateway/repository/sqldb"
	qn "proposalflow/internal/questionnaire"
	"proposalflow/internal/types"
	"proposalflow/internal/workflow"
)

func ptr(f float64) *float64 { return &f }

func sampleSaved(stage workflow.Stage) qn.Saved {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	return qn.Saved{
		Key: qn.Key{ProjectID: "p1", WorkflowType: types.WorkflowProposal, Stage: stage},
		Questions: []types.Question{
			{ID: "t", Text: "text", Type: types.QuestionText, Validation: &types.Validation{Pattern: "^a"}},
			{ID: "s", Text: "select", Type: types.QuestionSelect, Options: []string{"x", "y"}},
			{ID: "m", Text: "multi", Type: types.QuestionMultiSelect, Options: []string{"x", "y"}},
			{ID: "b", Text: "bool", Type: types.QuestionBoolean, Required: true},
			{ID: "n", Text: "number", Type: types.QuestionNumber, Validation: &types.Validation{Min: ptr(0), Max: ptr(10)}},
			{ID: "d", Text: "date", Type: types.QuestionDate},
		},
		Responses: []types.QuestionnaireResponse{
			{QuestionID: "t", Answer: "abc", AnsweredBy: types.AnsweredByUser, Confidence: 1, AnsweredAt: at},
			{QuestionID: "s", Answer: "y", AnsweredBy: types.AnsweredByAI, Confidence: 0.8, AnsweredAt: at},
			{QuestionID: "m", Answer: []string{"x", "y"}, AnsweredBy: types.AnsweredByUser, Confidence: 1, AnsweredAt: at},
			{QuestionID: "b", Answer: false, AnsweredBy: types.AnsweredByUser, Confidence: 1, AnsweredAt: at},
			{QuestionID: "n", Answer: 7.5, AnsweredBy: types.AnsweredByAI, Confidence: 0.6, AnsweredAt: at},
			{QuestionID: "d", Answer: "2026-05-01", AnsweredBy: types.AnsweredByUser, Confidence: 1, AnsweredAt: at},
		},
		SavedAt: at,
	}
}

func answers(rs []types.QuestionnaireResponse) map[string]any {
	out := make(map[string]any, len(rs))
	for _, r := range rs {
		out[r.QuestionID] = r.Answer
	}
	return out
}

func openSQLite(t *testing.T) *sqldb.DB {
	t.Helper()
	db, err := sqldb.Open(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func storesUnderTest(t *testing.T) map[string]func() Store {
	dir := t.TempDir()
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"file":   func() Store { return NewFileStore(filepath.Join(dir, "questionnaires.json")) },
		"sqlite": func() Store { return NewSQLStore(openSQLite(t)) },
	}
}

func TestStoresRoundTripEveryQuestionType(t *testing.T) {
	for name, mk := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := mk()
			want := sampleSaved(workflow.StageCost)
			require.NoError(t, store.Save(ctx, want))

			got, err := store.Load(ctx, want.Key)
			require.NoError(t, err)
			assert.Equal(t, answers(want.Responses), answers(got.Responses))
			assert.Equal(t, want.Questions, got.Questions)
			assert.True(t, want.SavedAt.Equal(got.SavedAt))

			empty := sampleSaved(workflow.StageAnalysis)
			empty.Responses = nil
			require.NoError(t, store.Save(ctx, empty))
			got, err = store.Load(ctx, empty.Key)
			require.NoError(t, err)
			assert.Empty(t, got.Responses)

			keys, err := store.List(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, []qn.Key{empty.Key, want.Key}, keys)
		})
	}
}

func TestStoresLastWriteWinsAndNotFound(t *testing.T) {
	for name, mk := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := mk()
			first := sampleSaved(workflow.StageProposal)
			require.NoError(t, store.Save(ctx, first))

			second := sampleSaved(workflow.StageProposal)
			second.Responses = second.Responses[:1]
			second.Responses[0].Answer = "again"
			require.NoError(t, store.Save(ctx, second))

			got, err := store.Load(ctx, first.Key)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"t": "again"}, answers(got.Responses))

			_, err = store.Load(ctx, qn.Key{ProjectID: "nope", WorkflowType: types.WorkflowProposal, Stage: workflow.StageCost})
			assert.True(t, errors.Is(err, qn.ErrNotFound), "got %v", err)
		})
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.json")
	ctx := context.Background()
	want := sampleSaved(workflow.StageUpload)
	require.NoError(t, NewFileStore(path).Save(ctx, want))

	got, err := NewFileStore(path).Load(ctx, want.Key)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, answers(got.Responses)["m"])
	assert.Equal(t, false, answers(got.Responses)["b"])
}

func TestSaveRejectsInvalidKey(t *testing.T) {
	bad := sampleSaved(workflow.StageCost)
	bad.Key.ProjectID = " "
	for name, mk := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, mk().Save(context.Background(), bad))
		})
	}
}
