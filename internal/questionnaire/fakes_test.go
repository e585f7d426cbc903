package questionnaire

import (
	"context"
	"errors"
	"sync"

	"proposalflow/internal/types"
	"proposalflow/internal/workflow"
)

type fakeGenerator struct {
	questions []types.Question
	err       error
	block     chan struct{}
	calls     int
	lastCtx   workflow.StageContext
}

func (f *fakeGenerator) GenerateQuestions(ctx context.Context, _ types.WorkflowType, _ workflow.Stage, sc workflow.StageContext) ([]types.Question, error) {
	f.calls++
	f.lastCtx = sc
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

type fakeSuggester struct {
	suggestions map[string]any
	err         error
}

func (f *fakeSuggester) SuggestAnswers(context.Context, []types.Question, workflow.StageContext) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.suggestions, nil
}

type fakeStore struct {
	mu    sync.Mutex
	saves []Saved
	err   error
}

func (f *fakeStore) Save(_ context.Context, saved Saved) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saves = append(f.saves, saved)
	return nil
}

func (f *fakeStore) Load(_ context.Context, key Key) (Saved, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.saves) - 1; i >= 0; i-- {
		if f.saves[i].Key == key {
			return f.saves[i], nil
		}
	}
	return Saved{}, ErrNotFound
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

var errBoom = errors.New("boom")

func ptr(f float64) *float64 { return &f }

func scenarioQuestions() []types.Question {
	return []types.Question{
		{ID: "q1", Text: "Is the budget approved?", Type: types.QuestionBoolean, Required: true},
		{ID: "q2", Text: "Anything else?", Type: types.QuestionText},
		{ID: "q3", Text: "Team size", Type: types.QuestionNumber, Required: true, Validation: &types.Validation{Min: ptr(0), Max: ptr(100)}},
	}
}

func testKey() Key {
	return Key{ProjectID: "p1", WorkflowType: types.WorkflowProposal, Stage: workflow.StageAnalysis}
}
