package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proposalflow/internal/types"
	"proposalflow/internal/workflow"
)

func newEngine(t *testing.T, gen Generator, sugg Suggester, store Store, opts ...Option) *Engine {
	t.Helper()
	e, err := New(gen, sugg, store, opts...)
	require.NoError(t, err)
	return e
}

func byID(rs []types.QuestionnaireResponse) map[string]types.QuestionnaireResponse {
	out := make(map[string]types.QuestionnaireResponse, len(rs))
	for _, r := range rs {
		out[r.QuestionID] = r
	}
	return out
}

func TestHappyPathBlocksOnMaxThenCompletes(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{questions: scenarioQuestions()}
	e := newEngine(t, gen, nil, store)

	var fired [][]types.QuestionnaireResponse
	s, err := e.Start(context.Background(), testKey(), workflow.StageContext{}, WithOnComplete(func(rs []types.QuestionnaireResponse) {
		fired = append(fired, rs)
	}))
	require.NoError(t, err)
	require.Equal(t, StateActive, s.State())

	require.NoError(t, s.Answer(true))
	require.NoError(t, s.Next())
	require.NoError(t, s.Next()) // q2 is optional
	require.NoError(t, s.Answer(150))

	var verr *ValidationError
	require.True(t, errors.As(s.Next(), &verr))
	assert.Equal(t, RuleMax, verr.Rule)
	_, err = s.Complete(context.Background())
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 0, store.count())

	require.NoError(t, s.Answer(50))
	require.NoError(t, s.Next())
	out, err := s.Complete(context.Background())
	require.NoError(t, err)

	got := byID(out)
	require.Len(t, got, 2)
	assert.Equal(t, true, got["q1"].Answer)
	assert.Equal(t, 50.0, got["q3"].Answer)
	assert.NotContains(t, got, "q2")
	assert.Equal(t, StateDone, s.State())
	require.Equal(t, 1, store.count())
	require.Len(t, fired, 1)
	assert.Equal(t, out, fired[0])

	_, err = s.Complete(context.Background())
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Len(t, fired, 1)
}

func TestHappyPathBackfillsOptionalFromSuggestion(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{questions: scenarioQuestions()}
	sugg := &fakeSuggester{suggestions: map[string]any{"q2": "reuse the old portal", "q3": 12}}
	e := newEngine(t, gen, sugg, store)

	s, err := e.Start(context.Background(), testKey(), workflow.StageContext{})
	require.NoError(t, err)
	require.NoError(t, s.RecordAnswer("q1", true, SourceUser))
	require.NoError(t, s.GoTo(2))
	require.NoError(t, s.AcceptSuggestion())

	out, err := s.Complete(context.Background())
	require.NoError(t, err)
	got := byID(out)
	require.Len(t, got, 3)

	assert.Equal(t, types.AnsweredByUser, got["q1"].AnsweredBy)
	assert.Equal(t, 1.0, got["q1"].Confidence)
	assert.Equal(t, types.AnsweredByAI, got["q2"].AnsweredBy)
	assert.Equal(t, 0.6, got["q2"].Confidence)
	assert.Equal(t, types.AnsweredByAI, got["q3"].AnsweredBy)
	assert.Equal(t, 0.8, got["q3"].Confidence)
	assert.Equal(t, 12.0, got["q3"].Answer)

	saved, err := e.LoadSaved(context.Background(), testKey())
	require.NoError(t, err)
	assert.Equal(t, out, saved.Responses)
	assert.Len(t, saved.Questions, 3)
}

func TestCompleteRejectsMissingRequiredWithoutSaving(t *testing.T) {
	store := &fakeStore{}
	e := newEngine(t, &fakeGenerator{questions: scenarioQuestions()}, &fakeSuggester{suggestions: map[string]any{"q1": true}}, store)
	s, err := e.Start(context.Background(), testKey(), workflow.StageContext{})
	require.NoError(t, err)

	_, err = s.Complete(context.Background())
	var inc *IncompleteError
	require.True(t, errors.As(err, &inc), "got %v", err)
	assert.Equal(t, 2, inc.Count)
	assert.Equal(t, "q1", inc.FirstID)
	assert.Equal(t, 0, inc.FirstIndex)
	assert.Equal(t, 0, store.count())
	assert.Equal(t, StateActive, s.State())

	require.NoError(t, s.RecordAnswer("q1", true, SourceUser))
	_, err = s.Complete(context.Background())
	require.True(t, errors.As(err, &inc))
	assert.Equal(t, 1, inc.Count)
	assert.Equal(t, "q3", inc.FirstID)
	assert.Equal(t, 2, s.Snapshot().Index)
	assert.Equal(t, 0, store.count())
}

func TestPersistenceFailureKeepsAnswersForRetry(t *testing.T) {
	store := &fakeStore{err: errBoom}
	e := newEngine(t, &fakeGenerator{questions: scenarioQuestions()}, &fakeSuggester{suggestions: map[string]any{"q2": "hint"}}, store)
	s, err := e.Start(context.Background(), testKey(), workflow.StageContext{})
	require.NoError(t, err)
	require.NoError(t, s.RecordAnswer("q1", false, SourceUser))
	require.NoError(t, s.RecordAnswer("q3", 0, SourceUser))
	require.NoError(t, s.GoTo(2))

	_, err = s.Complete(context.Background())
	var pf *PersistenceFailure
	require.True(t, errors.As(err, &pf))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, StateError, s.State())

	snap := s.Snapshot()
	assert.Len(t, snap.Responses, 2, "back-filled answers must not leak into memory before a successful save")

	store.mu.Lock()
	store.err = nil
	store.mu.Unlock()
	out, err := s.Complete(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Equal(t, StateDone, s.State())
}

func TestRecordAnswerRejectsUnknownIdsAndLoadingState(t *testing.T) {
	gen := &fakeGenerator{questions: scenarioQuestions()}
	e := newEngine(t, gen, nil, &fakeStore{})
	s, err := e.NewSession(testKey(), workflow.StageContext{})
	require.NoError(t, err)
	assert.ErrorIs(t, s.RecordAnswer("q1", true, SourceUser), ErrInvalidState)

	require.NoError(t, s.Load(context.Background()))
	assert.ErrorIs(t, s.RecordAnswer("nope", "x", SourceUser), ErrUnknownQuestion)
	assert.Empty(t, s.Snapshot().Responses)

	var verr *ValidationError
	require.True(t, errors.As(s.RecordAnswer("q3", "lots", SourceUser), &verr))
	assert.Equal(t, RuleType, verr.Rule)

	require.NoError(t, s.RecordAnswer("q2", "first", SourceUser))
	require.NoError(t, s.RecordAnswer("q2", "second", SourceUser))
	rs := s.Snapshot().Responses
	require.Len(t, rs, 1)
	assert.Equal(t, "second", rs[0].Answer)

	require.NoError(t, s.RecordAnswer("q2", "  ", SourceUser))
	assert.Empty(t, s.Snapshot().Responses)

	assert.ErrorIs(t, s.AcceptSuggestion(), ErrNoSuggestion)
}

func TestRecordAnswerRejectsNonFiniteNumbers(t *testing.T) {
	store := &fakeStore{}
	e := newEngine(t, &fakeGenerator{questions: scenarioQuestions()}, nil, store)
	s, err := e.Start(context.Background(), testKey(), workflow.StageContext{})
	require.NoError(t, err)

	for _, v := range []any{"NaN", "Infinity", "-Inf", math.Inf(1), math.NaN()} {
		var verr *ValidationError
		require.True(t, errors.As(s.RecordAnswer("q3", v, SourceUser), &verr), "answer %v", v)
		assert.Equal(t, RuleType, verr.Rule)
	}
	assert.Empty(t, s.Snapshot().Responses)

	require.NoError(t, s.RecordAnswer("q1", true, SourceUser))
	require.NoError(t, s.GoTo(2))
	var verr *ValidationError
	require.True(t, errors.As(s.Answer("Infinity"), &verr))
	assert.Equal(t, RuleType, verr.Rule)

	require.NoError(t, s.Answer("12"))
	_, err = s.Complete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, store.count())
}

func TestSnapshotSeqIsMonotonic(t *testing.T) {
	var mu sync.Mutex
	var seqs []uint64
	e := newEngine(t, &fakeGenerator{questions: scenarioQuestions()}, nil, &fakeStore{})
	s, err := e.Start(context.Background(), testKey(), workflow.StageContext{}, WithObserver(func(snap Snapshot) {
		mu.Lock()
		seqs = append(seqs, snap.Seq)
		mu.Unlock()
	}))
	require.NoError(t, err)

	before := s.Snapshot().Seq
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.RecordAnswer("q2", fmt.Sprintf("note %d", i), SourceUser)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	seen := map[uint64]bool{}
	for _, seq := range seqs {
		assert.False(t, seen[seq], "duplicate seq %d", seq)
		seen[seq] = true
	}
	assert.Greater(t, s.Snapshot().Seq, before+8)
}

func TestGenerationFailureMovesToErrorAndCanReload(t *testing.T) {
	gen := &fakeGenerator{err: errBoom}
	e := newEngine(t, gen, nil, &fakeStore{})
	s, err := e.Start(context.Background(), testKey(), workflow.StageContext{})
	var gf *GenerationFailure
	require.True(t, errors.As(err, &gf))
	assert.Equal(t, PhaseQuestions, gf.Phase)
	assert.Equal(t, StateError, s.State())

	gen.err = nil
	gen.questions = scenarioQuestions()
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, StateActive, s.State())
	assert.Equal(t, 3, s.Snapshot().Total)
	assert.ErrorIs(t, s.Load(context.Background()), ErrInvalidState)
}

func TestSuggestionFailureIsGenerationFailure(t *testing.T) {
	e := newEngine(t, &fakeGenerator{questions: scenarioQuestions()}, &fakeSuggester{err: errBoom}, &fakeStore{})
	s, err := e.Start(context.Background(), testKey(), workflow.StageContext{})
	var gf *GenerationFailure
	require.True(t, errors.As(err, &gf))
	assert.Equal(t, PhaseSuggestions, gf.Phase)
	assert.Equal(t, StateError, s.State())
}

func TestInvalidGeneratedQuestionsAreRejected(t *testing.T) {
	dup := []types.Question{
		{ID: "a", Text: "a", Type: types.QuestionText},
		{ID: "a", Text: "b", Type: types.QuestionText},
	}
	e := newEngine(t, &fakeGenerator{questions: dup}, nil, &fakeStore{})
	_, err := e.Start(context.Background(), testKey(), workflow.StageContext{})
	var gf *GenerationFailure
	require.True(t, errors.As(err, &gf))
}

func TestCallTimeoutMovesToError(t *testing.T) {
	gen := &fakeGenerator{questions: scenarioQuestions(), block: make(chan struct{})}
	e := newEngine(t, gen, nil, &fakeStore{}, WithCallTimeout(20*time.Millisecond))
	s, err := e.Start(context.Background(), testKey(), workflow.StageContext{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateError, s.State())
}

func TestConcurrentOperationGetsErrBusy(t *testing.T) {
	gen := &fakeGenerator{questions: scenarioQuestions(), block: make(chan struct{})}
	var (
		mu      sync.Mutex
		loading = make(chan struct{}, 1)
	)
	e := newEngine(t, gen, nil, &fakeStore{})
	s, err := e.NewSession(testKey(), workflow.StageContext{}, WithObserver(func(snap Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if snap.Busy && snap.State == StateLoading {
			select {
			case loading <- struct{}{}:
			default:
			}
		}
	}))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background()) }()

	select {
	case <-loading:
	case <-time.After(time.Second):
		t.Fatalf("load never started")
	}
	assert.ErrorIs(t, s.Load(context.Background()), ErrBusy)
	_, err = s.Complete(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, s.Close(), ErrBusy)

	close(gen.block)
	require.NoError(t, <-done)
	assert.Equal(t, StateActive, s.State())
}

func TestNavigationKeepsAnswersAndGoToStopsAtInvalid(t *testing.T) {
	e := newEngine(t, &fakeGenerator{questions: scenarioQuestions()}, nil, &fakeStore{})
	s, err := e.Start(context.Background(), testKey(), workflow.StageContext{})
	require.NoError(t, err)

	var verr *ValidationError
	require.True(t, errors.As(s.Next(), &verr))
	assert.Equal(t, RuleRequired, verr.Rule)
	assert.Equal(t, 0, s.Snapshot().Index)

	require.True(t, errors.As(s.GoTo(2), &verr))
	assert.Equal(t, 0, s.Snapshot().Index)

	require.NoError(t, s.Answer(true))
	require.NoError(t, s.GoTo(2))
	require.NoError(t, s.Previous())
	require.NoError(t, s.Previous())
	require.NoError(t, s.Previous())
	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Index)
	assert.Len(t, snap.Responses, 1)
	assert.Error(t, s.GoTo(5))
}

func TestRevalidateOnCompleteCatchesStaleAnswers(t *testing.T) {
	store := &fakeStore{}
	qs := scenarioQuestions()
	e := newEngine(t, &fakeGenerator{questions: qs}, nil, store, WithRevalidateOnComplete(true))
	s, err := e.Start(context.Background(), testKey(), workflow.StageContext{})
	require.NoError(t, err)

	// q3 is answered out of band and never passes through Next.
	require.NoError(t, s.RecordAnswer("q3", 500, SourceUser))
	require.NoError(t, s.Answer(true))
	_, err = s.Complete(context.Background())
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "q3", verr.QuestionID)
	assert.Equal(t, 2, s.Snapshot().Index)
	assert.Equal(t, 0, store.count())

	plain := newEngine(t, &fakeGenerator{questions: qs}, nil, store)
	s2, err := plain.Start(context.Background(), testKey(), workflow.StageContext{})
	require.NoError(t, err)
	require.NoError(t, s2.RecordAnswer("q3", 500, SourceUser))
	require.NoError(t, s2.Answer(true))
	_, err = s2.Complete(context.Background())
	require.NoError(t, err, "stored answers are trusted unless revalidation is enabled")
}

func TestConfidenceIsConfigurable(t *testing.T) {
	conf := Confidence{User: 0.9, Accepted: 0.7, Backfill: 0.5}
	store := &fakeStore{}
	sugg := &fakeSuggester{suggestions: map[string]any{"q1": true, "q2": "x", "q3": 3}}
	e := newEngine(t, &fakeGenerator{questions: scenarioQuestions()}, sugg, store, WithConfidence(conf))
	s, err := e.Start(context.Background(), testKey(), workflow.StageContext{})
	require.NoError(t, err)
	require.NoError(t, s.AcceptSuggestion())
	require.NoError(t, s.RecordAnswer("q3", 4, SourceUser))
	require.NoError(t, s.GoTo(2))
	out, err := s.Complete(context.Background())
	require.NoError(t, err)
	got := byID(out)
	assert.Equal(t, 0.7, got["q1"].Confidence)
	assert.Equal(t, 0.5, got["q2"].Confidence)
	assert.Equal(t, 0.9, got["q3"].Confidence)

	_, err = New(&fakeGenerator{}, nil, store, WithConfidence(Confidence{User: 2}))
	assert.Error(t, err)
}

func TestCloseDiscardsAnswers(t *testing.T) {
	store := &fakeStore{}
	e := newEngine(t, &fakeGenerator{questions: scenarioQuestions()}, nil, store)
	s, err := e.Start(context.Background(), testKey(), workflow.StageContext{})
	require.NoError(t, err)
	require.NoError(t, s.Answer(true))
	require.NoError(t, s.Close())

	assert.Empty(t, s.Snapshot().Responses)
	assert.True(t, s.Snapshot().Closed)
	assert.ErrorIs(t, s.Answer(false), ErrInvalidState)
	_, err = s.Complete(context.Background())
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 0, store.count())
}

func TestGeneratorReceivesStageContext(t *testing.T) {
	gen := &fakeGenerator{questions: scenarioQuestions()}
	e := newEngine(t, gen, nil, &fakeStore{})
	sc := workflow.StageContext{ProjectID: "p1", Stage: workflow.StageAnalysis, RFPFile: &types.RFPFile{Name: "rfp.pdf"}}
	_, err := e.Start(context.Background(), testKey(), sc)
	require.NoError(t, err)
	assert.Equal(t, sc, gen.lastCtx)
}
