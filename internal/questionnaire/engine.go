package questionnaire

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"proposalflow/internal/types"
	"proposalflow/internal/workflow"
)

// Key identifies one persisted questionnaire.
type Key struct {
	ProjectID    string             `json:"projectId"`
	WorkflowType types.WorkflowType `json:"workflowType"`
	Stage        workflow.Stage     `json:"stage"`
}

func (k Key) Validate() error {
	if strings.TrimSpace(k.ProjectID) == "" {
		return fmt.Errorf("project_id is required")
	}
	if strings.TrimSpace(string(k.WorkflowType)) == "" {
		return fmt.Errorf("workflow_type is required")
	}
	if k.Stage.Index() < 0 {
		return fmt.Errorf("%w: %q", workflow.ErrUnknownStage, k.Stage)
	}
	return nil
}

func (k Key) String() string {
	return k.ProjectID + "/" + string(k.WorkflowType) + "/" + string(k.Stage)
}

// Saved is the unit written by Store.Save: the question set and the full
// response list, stored together.
type Saved struct {
	Key       Key                           `json:"key"`
	Questions []types.Question              `json:"questions"`
	Responses []types.QuestionnaireResponse `json:"responses"`
	SavedAt   time.Time                     `json:"savedAt"`
}

// Generator produces the question set for a (workflow type, stage) pair.
type Generator interface {
	GenerateQuestions(ctx context.Context, wt types.WorkflowType, stage workflow.Stage, sc workflow.StageContext) ([]types.Question, error)
}

// Suggester proposes answers keyed by question id. Suggestions are advisory.
type Suggester interface {
	SuggestAnswers(ctx context.Context, questions []types.Question, sc workflow.StageContext) (map[string]any, error)
}

// Store persists questionnaires. Save replaces any previous entry for the
// key as one write. Load returns ErrNotFound for unknown keys.
type Store interface {
	Save(ctx context.Context, saved Saved) error
	Load(ctx context.Context, key Key) (Saved, error)
}

// Confidence holds the scores attached to each answer provenance.
type Confidence struct {
	User     float64 `json:"user"`
	Accepted float64 `json:"accepted"`
	Backfill float64 `json:"backfill"`
}

func DefaultConfidence() Confidence {
	return Confidence{User: 1.0, Accepted: 0.8, Backfill: 0.6}
}

func (c Confidence) Validate() error {
	for name, v := range map[string]float64{"user": c.User, "accepted": c.Accepted, "backfill": c.Backfill} {
		if v < 0 || v > 1 {
			return fmt.Errorf("confidence %s must be within 0-1, got %g", name, v)
		}
	}
	return nil
}

const DefaultCallTimeout = 30 * time.Second

type Option func(*Engine)

func WithConfidence(c Confidence) Option {
	return func(e *Engine) { e.confidence = c }
}

// WithCallTimeout bounds every generation, suggestion and persistence call.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.callTimeout = d
		}
	}
}

// WithRevalidateOnComplete makes Complete run Validate on every stored
// answer, not only on the current question.
func WithRevalidateOnComplete(enabled bool) Option {
	return func(e *Engine) { e.revalidate = enabled }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine creates questionnaire sessions over injected collaborators.
type Engine struct {
	gen   Generator
	sugg  Suggester
	store Store

	confidence  Confidence
	callTimeout time.Duration
	revalidate  bool
	logger      *log.Logger
	now         func() time.Time
}

// New builds an engine. The suggester may be nil, in which case no
// suggestions are offered and nothing is back-filled.
func New(gen Generator, sugg Suggester, store Store, opts ...Option) (*Engine, error) {
	if gen == nil {
		return nil, fmt.Errorf("question generator is required")
	}
	if store == nil {
		return nil, fmt.Errorf("questionnaire store is required")
	}
	e := &Engine{
		gen:         gen,
		sugg:        sugg,
		store:       store,
		confidence:  DefaultConfidence(),
		callTimeout: DefaultCallTimeout,
		logger:      log.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.confidence.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) Confidence() Confidence { return e.confidence }

// LoadSaved returns the persisted questionnaire for key.
func (e *Engine) LoadSaved(ctx context.Context, key Key) (Saved, error) {
	if err := key.Validate(); err != nil {
		return Saved{}, err
	}
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	return e.store.Load(callCtx, key)
}

func (e *Engine) generate(ctx context.Context, key Key, sc workflow.StageContext) ([]types.Question, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	qs, err := e.gen.GenerateQuestions(callCtx, key.WorkflowType, key.Stage, sc)
	if err != nil {
		return nil, &GenerationFailure{Phase: PhaseQuestions, Err: err}
	}
	if err := types.CheckQuestions(qs); err != nil {
		return nil, &GenerationFailure{Phase: PhaseQuestions, Err: err}
	}
	return types.CloneQuestions(qs), nil
}

// suggest returns normalized suggestions for known question ids. Values that
// do not fit the question type are dropped.
func (e *Engine) suggest(ctx context.Context, key Key, qs []types.Question, sc workflow.StageContext) (map[string]any, error) {
	out := map[string]any{}
	if e.sugg == nil || len(qs) == 0 {
		return out, nil
	}
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	raw, err := e.sugg.SuggestAnswers(callCtx, types.CloneQuestions(qs), sc)
	if err != nil {
		return nil, &GenerationFailure{Phase: PhaseSuggestions, Err: err}
	}
	for _, q := range qs {
		v, ok := raw[q.ID]
		if !ok {
			continue
		}
		norm, err := types.NormalizeAnswer(q.Type, v)
		if err != nil {
			e.logger.Printf("questionnaire: %s: dropping suggestion for %s: %v", key, q.ID, err)
			continue
		}
		if norm == nil {
			continue
		}
		out[q.ID] = norm
	}
	return out, nil
}

func (e *Engine) save(ctx context.Context, saved Saved) error {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	if err := e.store.Save(callCtx, saved); err != nil {
		return &PersistenceFailure{Err: err}
	}
	return nil
}

// Clone deep-copies the questions and any multiselect answers.
func (s Saved) Clone() Saved {
	out := s
	out.Questions = types.CloneQuestions(s.Questions)
	if s.Responses != nil {
		out.Responses = make([]types.QuestionnaireResponse, len(s.Responses))
		for i, r := range s.Responses {
			if ss, ok := r.Answer.([]string); ok {
				r.Answer = append([]string(nil), ss...)
			}
			out.Responses[i] = r
		}
	}
	return out
}

// Canonicalize restores canonical answer shapes after a JSON round-trip and
// drops responses whose question is not in the set.
func (s *Saved) Canonicalize() error {
	byID := make(map[string]types.QuestionType, len(s.Questions))
	for _, q := range s.Questions {
		byID[q.ID] = q.Type
	}
	out := s.Responses[:0]
	for _, r := range s.Responses {
		qt, ok := byID[r.QuestionID]
		if !ok {
			continue
		}
		answer, err := types.NormalizeAnswer(qt, r.Answer)
		if err != nil {
			return fmt.Errorf("response %s: %w", r.QuestionID, err)
		}
		r.Answer = answer
		out = append(out, r)
	}
	s.Responses = out
	return nil
}
