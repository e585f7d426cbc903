package questionnaire

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"proposalflow/internal/types"
	"proposalflow/internal/workflow"
)

// State is the session lifecycle: loading -> active -> completing -> done | error.
type State string

const (
	StateLoading    State = "loading"
	StateActive     State = "active"
	StateCompleting State = "completing"
	StateDone       State = "done"
	StateError      State = "error"
)

// Source tags how an answer was recorded.
type Source string

const (
	SourceUser       Source = "user"
	SourceAIAccepted Source = "ai-accepted"
)

// Snapshot is a point-in-time copy of a session for callers and observers.
// Seq grows with every snapshot taken, so a larger Seq is newer.
type Snapshot struct {
	ID          string                        `json:"id"`
	Seq         uint64                        `json:"seq"`
	Key         Key                           `json:"key"`
	State       State                         `json:"state"`
	Busy        bool                          `json:"busy"`
	Index       int                           `json:"index"`
	Total       int                           `json:"total"`
	Questions   []types.Question              `json:"questions"`
	Responses   []types.QuestionnaireResponse `json:"responses"`
	Suggestions map[string]any                `json:"suggestions,omitempty"`
	Error       string                        `json:"error,omitempty"`
	Closed      bool                          `json:"closed,omitempty"`
}

// Current returns the question at Index, if any.
func (s Snapshot) Current() (types.Question, bool) {
	if s.Index < 0 || s.Index >= len(s.Questions) {
		return types.Question{}, false
	}
	return s.Questions[s.Index], true
}

// Observer receives a snapshot after every state or answer change. It is
// called without the session lock held.
type Observer func(Snapshot)

type SessionOption func(*Session)

func WithObserver(fn Observer) SessionOption {
	return func(s *Session) {
		if fn != nil {
			s.observers = append(s.observers, fn)
		}
	}
}

// WithOnComplete registers the completion callback. It fires exactly once,
// after the first successful save.
func WithOnComplete(fn func([]types.QuestionnaireResponse)) SessionOption {
	return func(s *Session) { s.onComplete = fn }
}

// Session is one questionnaire instance for a (project, workflow, stage) key.
// Only one asynchronous operation runs at a time; a second caller gets ErrBusy.
type Session struct {
	engine *Engine
	id     string
	key    Key
	sc     workflow.StageContext

	mu          sync.Mutex
	state       State
	busy        bool
	loaded      bool
	closed      bool
	fired       bool
	questions   []types.Question
	responses   *Responses
	suggestions map[string]any
	current     int
	err         error
	seq         uint64

	observers  []Observer
	onComplete func([]types.QuestionnaireResponse)
}

// NewSession returns a session in the loading state. Call Load to generate
// its questions.
func (e *Engine) NewSession(key Key, sc workflow.StageContext, opts ...SessionOption) (*Session, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		engine:      e,
		id:          uuid.NewString(),
		key:         key,
		sc:          sc,
		state:       StateLoading,
		responses:   NewResponses(nil),
		suggestions: map[string]any{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start creates a session and loads it.
func (e *Engine) Start(ctx context.Context, key Key, sc workflow.StageContext, opts ...SessionOption) (*Session, error) {
	s, err := e.NewSession(key, sc, opts...)
	if err != nil {
		return nil, err
	}
	return s, s.Load(ctx)
}

func (s *Session) ID() string { return s.id }
func (s *Session) Key() Key   { return s.key }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load generates the questions and then the suggestions. It may be called
// again from StateError when generation failed.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if err := s.beginLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.loaded || (s.state != StateLoading && s.state != StateError) {
		s.mu.Unlock()
		return fmt.Errorf("%w: load from %s", ErrInvalidState, s.state)
	}
	s.state = StateLoading
	s.err = nil
	s.busy = true
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.emit(snap)

	qs, err := s.engine.generate(ctx, s.key, s.sc)
	var sugg map[string]any
	if err == nil {
		sugg, err = s.engine.suggest(ctx, s.key, qs, s.sc)
	}

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.state = StateError
		s.err = err
		s.engine.logger.Printf("questionnaire: %s: load failed: %v", s.key, err)
	} else {
		s.questions = qs
		s.responses = NewResponses(qs)
		s.suggestions = sugg
		s.current = 0
		s.loaded = true
		s.state = StateActive
	}
	snap = s.snapshotLocked()
	s.mu.Unlock()
	s.emit(snap)
	return err
}

func (s *Session) beginLocked() error {
	if s.closed {
		return fmt.Errorf("%w: session closed", ErrInvalidState)
	}
	if s.busy {
		return ErrBusy
	}
	return nil
}

// editableLocked allows edits and navigation while active, and after a failed
// save so the caller can fix answers before retrying.
func (s *Session) editableLocked() error {
	if err := s.beginLocked(); err != nil {
		return err
	}
	if !s.loaded || (s.state != StateActive && s.state != StateError) {
		return fmt.Errorf("%w: %s", ErrInvalidState, s.state)
	}
	return nil
}

func (s *Session) indexOf(id string) int {
	for i, q := range s.questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}

// RecordAnswer inserts or overwrites the answer for questionID. An empty
// answer clears the response.
func (s *Session) RecordAnswer(questionID string, answer any, source Source) error {
	s.mu.Lock()
	if err := s.recordLocked(questionID, answer, source); err != nil {
		s.mu.Unlock()
		return err
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.emit(snap)
	return nil
}

func (s *Session) recordLocked(questionID string, answer any, source Source) error {
	if err := s.editableLocked(); err != nil {
		return err
	}
	i := s.indexOf(questionID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	q := s.questions[i]

	var by types.AnsweredBy
	var conf float64
	switch source {
	case SourceUser:
		by, conf = types.AnsweredByUser, s.engine.confidence.User
	case SourceAIAccepted:
		by, conf = types.AnsweredByAI, s.engine.confidence.Accepted
	default:
		return fmt.Errorf("unknown answer source %q", source)
	}

	norm, err := types.NormalizeAnswer(q.Type, answer)
	if err != nil {
		return &ValidationError{QuestionID: q.ID, Rule: RuleType, Message: err.Error()}
	}
	if norm == nil {
		s.responses.Delete(q.ID)
		return nil
	}
	return s.responses.Put(types.QuestionnaireResponse{
		QuestionID: q.ID,
		Answer:     norm,
		AnsweredBy: by,
		Confidence: conf,
		AnsweredAt: s.engine.now(),
	})
}

// Answer records a user answer for the current question.
func (s *Session) Answer(answer any) error {
	s.mu.Lock()
	if s.current >= len(s.questions) {
		s.mu.Unlock()
		return fmt.Errorf("%w: no current question", ErrInvalidState)
	}
	id := s.questions[s.current].ID
	s.mu.Unlock()
	return s.RecordAnswer(id, answer, SourceUser)
}

// AcceptSuggestion stores the suggestion for the current question as an
// accepted AI answer.
func (s *Session) AcceptSuggestion() error {
	s.mu.Lock()
	if s.current >= len(s.questions) {
		s.mu.Unlock()
		return fmt.Errorf("%w: no current question", ErrInvalidState)
	}
	id := s.questions[s.current].ID
	v, ok := s.suggestions[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuggestion, id)
	}
	return s.RecordAnswer(id, v, SourceAIAccepted)
}

func (s *Session) answerOf(id string) any {
	if resp, ok := s.responses.Get(id); ok {
		return resp.Answer
	}
	return nil
}

func (s *Session) validateAtLocked(i int) error {
	q := s.questions[i]
	return Validate(q, s.answerOf(q.ID))
}

// Next validates the current question and moves forward. On the last
// question it only validates.
func (s *Session) Next() error {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if len(s.questions) == 0 {
		s.mu.Unlock()
		return nil
	}
	if err := s.validateAtLocked(s.current); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.current+1 < len(s.questions) {
		s.current++
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.emit(snap)
	return nil
}

// Previous moves back one question. Answers are kept.
func (s *Session) Previous() error {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.current > 0 {
		s.current--
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.emit(snap)
	return nil
}

// GoTo jumps to question i. Moving forward validates every question passed
// over and stops at the first one that fails.
func (s *Session) GoTo(i int) error {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if i < 0 || i >= len(s.questions) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, i, len(s.questions))
	}
	var verr error
	for j := s.current; j < i; j++ {
		if err := s.validateAtLocked(j); err != nil {
			s.current = j
			verr = err
			break
		}
	}
	if verr == nil {
		s.current = i
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.emit(snap)
	return verr
}

// Complete validates, back-fills unanswered questions from suggestions and
// saves the full response set. It may be retried after a PersistenceFailure.
func (s *Session) Complete(ctx context.Context) ([]types.QuestionnaireResponse, error) {
	s.mu.Lock()
	if err := s.beginLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if !s.loaded || (s.state != StateActive && s.state != StateError) {
		st := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: complete from %s", ErrInvalidState, st)
	}

	if err := s.missingLocked(); err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.emit(snap)
		return nil, err
	}
	// Completing acts as the final "next" press on the current question.
	if len(s.questions) > 0 {
		if err := s.validateAtLocked(s.current); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	if s.engine.revalidate {
		for i := range s.questions {
			if !s.responses.Has(s.questions[i].ID) {
				continue
			}
			if err := s.validateAtLocked(i); err != nil {
				s.current = i
				snap := s.snapshotLocked()
				s.mu.Unlock()
				s.emit(snap)
				return nil, err
			}
		}
	}

	final := s.backfillLocked()
	saved := Saved{
		Key:       s.key,
		Questions: types.CloneQuestions(s.questions),
		Responses: final.List(),
		SavedAt:   s.engine.now(),
	}
	s.state = StateCompleting
	s.err = nil
	s.busy = true
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.emit(snap)

	err := s.engine.save(ctx, saved)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.state = StateError
		s.err = err
		s.engine.logger.Printf("questionnaire: %s: save failed: %v", s.key, err)
		snap = s.snapshotLocked()
		s.mu.Unlock()
		s.emit(snap)
		return nil, err
	}
	s.responses = final
	s.state = StateDone
	fire := !s.fired
	s.fired = true
	cb := s.onComplete
	snap = s.snapshotLocked()
	s.mu.Unlock()

	s.emit(snap)
	out := final.List()
	if fire && cb != nil {
		cb(final.List())
	}
	return out, nil
}

// missingLocked reports required questions without a response and moves the
// cursor to the first of them.
func (s *Session) missingLocked() error {
	var incomplete *IncompleteError
	for i, q := range s.questions {
		if !q.Required || s.responses.Has(q.ID) {
			continue
		}
		if incomplete == nil {
			incomplete = &IncompleteError{FirstID: q.ID, FirstIndex: i}
		}
		incomplete.Count++
	}
	if incomplete == nil {
		return nil
	}
	s.current = incomplete.FirstIndex
	return incomplete
}

// backfillLocked returns a copy of the responses with suggestions filled in
// for every unanswered question. The live responses are left untouched until
// the save succeeds.
func (s *Session) backfillLocked() *Responses {
	final := s.responses.Clone()
	now := s.engine.now()
	for _, q := range s.questions {
		if final.Has(q.ID) {
			continue
		}
		v, ok := s.suggestions[q.ID]
		if !ok || types.IsEmptyAnswer(v) {
			continue
		}
		_ = final.Put(types.QuestionnaireResponse{
			QuestionID: q.ID,
			Answer:     v,
			AnsweredBy: types.AnsweredByAI,
			Confidence: s.engine.confidence.Backfill,
			AnsweredAt: now,
		})
	}
	return final
}

// Close discards the session and its unsaved answers.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.state != StateDone {
		s.responses = NewResponses(s.questions)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.emit(snap)
	return nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	sugg := make(map[string]any, len(s.suggestions))
	for k, v := range s.suggestions {
		sugg[k] = v
	}
	s.seq++
	snap := Snapshot{
		ID:          s.id,
		Seq:         s.seq,
		Key:         s.key,
		State:       s.state,
		Busy:        s.busy,
		Index:       s.current,
		Total:       len(s.questions),
		Questions:   types.CloneQuestions(s.questions),
		Responses:   s.responses.List(),
		Suggestions: sugg,
		Closed:      s.closed,
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	return snap
}

func (s *Session) emit(snap Snapshot) {
	for _, fn := range s.observers {
		fn(snap)
	}
}
