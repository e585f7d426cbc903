package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	qn "proposalflow/internal/questionnaire"
	"proposalflow/internal/types"
	wf "proposalflow/internal/workflow"
)

var ErrSessionNotFound = errors.New("questionnaire session not found")

// StageContexts resolves the upstream context a stage's questionnaire is
// generated from.
type StageContexts interface {
	StageContext(ctx context.Context, projectID string, stage wf.Stage) (wf.StageContext, error)
}

// KeyLister lists the questionnaires saved for a project.
type KeyLister interface {
	List(ctx context.Context, projectID string) ([]qn.Key, error)
}

// CompletionHook runs after a session's answers are saved.
type CompletionHook func(key qn.Key, responses []types.QuestionnaireResponse)

type Config struct {
	SessionTTL  time.Duration
	MaxSessions int
}

func DefaultConfig() Config {
	return Config{SessionTTL: 30 * time.Minute, MaxSessions: 1024}
}

// Service hosts live questionnaire sessions for the transports. Sessions
// idle longer than SessionTTL are evicted and closed.
type Service struct {
	engine   *qn.Engine
	contexts StageContexts
	keys     KeyLister
	log      *log.Logger

	mu       sync.Mutex
	sessions *expirable.LRU[string, *entry]
	hooks    []CompletionHook
}

type entry struct {
	session *qn.Session

	mu      sync.Mutex
	latest  qn.Snapshot
	gone    bool
	changed chan struct{}
}

// observe keeps the newest snapshot. Observers run outside the session lock,
// so an older snapshot may arrive after a newer one.
func (e *entry) observe(snap qn.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if snap.Seq <= e.latest.Seq {
		return
	}
	e.latest = snap
	close(e.changed)
	e.changed = make(chan struct{})
}

func (e *entry) retire() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return
	}
	e.gone = true
	close(e.changed)
	e.changed = make(chan struct{})
}

func New(engine *qn.Engine, contexts StageContexts, keys KeyLister, cfg Config) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if contexts == nil {
		return nil, fmt.Errorf("stage contexts are required")
	}
	def := DefaultConfig()
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = def.SessionTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = def.MaxSessions
	}
	s := &Service{
		engine:   engine,
		contexts: contexts,
		keys:     keys,
		log:      log.Default(),
	}
	s.sessions = expirable.NewLRU[string, *entry](cfg.MaxSessions, s.onEvict, cfg.SessionTTL)
	return s, nil
}

// OnComplete registers a hook for completed questionnaires.
func (s *Service) OnComplete(hook CompletionHook) {
	if hook == nil {
		return
	}
	s.mu.Lock()
	s.hooks = append(s.hooks, hook)
	s.mu.Unlock()
}

func (s *Service) onEvict(id string, e *entry) {
	if err := e.session.Close(); err != nil {
		s.log.Printf("questionnaire session %s: close on evict: %v", id, err)
	}
	e.retire()
}

// Start opens a session for the stage and generates its questions. A
// generation failure still registers the session (in the error state) so
// the client can Reload it; the error is returned alongside the snapshot.
func (s *Service) Start(ctx context.Context, projectID string, wt types.WorkflowType, stage wf.Stage) (qn.Snapshot, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return qn.Snapshot{}, fmt.Errorf("project_id is required")
	}
	if wt == "" {
		wt = types.WorkflowProposal
	}
	sc, err := s.contexts.StageContext(ctx, projectID, stage)
	if err != nil {
		return qn.Snapshot{}, err
	}
	key := qn.Key{ProjectID: projectID, WorkflowType: wt, Stage: stage}

	e := &entry{changed: make(chan struct{})}
	sess, err := s.engine.NewSession(key, sc,
		qn.WithObserver(e.observe),
		qn.WithOnComplete(func(resp []types.QuestionnaireResponse) { s.completed(key, resp) }),
	)
	if err != nil {
		return qn.Snapshot{}, err
	}
	e.session = sess
	e.latest = sess.Snapshot()
	s.sessions.Add(sess.ID(), e)
	s.log.Printf("questionnaire session %s started: %s", sess.ID(), key)

	err = sess.Load(ctx)
	return sess.Snapshot(), err
}

func (s *Service) completed(key qn.Key, resp []types.QuestionnaireResponse) {
	s.log.Printf("questionnaire completed: %s (%d answers)", key, len(resp))
	s.mu.Lock()
	hooks := append([]CompletionHook(nil), s.hooks...)
	s.mu.Unlock()
	for _, h := range hooks {
		h(key, resp)
	}
}

func (s *Service) lookup(id string) (*entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	e, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	// re-adding refreshes the idle deadline
	s.sessions.Add(id, e)
	return e, nil
}

// with runs op on the session and returns the resulting snapshot. The
// snapshot is returned even when op fails so transports can render it.
func (s *Service) with(id string, op func(*qn.Session) error) (qn.Snapshot, error) {
	e, err := s.lookup(id)
	if err != nil {
		return qn.Snapshot{}, err
	}
	err = op(e.session)
	return e.session.Snapshot(), err
}

func (s *Service) Get(id string) (qn.Snapshot, error) {
	return s.with(id, func(*qn.Session) error { return nil })
}

func (s *Service) Reload(ctx context.Context, id string) (qn.Snapshot, error) {
	return s.with(id, func(sess *qn.Session) error { return sess.Load(ctx) })
}

func (s *Service) RecordAnswer(id, questionID string, answer any, source qn.Source) (qn.Snapshot, error) {
	return s.with(id, func(sess *qn.Session) error { return sess.RecordAnswer(questionID, answer, source) })
}

func (s *Service) Answer(id string, answer any) (qn.Snapshot, error) {
	return s.with(id, func(sess *qn.Session) error { return sess.Answer(answer) })
}

func (s *Service) AcceptSuggestion(id string) (qn.Snapshot, error) {
	return s.with(id, func(sess *qn.Session) error { return sess.AcceptSuggestion() })
}

func (s *Service) Next(id string) (qn.Snapshot, error) {
	return s.with(id, func(sess *qn.Session) error { return sess.Next() })
}

func (s *Service) Previous(id string) (qn.Snapshot, error) {
	return s.with(id, func(sess *qn.Session) error { return sess.Previous() })
}

func (s *Service) GoTo(id string, index int) (qn.Snapshot, error) {
	return s.with(id, func(sess *qn.Session) error { return sess.GoTo(index) })
}

func (s *Service) Complete(ctx context.Context, id string) (qn.Snapshot, error) {
	return s.with(id, func(sess *qn.Session) error {
		_, err := sess.Complete(ctx)
		return err
	})
}

// Close discards the session and drops it from the registry.
func (s *Service) Close(id string) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	if err := e.session.Close(); err != nil {
		return err
	}
	s.sessions.Remove(strings.TrimSpace(id))
	e.retire()
	return nil
}

// Saved returns the persisted questionnaire for key.
func (s *Service) Saved(ctx context.Context, key qn.Key) (qn.Saved, error) {
	return s.engine.LoadSaved(ctx, key)
}

func (s *Service) ListSaved(ctx context.Context, projectID string) ([]qn.Key, error) {
	if s.keys == nil {
		return nil, fmt.Errorf("listing is not supported by the configured store")
	}
	return s.keys.List(ctx, projectID)
}

// Subscribe emits the session's snapshot now and after every change until
// ctx is canceled or the session is closed. Slow readers only miss
// intermediate snapshots; the newest one is always delivered.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan qn.Snapshot, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	out := make(chan qn.Snapshot, 8)

	go func() {
		defer close(out)
		for {
			e.mu.Lock()
			snap := e.latest
			gone := e.gone
			ch := e.changed
			e.mu.Unlock()

			pushSnapshot(out, snap)
			if gone || snap.Closed {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ch:
			}
		}
	}()

	return out, nil
}

func pushSnapshot(out chan qn.Snapshot, snap qn.Snapshot) {
	select {
	case out <- snap:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	select {
	case out <- snap:
	default:
	}
}
