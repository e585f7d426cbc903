package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"proposalflow/internal/cost"
	artifactrepo "proposalflow/internal/gateway/repository/artifact"
	workflowrepo "proposalflow/internal/gateway/repository/workflow"
	"proposalflow/internal/types"
	wf "proposalflow/internal/workflow"
)

// DefaultContingencyRate seeds a breakdown created by the first cost edit.
const DefaultContingencyRate = 10.0

// View is a workflow record plus the derived stage flags clients render.
type View struct {
	Record   wf.Record  `json:"record"`
	Unlocked []wf.Stage `json:"unlocked"`
	Stale    []wf.Stage `json:"stale"`
}

type Service struct {
	store workflowrepo.Store
	docs  artifactrepo.Store
	opts  []wf.Option
	log   *log.Logger
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Service)

// WithSequencerOptions applies opts to every sequencer the service builds.
func WithSequencerOptions(opts ...wf.Option) Option {
	return func(s *Service) { s.opts = append(s.opts, opts...) }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
			s.opts = append(s.opts, wf.WithClock(now))
		}
	}
}

func New(store workflowrepo.Store, docs artifactrepo.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		docs:  docs,
		log:   log.Default(),
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start returns the project's workflow, creating it at the upload stage when
// none exists yet.
func (s *Service) Start(ctx context.Context, projectID string, wt types.WorkflowType) (View, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return View{}, fmt.Errorf("project_id is required")
	}
	unlock := s.lock(projectID)
	defer unlock()

	rec, err := s.store.Get(ctx, projectID)
	if err == nil {
		return s.view(wf.NewSequencer(rec, s.opts...)), nil
	}
	if !errors.Is(err, workflowrepo.ErrNotFound) {
		return View{}, err
	}
	rec = wf.NewRecord(projectID, wt)
	rec.UpdatedAt = s.now()
	if err := s.store.Put(ctx, rec); err != nil {
		return View{}, err
	}
	s.log.Printf("workflow started: project=%s type=%s", projectID, rec.WorkflowType)
	return s.view(wf.NewSequencer(rec, s.opts...)), nil
}

func (s *Service) Get(ctx context.Context, projectID string) (View, error) {
	rec, err := s.store.Get(ctx, strings.TrimSpace(projectID))
	if err != nil {
		return View{}, err
	}
	return s.view(wf.NewSequencer(rec, s.opts...)), nil
}

// UploadRFP stores the document and completes the upload stage with it.
func (s *Service) UploadRFP(ctx context.Context, projectID, name, contentType string, content []byte) (View, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return View{}, fmt.Errorf("name is required")
	}
	if len(content) == 0 {
		return View{}, fmt.Errorf("content is required")
	}
	if s.docs == nil {
		return View{}, fmt.Errorf("document store is not configured")
	}
	return s.update(ctx, projectID, func(seq *wf.Sequencer) error {
		if err := s.docs.Put(ctx, projectID, name, contentType, content); err != nil {
			return fmt.Errorf("store rfp: %w", err)
		}
		url, err := s.docs.GetURL(ctx, projectID, name)
		if err != nil {
			s.log.Printf("rfp url unavailable: project=%s name=%s err=%v", projectID, name, err)
		}
		return seq.CompleteStage(wf.StageUpload, &types.RFPFile{
			Name:        name,
			ContentType: contentType,
			Size:        int64(len(content)),
			ObjectKey:   projectID + "/" + name,
			URL:         url,
			UploadedAt:  s.now(),
		})
	})
}

// RFPDocument is a stored document as served to clients.
type RFPDocument struct {
	Name        string
	ContentType string
	Size        int64
	URL         string
	Content     []byte
}

// GetRFP returns a stored document. An empty name selects the document
// attached to the upload stage. Content is read from the store when asked
// for, when no download URL is available, or when the document is not the
// one recorded on the workflow.
func (s *Service) GetRFP(ctx context.Context, projectID, name string, includeContent bool) (RFPDocument, error) {
	projectID = strings.TrimSpace(projectID)
	if s.docs == nil {
		return RFPDocument{}, fmt.Errorf("document store is not configured")
	}
	rec, err := s.store.Get(ctx, projectID)
	if err != nil {
		return RFPDocument{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		if rec.RFPFile == nil {
			return RFPDocument{}, fmt.Errorf("%w: project %s has no uploaded rfp", artifactrepo.ErrNotFound, projectID)
		}
		name = rec.RFPFile.Name
	}

	doc := RFPDocument{Name: name}
	if f := rec.RFPFile; f != nil && f.Name == name {
		doc.ContentType = f.ContentType
		doc.Size = f.Size
	}
	url, err := s.docs.GetURL(ctx, projectID, name)
	if err != nil {
		return RFPDocument{}, err
	}
	doc.URL = url

	if includeContent || url == "" || doc.ContentType == "" {
		obj, err := s.docs.Get(ctx, projectID, name)
		if err != nil {
			return RFPDocument{}, err
		}
		doc.ContentType = obj.ContentType
		doc.Size = int64(len(obj.Content))
		if includeContent || url == "" {
			doc.Content = obj.Content
		}
	}
	return doc, nil
}

// ListRFPs returns the names of every document stored for the project,
// including ones replaced by a later upload.
func (s *Service) ListRFPs(ctx context.Context, projectID string) ([]string, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	if s.docs == nil {
		return nil, fmt.Errorf("document store is not configured")
	}
	names, err := s.docs.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// CompleteStage decodes raw into the stage's result type and completes it.
func (s *Service) CompleteStage(ctx context.Context, projectID string, stage wf.Stage, raw json.RawMessage) (View, error) {
	result, err := DecodeStageResult(stage, raw)
	if err != nil {
		return View{}, err
	}
	return s.update(ctx, projectID, func(seq *wf.Sequencer) error {
		return seq.CompleteStage(stage, result)
	})
}

func (s *Service) SetCurrentStage(ctx context.Context, projectID string, stage wf.Stage) (View, error) {
	return s.update(ctx, projectID, func(seq *wf.Sequencer) error {
		return seq.SetCurrentStage(stage)
	})
}

// StageContext returns the typed upstream context for stage.
func (s *Service) StageContext(ctx context.Context, projectID string, stage wf.Stage) (wf.StageContext, error) {
	rec, err := s.store.Get(ctx, strings.TrimSpace(projectID))
	if err != nil {
		return wf.StageContext{}, err
	}
	return wf.NewSequencer(rec, s.opts...).ContextFor(stage)
}

// Cost edits. The first edit on a project creates the breakdown and
// completes the cost stage, so the proposal stage must be done.

func (s *Service) AddWorkItem(ctx context.Context, projectID string, item cost.WorkItem) (View, error) {
	return s.editCost(ctx, projectID, func(b *cost.Breakdown) error {
		_, err := b.Add(item)
		return err
	})
}

func (s *Service) UpdateWorkItem(ctx context.Context, projectID string, item cost.WorkItem) (View, error) {
	return s.editCost(ctx, projectID, func(b *cost.Breakdown) error { return b.Update(item) })
}

func (s *Service) RemoveWorkItem(ctx context.Context, projectID, itemID string) (View, error) {
	return s.editCost(ctx, projectID, func(b *cost.Breakdown) error { return b.Remove(itemID) })
}

func (s *Service) SetContingencyRate(ctx context.Context, projectID string, rate float64) (View, error) {
	return s.editCost(ctx, projectID, func(b *cost.Breakdown) error { return b.SetContingencyRate(rate) })
}

func (s *Service) SetRateCard(ctx context.Context, projectID string, card map[string]float64) (View, error) {
	return s.editCost(ctx, projectID, func(b *cost.Breakdown) error { return b.SetRateCard(card) })
}

func (s *Service) editCost(ctx context.Context, projectID string, edit func(*cost.Breakdown) error) (View, error) {
	return s.update(ctx, projectID, func(seq *wf.Sequencer) error {
		b := seq.Breakdown()
		if b == nil {
			if !seq.CanProceedTo(wf.StageCost) {
				return &wf.StageLockedError{Stage: wf.StageCost, Missing: wf.StageProposal}
			}
			fresh, err := cost.New(DefaultContingencyRate)
			if err != nil {
				return err
			}
			if err := edit(fresh); err != nil {
				return err
			}
			return seq.CompleteStage(wf.StageCost, fresh)
		}
		if err := edit(b); err != nil {
			return err
		}
		// re-stamp so the edit shows up in the version history
		return seq.CompleteStage(wf.StageCost, b)
	})
}

// update runs fn against the project's sequencer and persists the result.
// The record is reloaded inside the project lock, so a failed fn leaves
// the stored record untouched.
func (s *Service) update(ctx context.Context, projectID string, fn func(*wf.Sequencer) error) (View, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return View{}, fmt.Errorf("project_id is required")
	}
	unlock := s.lock(projectID)
	defer unlock()

	rec, err := s.store.Get(ctx, projectID)
	if err != nil {
		return View{}, err
	}
	seq := wf.NewSequencer(rec, s.opts...)
	if err := fn(seq); err != nil {
		return View{}, err
	}
	if err := s.store.Put(ctx, seq.Snapshot()); err != nil {
		return View{}, fmt.Errorf("save workflow: %w", err)
	}
	return s.view(seq), nil
}

func (s *Service) view(seq *wf.Sequencer) View {
	v := View{
		Record:   seq.Snapshot(),
		Unlocked: seq.Unlocked(),
		Stale:    []wf.Stage{},
	}
	for _, st := range wf.Stages {
		if seq.Stale(st) {
			v.Stale = append(v.Stale, st)
		}
	}
	return v
}

func (s *Service) lock(projectID string) func() {
	s.mu.Lock()
	m, ok := s.locks[projectID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[projectID] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// DecodeStageResult decodes a JSON stage result into the stage's type.
func DecodeStageResult(stage wf.Stage, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: stage %s: result is required", wf.ErrInvalidResult, stage)
	}
	var target any
	switch stage {
	case wf.StageUpload:
		target = &types.RFPFile{}
	case wf.StageAnalysis:
		target = &types.RFPAnalysis{}
	case wf.StageResearch:
		target = &types.MarketResearch{}
	case wf.StageProposal:
		target = &types.ProposalDocument{}
	case wf.StageCost:
		target = &cost.Breakdown{}
	default:
		return nil, fmt.Errorf("%w: %q", wf.ErrUnknownStage, stage)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("%w: decode %s result: %v", wf.ErrInvalidResult, stage, err)
	}
	return target, nil
}
