package workflow

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"proposalflow/internal/cost"
	"proposalflow/internal/types"
)

// StageVersion stamps a stage result. Upstream is the version of the
// previous stage's result at the time this one was completed.
type StageVersion struct {
	Version     int64     `json:"version"`
	Upstream    int64     `json:"upstream,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

// Record is the persisted per-project workflow state.
type Record struct {
	ProjectID        string                  `json:"projectId"`
	WorkflowType     types.WorkflowType      `json:"workflowType"`
	Current          Stage                   `json:"current"`
	RFPFile          *types.RFPFile          `json:"rfpFile,omitempty"`
	RFPAnalysis      *types.RFPAnalysis      `json:"rfpAnalysis,omitempty"`
	MarketResearch   *types.MarketResearch   `json:"marketResearch,omitempty"`
	ProposalDocument *types.ProposalDocument `json:"proposalDocument,omitempty"`
	CostBreakdown    *cost.Breakdown         `json:"costBreakdown,omitempty"`
	Versions         map[Stage]StageVersion  `json:"versions,omitempty"`
	Seq              int64                   `json:"seq"`
	UpdatedAt        time.Time               `json:"updatedAt"`
}

// NewRecord returns an empty record positioned at the upload stage.
func NewRecord(projectID string, wt types.WorkflowType) Record {
	if wt == "" {
		wt = types.WorkflowProposal
	}
	return Record{
		ProjectID:    projectID,
		WorkflowType: wt,
		Current:      StageUpload,
		Versions:     map[Stage]StageVersion{},
	}
}

// Clone deep-copies the record, including the mutable cost breakdown.
func (r Record) Clone() (Record, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return Record{}, fmt.Errorf("encode workflow record: %w", err)
	}
	var out Record
	if err := json.Unmarshal(raw, &out); err != nil {
		return Record{}, fmt.Errorf("decode workflow record: %w", err)
	}
	return out, nil
}

// Completed reports whether the stage holds a result.
func (r *Record) Completed(s Stage) bool {
	switch s {
	case StageUpload:
		return r.RFPFile != nil
	case StageAnalysis:
		return r.RFPAnalysis != nil
	case StageResearch:
		return r.MarketResearch != nil
	case StageProposal:
		return r.ProposalDocument != nil
	case StageCost:
		return r.CostBreakdown != nil
	}
	return false
}

func (r *Record) clear(s Stage) {
	switch s {
	case StageUpload:
		r.RFPFile = nil
	case StageAnalysis:
		r.RFPAnalysis = nil
	case StageResearch:
		r.MarketResearch = nil
	case StageProposal:
		r.ProposalDocument = nil
	case StageCost:
		r.CostBreakdown = nil
	}
	delete(r.Versions, s)
}

// set stores result under s. The result type must match the stage.
func (r *Record) set(s Stage, result any) error {
	if isNilResult(result) {
		return fmt.Errorf("%w: stage %s: result is required", ErrInvalidResult, s)
	}
	switch s {
	case StageUpload:
		switch v := result.(type) {
		case *types.RFPFile:
			r.RFPFile = v
			return nil
		case types.RFPFile:
			r.RFPFile = &v
			return nil
		}
	case StageAnalysis:
		switch v := result.(type) {
		case *types.RFPAnalysis:
			r.RFPAnalysis = v
			return nil
		case types.RFPAnalysis:
			r.RFPAnalysis = &v
			return nil
		}
	case StageResearch:
		switch v := result.(type) {
		case *types.MarketResearch:
			r.MarketResearch = v
			return nil
		case types.MarketResearch:
			r.MarketResearch = &v
			return nil
		}
	case StageProposal:
		switch v := result.(type) {
		case *types.ProposalDocument:
			r.ProposalDocument = v
			return nil
		case types.ProposalDocument:
			r.ProposalDocument = &v
			return nil
		}
	case StageCost:
		if v, ok := result.(*cost.Breakdown); ok {
			r.CostBreakdown = v
			return nil
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStage, s)
	}
	return fmt.Errorf("%w: stage %s: unexpected result type %T", ErrInvalidResult, s, result)
}

func isNilResult(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithInvalidateDownstream clears every later stage's result when a stage is
// completed again. Without it, downstream results are kept and reported by Stale.
func WithInvalidateDownstream(enabled bool) Option {
	return func(s *Sequencer) { s.invalidateDownstream = enabled }
}

// WithClock overrides time.Now for completion stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) {
		if now != nil {
			s.now = now
		}
	}
}

// Sequencer owns the current-stage pointer and the per-stage results.
type Sequencer struct {
	mu     sync.RWMutex
	record Record

	invalidateDownstream bool
	now                  func() time.Time
}

func NewSequencer(rec Record, opts ...Option) *Sequencer {
	s := &Sequencer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.Restore(rec)
	return s
}

// CanProceedTo is a pure function of the prior stage's result.
func (s *Sequencer) CanProceedTo(stage Stage) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canProceedLocked(stage)
}

func (s *Sequencer) canProceedLocked(stage Stage) bool {
	if stage.Index() < 0 {
		return false
	}
	prev, ok := stage.Prev()
	if !ok {
		return true
	}
	return s.record.Completed(prev)
}

func (s *Sequencer) lockedError(stage Stage) error {
	if stage.Index() < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownStage, stage)
	}
	prev, _ := stage.Prev()
	return &StageLockedError{Stage: stage, Missing: prev}
}

// CompleteStage stores result under stage and advances the pointer to the
// following stage. Completing an already completed stage overwrites it.
func (s *Sequencer) CompleteStage(stage Stage, result any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.canProceedLocked(stage) {
		return s.lockedError(stage)
	}
	if err := s.record.set(stage, result); err != nil {
		return err
	}

	now := s.now()
	s.record.Seq++
	v := StageVersion{Version: s.record.Seq, CompletedAt: now}
	if prev, ok := stage.Prev(); ok {
		v.Upstream = s.record.Versions[prev].Version
	}
	s.record.Versions[stage] = v

	if s.invalidateDownstream {
		for _, later := range Stages[stage.Index()+1:] {
			s.record.clear(later)
		}
	}
	if next, ok := stage.Next(); ok {
		s.record.Current = next
	} else {
		s.record.Current = stage
	}
	s.record.UpdatedAt = now
	return nil
}

// SetCurrentStage moves the pointer. Locked stages are rejected with
// *StageLockedError.
func (s *Sequencer) SetCurrentStage(stage Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canProceedLocked(stage) {
		return s.lockedError(stage)
	}
	s.record.Current = stage
	s.record.UpdatedAt = s.now()
	return nil
}

func (s *Sequencer) Current() Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.Current
}

// Unlocked returns every stage CanProceedTo currently allows, in order.
func (s *Sequencer) Unlocked() []Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Stage, 0, len(Stages))
	for _, st := range Stages {
		if s.canProceedLocked(st) {
			out = append(out, st)
		}
	}
	return out
}

// Stale reports whether a completed stage was derived from an upstream
// result that has since been replaced (directly or further up the chain).
func (s *Sequencer) Stale(stage Stage) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.staleLocked(stage)
}

func (s *Sequencer) staleLocked(stage Stage) bool {
	if !s.record.Completed(stage) {
		return false
	}
	prev, ok := stage.Prev()
	if !ok {
		return false
	}
	if !s.record.Completed(prev) {
		return true
	}
	if s.record.Versions[stage].Upstream != s.record.Versions[prev].Version {
		return true
	}
	return s.staleLocked(prev)
}

// Snapshot returns a copy of the record for persistence.
func (s *Sequencer) Snapshot() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec := s.record
	rec.Versions = make(map[Stage]StageVersion, len(s.record.Versions))
	for k, v := range s.record.Versions {
		rec.Versions[k] = v
	}
	return rec
}

// ContextFor builds the typed context handed to a stage: only the upstream
// results the stage declares in Requires are populated.
func (s *Sequencer) ContextFor(stage Stage) (StageContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.canProceedLocked(stage) {
		return StageContext{}, s.lockedError(stage)
	}
	sc := StageContext{
		ProjectID:    s.record.ProjectID,
		WorkflowType: s.record.WorkflowType,
		Stage:        stage,
	}
	for _, req := range stage.Requires() {
		switch req {
		case StageUpload:
			sc.RFPFile = s.record.RFPFile
		case StageAnalysis:
			sc.Analysis = s.record.RFPAnalysis
		case StageResearch:
			sc.Research = s.record.MarketResearch
		case StageProposal:
			sc.Proposal = s.record.ProposalDocument
		}
	}
	return sc, nil
}

// Restore replaces the sequencer state with a persisted record.
func (s *Sequencer) Restore(rec Record) {
	if rec.Versions == nil {
		rec.Versions = map[Stage]StageVersion{}
	}
	if rec.Current.Index() < 0 {
		rec.Current = StageUpload
	}
	s.mu.Lock()
	s.record = rec
	s.mu.Unlock()
}

// Breakdown returns the cost-stage aggregate, or nil when the stage has not
// been completed.
func (s *Sequencer) Breakdown() *cost.Breakdown {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.CostBreakdown
}
