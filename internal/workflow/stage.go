package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// Stage is one step of the linear proposal pipeline.
type Stage string

const (
	StageUpload   Stage = "upload"
	StageAnalysis Stage = "analysis"
	StageResearch Stage = "research"
	StageProposal Stage = "proposal"
	StageCost     Stage = "cost"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageUpload, StageAnalysis, StageResearch, StageProposal, StageCost}

var (
	ErrUnknownStage  = errors.New("unknown stage")
	ErrInvalidResult = errors.New("invalid stage result")
)

func ParseStage(s string) (Stage, error) {
	st := Stage(strings.ToLower(strings.TrimSpace(s)))
	if st.Index() < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
	}
	return st, nil
}

func (s Stage) String() string { return string(s) }

// Index returns the position in Stages, or -1.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// Prev returns the stage whose result unlocks s.
func (s Stage) Prev() (Stage, bool) {
	i := s.Index()
	if i <= 0 {
		return "", false
	}
	return Stages[i-1], true
}

func (s Stage) Next() (Stage, bool) {
	i := s.Index()
	if i < 0 || i+1 >= len(Stages) {
		return "", false
	}
	return Stages[i+1], true
}

// Requires lists the upstream stage results a stage consumes as context.
func (s Stage) Requires() []Stage {
	switch s {
	case StageAnalysis:
		return []Stage{StageUpload}
	case StageResearch:
		return []Stage{StageUpload, StageAnalysis}
	case StageProposal:
		return []Stage{StageAnalysis, StageResearch}
	case StageCost:
		return []Stage{StageAnalysis, StageProposal}
	}
	return nil
}

// StageLockedError is returned when a stage's prerequisite result is missing.
type StageLockedError struct {
	Stage   Stage
	Missing Stage
}

func (e *StageLockedError) Error() string {
	return fmt.Sprintf("stage %s is locked: %s has not been completed", e.Stage, e.Missing)
}
