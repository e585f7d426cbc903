package questionnaire

import (
	"errors"
	"fmt"
)

var (
	ErrBusy            = errors.New("questionnaire: another operation is in progress")
	ErrUnknownQuestion = errors.New("questionnaire: unknown question")
	ErrInvalidState    = errors.New("questionnaire: operation not allowed in current state")
	ErrNoSuggestion    = errors.New("questionnaire: no suggestion for question")
	ErrNotFound        = errors.New("questionnaire: not found")
	ErrOutOfRange      = errors.New("questionnaire: question index out of range")
)

// Validation rule names reported in ValidationError.Rule.
const (
	RuleRequired = "required"
	RuleMin      = "min"
	RuleMax      = "max"
	RulePattern  = "pattern"
	RuleType     = "type"
)

// ValidationError is a per-question input error. The user corrects the
// answer; nothing else is affected.
type ValidationError struct {
	QuestionID string
	Rule       string
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %s: %s", e.QuestionID, e.Message)
}

// GenerationFailure wraps a failed question or suggestion generation call.
// Phase is "questions" or "suggestions".
type GenerationFailure struct {
	Phase string
	Err   error
}

const (
	PhaseQuestions   = "questions"
	PhaseSuggestions = "suggestions"
)

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Phase, e.Err)
}

func (e *GenerationFailure) Unwrap() error { return e.Err }

// PersistenceFailure wraps a failed save. In-memory answers are kept so the
// caller can retry completion.
type PersistenceFailure struct {
	Err error
}

func (e *PersistenceFailure) Error() string {
	return fmt.Sprintf("save questionnaire: %v", e.Err)
}

func (e *PersistenceFailure) Unwrap() error { return e.Err }

// IncompleteError is returned by Complete when required questions have no
// answer. FirstIndex points at the first of them.
type IncompleteError struct {
	Count      int
	FirstID    string
	FirstIndex int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%d required question(s) unanswered, first is %s", e.Count, e.FirstID)
}
