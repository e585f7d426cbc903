package types

import (
	"fmt"
	"strings"
)

// WorkflowType scopes question generation (together with the stage).
type WorkflowType string

const (
	WorkflowProposal WorkflowType = "proposal"
)

func (w WorkflowType) String() string { return string(w) }

// QuestionType selects both the answer shape and the validation rules.
type QuestionType string

const (
	QuestionText        QuestionType = "text"
	QuestionSelect      QuestionType = "select"
	QuestionMultiSelect QuestionType = "multiselect"
	QuestionBoolean     QuestionType = "boolean"
	QuestionNumber      QuestionType = "number"
	QuestionDate        QuestionType = "date"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionSelect, QuestionMultiSelect, QuestionBoolean, QuestionNumber, QuestionDate:
		return true
	}
	return false
}

// HasOptions reports whether questions of this type carry an option list.
func (t QuestionType) HasOptions() bool {
	return t == QuestionSelect || t == QuestionMultiSelect
}

// Validation is the optional constraint set attached to a question.
// Min/Max apply to numbers, Pattern to text.
type Validation struct {
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// Question is immutable once generated for a session.
type Question struct {
	ID         string       `json:"id" yaml:"id"`
	Text       string       `json:"text" yaml:"text"`
	Type       QuestionType `json:"type" yaml:"type"`
	Required   bool         `json:"required" yaml:"required"`
	Options    []string     `json:"options,omitempty" yaml:"options,omitempty"`
	Validation *Validation  `json:"validation,omitempty" yaml:"validation,omitempty"`
	Context    string       `json:"context,omitempty" yaml:"context,omitempty"`
}

// CheckQuestions verifies the generator contract: non-empty unique ids,
// known types, and options only (and always) on select types.
func CheckQuestions(qs []Question) error {
	seen := make(map[string]struct{}, len(qs))
	for i, q := range qs {
		id := strings.TrimSpace(q.ID)
		if id == "" {
			return fmt.Errorf("question %d: id is required", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("question %q: duplicate id", id)
		}
		seen[id] = struct{}{}
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %q: text is required", id)
		}
		if !q.Type.Valid() {
			return fmt.Errorf("question %q: unknown type %q", id, q.Type)
		}
		if q.Type.HasOptions() && len(q.Options) == 0 {
			return fmt.Errorf("question %q: %s requires options", id, q.Type)
		}
		if !q.Type.HasOptions() && len(q.Options) > 0 {
			return fmt.Errorf("question %q: options are only valid for select types", id)
		}
	}
	return nil
}

// CloneQuestions deep-copies a question list so callers cannot mutate a session's set.
func CloneQuestions(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		q.Options = append([]string(nil), q.Options...)
		if q.Validation != nil {
			v := *q.Validation
			q.Validation = &v
		}
		out[i] = q
	}
	return out
}
