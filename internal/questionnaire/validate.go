package questionnaire

import (
	"fmt"
	"regexp"

	"proposalflow/internal/types"
)

// Validate checks a candidate answer against the question's constraints.
// It has no side effects. Rules are applied in order: required, then min and
// max for numbers, then pattern for text. Other types only get the presence
// check.
func Validate(q types.Question, answer any) error {
	if types.IsEmptyAnswer(answer) {
		if q.Required {
			return &ValidationError{QuestionID: q.ID, Rule: RuleRequired, Message: "this question is required"}
		}
		return nil
	}

	v := q.Validation
	switch q.Type {
	case types.QuestionNumber:
		n, err := types.NormalizeAnswer(q.Type, answer)
		if err != nil {
			return &ValidationError{QuestionID: q.ID, Rule: RuleType, Message: "a number is required"}
		}
		f := n.(float64)
		if v == nil {
			return nil
		}
		if v.Min != nil && f < *v.Min {
			return &ValidationError{QuestionID: q.ID, Rule: RuleMin, Message: messageOr(v, fmt.Sprintf("must be at least %g", *v.Min))}
		}
		if v.Max != nil && f > *v.Max {
			return &ValidationError{QuestionID: q.ID, Rule: RuleMax, Message: messageOr(v, fmt.Sprintf("must be at most %g", *v.Max))}
		}
	case types.QuestionText:
		if v == nil || v.Pattern == "" {
			return nil
		}
		s, ok := answer.(string)
		if !ok {
			return &ValidationError{QuestionID: q.ID, Rule: RuleType, Message: "text is required"}
		}
		re, err := regexp.Compile(v.Pattern)
		if err != nil {
			return &ValidationError{QuestionID: q.ID, Rule: RulePattern, Message: fmt.Sprintf("invalid pattern %q", v.Pattern)}
		}
		if !re.MatchString(s) {
			return &ValidationError{QuestionID: q.ID, Rule: RulePattern, Message: messageOr(v, "invalid format")}
		}
	}
	return nil
}

func messageOr(v *types.Validation, fallback string) string {
	if v != nil && v.Message != "" {
		return v.Message
	}
	return fallback
}
