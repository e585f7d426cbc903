package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// AnsweredBy is the provenance of an answer.
type AnsweredBy string

const (
	AnsweredByUser AnsweredBy = "user"
	AnsweredByAI   AnsweredBy = "ai"
)

// QuestionnaireResponse holds the answer to one question. Answer uses the
// canonical shape for the question type: string (text, select, date),
// []string (multiselect), bool (boolean) or float64 (number).
type QuestionnaireResponse struct {
	QuestionID string     `json:"questionId"`
	Answer     any        `json:"answer"`
	AnsweredBy AnsweredBy `json:"answeredBy"`
	Confidence float64    `json:"confidence"`
	AnsweredAt time.Time  `json:"answeredAt,omitempty"`
}

// IsEmptyAnswer reports whether v counts as "no answer" for required checks.
// false and 0 are answers.
func IsEmptyAnswer(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []string:
		return len(x) == 0
	case []any:
		return len(x) == 0
	}
	return false
}

// NormalizeAnswer coerces loosely typed input (form values, decoded JSON)
// into the canonical shape for the question type. Empty input normalizes to nil.
func NormalizeAnswer(t QuestionType, v any) (any, error) {
	if IsEmptyAnswer(v) {
		return nil, nil
	}
	switch t {
	case QuestionText, QuestionSelect, QuestionDate:
		switch x := v.(type) {
		case string:
			return x, nil
		case time.Time:
			return x.Format("2006-01-02"), nil
		case fmt.Stringer:
			return x.String(), nil
		}
		return nil, fmt.Errorf("%s answer must be a string, got %T", t, v)
	case QuestionMultiSelect:
		switch x := v.(type) {
		case []string:
			return append([]string(nil), x...), nil
		case []any:
			out := make([]string, 0, len(x))
			for _, item := range x {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("multiselect answer items must be strings, got %T", item)
				}
				out = append(out, s)
			}
			return out, nil
		case string:
			return []string{x}, nil
		}
		return nil, fmt.Errorf("multiselect answer must be a list of strings, got %T", v)
	case QuestionBoolean:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(x))
			if err != nil {
				return nil, fmt.Errorf("boolean answer: %w", err)
			}
			return b, nil
		}
		return nil, fmt.Errorf("boolean answer must be a bool, got %T", v)
	case QuestionNumber:
		f, err := toNumber(v)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("number answer must be finite, got %v", v)
		}
		return f, nil
	}
	return nil, fmt.Errorf("unknown question type %q", t)
}

func toNumber(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("number answer: %w", err)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("number answer: %w", err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("number answer must be numeric, got %T", v)
}

// DecodeAnswer restores the canonical answer shape from its JSON encoding.
func DecodeAnswer(t QuestionType, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return NormalizeAnswer(t, v)
}

// DecodeResponses decodes a JSON response list, restoring answer shapes
// from the question types. Responses for unknown question ids are dropped.
func DecodeResponses(questions []Question, raw []byte) ([]QuestionnaireResponse, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var wire []struct {
		QuestionID string          `json:"questionId"`
		Answer     json.RawMessage `json:"answer"`
		AnsweredBy AnsweredBy      `json:"answeredBy"`
		Confidence float64         `json:"confidence"`
		AnsweredAt time.Time       `json:"answeredAt"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode responses: %w", err)
	}
	byID := make(map[string]QuestionType, len(questions))
	for _, q := range questions {
		byID[q.ID] = q.Type
	}
	out := make([]QuestionnaireResponse, 0, len(wire))
	for _, w := range wire {
		qt, ok := byID[w.QuestionID]
		if !ok {
			continue
		}
		answer, err := DecodeAnswer(qt, w.Answer)
		if err != nil {
			return nil, fmt.Errorf("decode answer %q: %w", w.QuestionID, err)
		}
		out = append(out, QuestionnaireResponse{
			QuestionID: w.QuestionID,
			Answer:     answer,
			AnsweredBy: w.AnsweredBy,
			Confidence: w.Confidence,
			AnsweredAt: w.AnsweredAt,
		})
	}
	return out, nil
}
