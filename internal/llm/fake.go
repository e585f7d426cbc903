package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// FakeClient returns deterministic JSON payloads per phase for offline runs
// and tests.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

type fakeQuestion struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
	Valid   *struct {
		Min *float64 `json:"min"`
	} `json:"validation"`
}

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	var obj any
	switch PhaseFrom(ctx) {
	case "questions":
		var in struct {
			Stage string `json:"stage"`
		}
		if err := remarshal(input, &in); err != nil {
			return nil, NewPermanentError(err)
		}
		obj = map[string]any{
			"questions": []any{
				map[string]any{
					"id":       in.Stage + "-goal",
					"text":     fmt.Sprintf("What is the main goal for the %s stage?", in.Stage),
					"type":     "text",
					"required": true,
				},
				map[string]any{
					"id":       in.Stage + "-priority",
					"text":     "How important is this stage?",
					"type":     "select",
					"required": false,
					"options":  []string{"low", "medium", "high"},
				},
				map[string]any{
					"id":         in.Stage + "-budget",
					"text":       "Budget in thousands",
					"type":       "number",
					"required":   false,
					"validation": map[string]any{"min": 0},
				},
			},
		}
	case "suggestions":
		var in struct {
			Questions []fakeQuestion `json:"questions"`
		}
		if err := remarshal(input, &in); err != nil {
			return nil, NewPermanentError(err)
		}
		answers := map[string]any{}
		for _, q := range in.Questions {
			switch q.Type {
			case "text":
				answers[q.ID] = "fake suggestion"
			case "select":
				if len(q.Options) > 0 {
					answers[q.ID] = q.Options[0]
				}
			case "multiselect":
				if len(q.Options) > 0 {
					answers[q.ID] = []string{q.Options[0]}
				}
			case "boolean":
				answers[q.ID] = true
			case "number":
				n := 1.0
				if q.Valid != nil && q.Valid.Min != nil && *q.Valid.Min > n {
					n = *q.Valid.Min
				}
				answers[q.ID] = n
			case "date":
				answers[q.ID] = "2030-01-01"
			}
		}
		obj = map[string]any{"answers": answers}
	default:
		obj = map[string]any{}
	}
	b, _ := json.Marshal(obj)
	return json.RawMessage(b), nil
}

func remarshal(in any, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
