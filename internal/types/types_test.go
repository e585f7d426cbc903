package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		name    string
		qt      QuestionType
		in      any
		want    any
		wantErr bool
	}{
		{name: "text", qt: QuestionText, in: "Acme", want: "Acme"},
		{name: "blank text is unanswered", qt: QuestionText, in: "   ", want: nil},
		{name: "number from string", qt: QuestionNumber, in: " 12.5 ", want: 12.5},
		{name: "number from int", qt: QuestionNumber, in: 3, want: float64(3)},
		{name: "number from json.Number", qt: QuestionNumber, in: json.Number("7"), want: float64(7)},
		{name: "zero is an answer", qt: QuestionNumber, in: float64(0), want: float64(0)},
		{name: "false is an answer", qt: QuestionBoolean, in: false, want: false},
		{name: "boolean from string", qt: QuestionBoolean, in: "true", want: true},
		{name: "multiselect from any list", qt: QuestionMultiSelect, in: []any{"a", "b"}, want: []string{"a", "b"}},
		{name: "multiselect from single string", qt: QuestionMultiSelect, in: "a", want: []string{"a"}},
		{name: "empty multiselect", qt: QuestionMultiSelect, in: []string{}, want: nil},
		{name: "bad number", qt: QuestionNumber, in: "ten", wantErr: true},
		{name: "NaN string", qt: QuestionNumber, in: "NaN", wantErr: true},
		{name: "Infinity string", qt: QuestionNumber, in: "Infinity", wantErr: true},
		{name: "NaN float", qt: QuestionNumber, in: math.NaN(), wantErr: true},
		{name: "infinite json.Number", qt: QuestionNumber, in: json.Number("1e400"), wantErr: true},
		{name: "bad boolean", qt: QuestionBoolean, in: 1, wantErr: true},
		{name: "mixed multiselect", qt: QuestionMultiSelect, in: []any{"a", 2}, wantErr: true},
		{name: "unknown type", qt: QuestionType("slider"), in: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAnswer(tt.qt, tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeResponsesRestoresShapes(t *testing.T) {
	questions := []Question{
		{ID: "budget", Text: "Budget?", Type: QuestionNumber},
		{ID: "channels", Text: "Channels?", Type: QuestionMultiSelect, Options: []string{"web", "mobile"}},
		{ID: "onsite", Text: "Onsite?", Type: QuestionBoolean},
	}
	raw := []byte(`[
		{"questionId":"budget","answer":50000,"answeredBy":"user","confidence":1},
		{"questionId":"channels","answer":["web","mobile"],"answeredBy":"ai","confidence":0.8},
		{"questionId":"onsite","answer":false,"answeredBy":"user","confidence":1},
		{"questionId":"gone","answer":"x","answeredBy":"user","confidence":1}
	]`)

	got, err := DecodeResponses(questions, raw)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, float64(50000), got[0].Answer)
	assert.Equal(t, []string{"web", "mobile"}, got[1].Answer)
	assert.Equal(t, AnsweredByAI, got[1].AnsweredBy)
	assert.Equal(t, false, got[2].Answer)
}

func TestCheckQuestions(t *testing.T) {
	ok := []Question{
		{ID: "a", Text: "A?", Type: QuestionText},
		{ID: "b", Text: "B?", Type: QuestionSelect, Options: []string{"x"}},
	}
	require.NoError(t, CheckQuestions(ok))

	cases := map[string][]Question{
		"missing id":         {{Text: "A?", Type: QuestionText}},
		"duplicate id":       {{ID: "a", Text: "A?", Type: QuestionText}, {ID: "a", Text: "B?", Type: QuestionText}},
		"missing text":       {{ID: "a", Type: QuestionText}},
		"unknown type":       {{ID: "a", Text: "A?", Type: "slider"}},
		"select w/o options": {{ID: "a", Text: "A?", Type: QuestionSelect}},
		"options on text":    {{ID: "a", Text: "A?", Type: QuestionText, Options: []string{"x"}}},
	}
	for name, qs := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, CheckQuestions(qs))
		})
	}
}

func TestCloneQuestionsIsDeep(t *testing.T) {
	lo := 1.0
	src := []Question{{ID: "a", Text: "A?", Type: QuestionSelect, Options: []string{"x"}, Validation: &Validation{Min: &lo}}}
	cp := CloneQuestions(src)
	cp[0].Options[0] = "y"
	cp[0].Validation.Message = "changed"

	assert.Equal(t, "x", src[0].Options[0])
	assert.Empty(t, src[0].Validation.Message)
	assert.Nil(t, CloneQuestions(nil))
}
