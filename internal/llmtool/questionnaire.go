package llmtool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"proposalflow/internal/types"
	"proposalflow/internal/workflow"
)

// QuestionsInput is the JSON input sent with the question prompt.
type QuestionsInput struct {
	WorkflowType types.WorkflowType    `json:"workflowType"`
	Stage        workflow.Stage        `json:"stage"`
	Context      workflow.StageContext `json:"context"`
	MaxQuestions int                   `json:"maxQuestions"`
}

// SuggestionsInput is the JSON input sent with the suggestion prompt.
type SuggestionsInput struct {
	Questions []types.Question      `json:"questions"`
	Context   workflow.StageContext `json:"context"`
}

var QuestionsPrompt = StructuredPromptSpec{
	Purpose:    "Write clarifying questions a proposal writer must answer before the given workflow stage can proceed.",
	Background: "The input holds the workflow type, the stage and the results of earlier stages (RFP file, analysis, market research, proposal draft).",
	OutputFields: []PromptField{
		{Name: "questions", Type: "[]object", Required: true, Description: "Ordered list of questions."},
		{Name: "questions[].id", Type: "string", Required: true, Description: "Short unique snake_case id."},
		{Name: "questions[].text", Type: "string", Required: true},
		{Name: "questions[].type", Type: "string", Required: true, Description: "One of text, select, multiselect, boolean, number, date."},
		{Name: "questions[].required", Type: "bool", Required: true},
		{Name: "questions[].options", Type: "[]string", Description: "Only for select and multiselect."},
		{Name: "questions[].validation", Type: "object", Description: "{min, max} for number, {pattern, message} for text."},
		{Name: "questions[].context", Type: "string", Description: "Why the question matters."},
	},
	Constraints: []string{
		"Return at most maxQuestions questions.",
		"Ids must be unique.",
		"Ask only about information missing from the input.",
	},
	OutputFormat: `JSON object {"questions": [...]} only. No markdown.`,
	Examples: []PromptExample{{
		InputJSON:  `{"workflowType":"proposal","stage":"cost","maxQuestions":2}`,
		OutputJSON: `{"questions":[{"id":"team_size","text":"How many engineers can you staff?","type":"number","required":true,"validation":{"min":1,"max":200}},{"id":"hosting","text":"Who hosts the system?","type":"select","required":false,"options":["client","vendor"]}]}`,
	}},
}

var SuggestionsPrompt = StructuredPromptSpec{
	Purpose:    "Suggest likely answers for each question using only facts from the context.",
	Background: "Suggestions are shown to the user, who may accept them. Unanswered questions may be filled from them.",
	OutputFields: []PromptField{
		{Name: "answers", Type: "object", Required: true, Description: "Map of question id to suggested answer."},
	},
	Rules: []string{
		"Answer shape follows the question type: string for text, select and date (YYYY-MM-DD), list of strings for multiselect, bool for boolean, number for number.",
		"select and multiselect answers must come from the question options.",
		"Omit a question when the context gives no basis for an answer.",
	},
	OutputFormat: `JSON object {"answers": {...}} only. No markdown.`,
}

// ParseQuestions accepts {"questions":[...]} or a bare array.
func ParseQuestions(raw json.RawMessage) ([]types.Question, error) {
	raw = trimFences(raw)
	var qs []types.Question
	if bytes.HasPrefix(raw, []byte("[")) {
		if err := json.Unmarshal(raw, &qs); err != nil {
			return nil, fmt.Errorf("llmtool: decode questions: %w", err)
		}
	} else {
		var env struct {
			Questions []types.Question `json:"questions"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("llmtool: decode questions: %w", err)
		}
		qs = env.Questions
	}
	for i := range qs {
		qs[i].ID = strings.TrimSpace(qs[i].ID)
		qs[i].Type = types.QuestionType(strings.ToLower(strings.TrimSpace(string(qs[i].Type))))
		if !qs[i].Type.HasOptions() {
			qs[i].Options = nil
		}
	}
	return qs, nil
}

// ParseSuggestions accepts {"answers":{...}} or a bare id->answer object.
func ParseSuggestions(raw json.RawMessage) (map[string]any, error) {
	raw = trimFences(raw)
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("llmtool: decode suggestions: %w", err)
	}
	if inner, ok := top["answers"]; ok && len(top) == 1 {
		raw = inner
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("llmtool: decode suggestions: %w", err)
	}
	return out, nil
}

// trimFences strips a ```json fence some models add despite the JSON mime type.
func trimFences(raw json.RawMessage) json.RawMessage {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return json.RawMessage(s)
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return json.RawMessage(strings.TrimSpace(s))
}
