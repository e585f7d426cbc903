package questiongen

import (
	"context"
	"fmt"

	"proposalflow/internal/llm"
	"proposalflow/internal/llmtool"
	"proposalflow/internal/questionnaire"
	"proposalflow/internal/types"
	"proposalflow/internal/workflow"
)

const defaultMaxQuestions = 8

// LLMGenerator asks a language model for questions and suggestions.
type LLMGenerator struct {
	client       llm.Client
	maxQuestions int
}

func NewLLMGenerator(client llm.Client, maxQuestions int) *LLMGenerator {
	if maxQuestions <= 0 {
		maxQuestions = defaultMaxQuestions
	}
	return &LLMGenerator{client: client, maxQuestions: maxQuestions}
}

func (g *LLMGenerator) GenerateQuestions(ctx context.Context, wt types.WorkflowType, stage workflow.Stage, sc workflow.StageContext) ([]types.Question, error) {
	prompt, err := llmtool.QuestionsPrompt.Render()
	if err != nil {
		return nil, err
	}
	ctx = llm.WithPhase(ctx, questionnaire.PhaseQuestions)
	raw, err := g.client.GenerateJSON(ctx, prompt, llmtool.QuestionsInput{
		WorkflowType: wt,
		Stage:        stage,
		Context:      sc,
		MaxQuestions: g.maxQuestions,
	})
	if err != nil {
		return nil, err
	}
	qs, err := llmtool.ParseQuestions(raw)
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("%s returned no questions", g.client.Name())
	}
	if len(qs) > g.maxQuestions {
		qs = qs[:g.maxQuestions]
	}
	return qs, nil
}

func (g *LLMGenerator) SuggestAnswers(ctx context.Context, questions []types.Question, sc workflow.StageContext) (map[string]any, error) {
	prompt, err := llmtool.SuggestionsPrompt.Render()
	if err != nil {
		return nil, err
	}
	ctx = llm.WithPhase(ctx, questionnaire.PhaseSuggestions)
	raw, err := g.client.GenerateJSON(ctx, prompt, llmtool.SuggestionsInput{Questions: questions, Context: sc})
	if err != nil {
		return nil, err
	}
	return llmtool.ParseSuggestions(raw)
}
