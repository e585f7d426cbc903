package questiongen

import (
	"context"
	"errors"
	"log"

	"proposalflow/internal/questionnaire"
	"proposalflow/internal/types"
	"proposalflow/internal/workflow"
)

// Fallback tries each generator in order and returns the first non-empty,
// well-formed question set.
type Fallback struct {
	gens   []questionnaire.Generator
	logger *log.Logger
}

func NewFallback(logger *log.Logger, gens ...questionnaire.Generator) *Fallback {
	if logger == nil {
		logger = log.Default()
	}
	return &Fallback{gens: gens, logger: logger}
}

func (f *Fallback) GenerateQuestions(ctx context.Context, wt types.WorkflowType, stage workflow.Stage, sc workflow.StageContext) ([]types.Question, error) {
	var errs []error
	for i, g := range f.gens {
		qs, err := g.GenerateQuestions(ctx, wt, stage, sc)
		if err == nil {
			err = types.CheckQuestions(qs)
		}
		if err == nil && len(qs) > 0 {
			return qs, nil
		}
		if err == nil {
			err = errors.New("empty question set")
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
		f.logger.Printf("questiongen: generator %d failed for %s/%s: %v", i, wt, stage, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("questiongen: no generators configured")
	}
	return nil, errors.Join(errs...)
}

// FallbackSuggester tries each suggester in order. A failing or empty
// suggester passes to the next; when all fail the joined error is returned.
type FallbackSuggester struct {
	suggs  []questionnaire.Suggester
	logger *log.Logger
}

func NewFallbackSuggester(logger *log.Logger, suggs ...questionnaire.Suggester) *FallbackSuggester {
	if logger == nil {
		logger = log.Default()
	}
	return &FallbackSuggester{suggs: suggs, logger: logger}
}

func (f *FallbackSuggester) SuggestAnswers(ctx context.Context, questions []types.Question, sc workflow.StageContext) (map[string]any, error) {
	var errs []error
	for i, s := range f.suggs {
		out, err := s.SuggestAnswers(ctx, questions, sc)
		if err == nil && len(out) > 0 {
			return out, nil
		}
		if err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
			f.logger.Printf("questiongen: suggester %d failed for %s: %v", i, sc.Stage, err)
		}
	}
	if len(errs) == len(f.suggs) && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return map[string]any{}, nil
}
