package questiongen

import (
	"context"
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"proposalflow/internal/types"
	"proposalflow/internal/workflow"
)

//go:embed templates/*.yaml
var builtin embed.FS

// StageTemplate is the question set and default suggestions for one stage.
type StageTemplate struct {
	Questions   []types.Question `yaml:"questions"`
	Suggestions map[string]any   `yaml:"suggestions"`
}

type templateFile struct {
	Workflows map[types.WorkflowType]map[workflow.Stage]StageTemplate `yaml:"workflows"`
}

// TemplateGenerator serves questions and suggestions from YAML templates.
// It implements both questionnaire.Generator and questionnaire.Suggester.
type TemplateGenerator struct {
	workflows map[types.WorkflowType]map[workflow.Stage]StageTemplate
}

// ParseTemplates decodes and checks a template document.
func ParseTemplates(data []byte) (*TemplateGenerator, error) {
	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse question templates: %w", err)
	}
	for wt, stages := range f.Workflows {
		for st, tpl := range stages {
			if st.Index() < 0 {
				return nil, fmt.Errorf("templates %s: %w: %q", wt, workflow.ErrUnknownStage, st)
			}
			if err := types.CheckQuestions(tpl.Questions); err != nil {
				return nil, fmt.Errorf("templates %s/%s: %w", wt, st, err)
			}
		}
	}
	return &TemplateGenerator{workflows: f.Workflows}, nil
}

// LoadTemplates reads templates from path, or the built-in set when path is empty.
func LoadTemplates(path string) (*TemplateGenerator, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = builtin.ReadFile("templates/proposal.yaml")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read question templates: %w", err)
	}
	return ParseTemplates(data)
}

func (g *TemplateGenerator) lookup(wt types.WorkflowType, stage workflow.Stage) (StageTemplate, bool) {
	stages, ok := g.workflows[wt]
	if !ok {
		return StageTemplate{}, false
	}
	tpl, ok := stages[stage]
	return tpl, ok
}

func (g *TemplateGenerator) GenerateQuestions(_ context.Context, wt types.WorkflowType, stage workflow.Stage, _ workflow.StageContext) ([]types.Question, error) {
	tpl, ok := g.lookup(wt, stage)
	if !ok {
		return nil, fmt.Errorf("no question template for %s/%s", wt, stage)
	}
	return types.CloneQuestions(tpl.Questions), nil
}

// SuggestAnswers returns the template defaults for the stage the context
// names. Unknown stages yield no suggestions.
func (g *TemplateGenerator) SuggestAnswers(_ context.Context, questions []types.Question, sc workflow.StageContext) (map[string]any, error) {
	out := map[string]any{}
	tpl, ok := g.lookup(sc.WorkflowType, sc.Stage)
	if !ok {
		return out, nil
	}
	for _, q := range questions {
		if v, ok := tpl.Suggestions[q.ID]; ok {
			out[q.ID] = v
		}
	}
	return out, nil
}

// Stages lists the stages that have a template for wt, in pipeline order.
func (g *TemplateGenerator) Stages(wt types.WorkflowType) []workflow.Stage {
	var out []workflow.Stage
	for _, st := range workflow.Stages {
		if _, ok := g.lookup(wt, st); ok {
			out = append(out, st)
		}
	}
	return out
}
