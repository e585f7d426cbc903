package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"proposalflow/internal/gateway/config"
	"proposalflow/internal/gateway/handler/rpc"
	"proposalflow/internal/gateway/server"
	questionnairesvc "proposalflow/internal/gateway/service/questionnaire"
	workflowsvc "proposalflow/internal/gateway/service/workflow"
	"proposalflow/internal/llm"
	"proposalflow/internal/questiongen"
	qn "proposalflow/internal/questionnaire"
	"proposalflow/internal/types"
	wf "proposalflow/internal/workflow"
)

type App struct {
	server *server.Server
	stores *gatewayStores
	llm    llm.Client
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(context.Background(), cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	// Dependencies
	stores, err := initStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client, err := newLLMClient(ctx, cfg.LLM)
	if err != nil {
		_ = stores.close()
		return nil, err
	}
	templates, err := questiongen.LoadTemplates(cfg.Questionnaire.TemplatesPath)
	if err != nil {
		_ = stores.close()
		return nil, err
	}
	llmGen := questiongen.NewLLMGenerator(client, cfg.LLM.MaxQuestions)
	gen := questiongen.NewFallback(nil, llmGen, templates)
	sugg := questiongen.NewFallbackSuggester(nil, llmGen, templates)

	engine, err := qn.New(gen, sugg, stores.questionnaire,
		qn.WithCallTimeout(cfg.Questionnaire.CallTimeout),
		qn.WithRevalidateOnComplete(cfg.Questionnaire.RevalidateOnComplete),
		qn.WithConfidence(qn.Confidence{
			User:     cfg.Questionnaire.ConfidenceUser,
			Accepted: cfg.Questionnaire.ConfidenceAccepted,
			Backfill: cfg.Questionnaire.ConfidenceBackfill,
		}),
	)
	if err != nil {
		_ = stores.close()
		return nil, fmt.Errorf("failed to build questionnaire engine: %w", err)
	}
	conf := engine.Confidence()
	log.Printf("questionnaire engine: timeout=%s revalidate=%t confidence user=%g accepted=%g backfill=%g",
		cfg.Questionnaire.CallTimeout, cfg.Questionnaire.RevalidateOnComplete, conf.User, conf.Accepted, conf.Backfill)

	workflowSvc := workflowsvc.New(stores.workflow, stores.artifact,
		workflowsvc.WithSequencerOptions(wf.WithInvalidateDownstream(cfg.Workflow.InvalidateDownstream)),
	)
	questionnaireSvc, err := questionnairesvc.New(engine, workflowSvc, stores.questionnaire, questionnairesvc.Config{
		SessionTTL:  cfg.Questionnaire.SessionTTL,
		MaxSessions: cfg.Questionnaire.MaxSessions,
	})
	if err != nil {
		_ = stores.close()
		return nil, err
	}
	questionnaireSvc.OnComplete(func(key qn.Key, resp []types.QuestionnaireResponse) {
		log.Printf("questionnaire %s completed with %d responses", key, len(resp))
	})

	workflowHandler := rpc.NewWorkflowHandler(workflowSvc)
	questionnaireHandler := rpc.NewQuestionnaireHandler(questionnaireSvc)

	// Routing & Server
	mux := server.NewMux(workflowHandler, questionnaireHandler, cfg.AllowedOrigins, stores.cacheStats)
	srv := server.New(cfg.Port, mux)

	return &App{
		server: srv,
		stores: stores,
		llm:    client,
	}, nil
}

func newLLMClient(ctx context.Context, cfg config.LLMConfig) (llm.Client, error) {
	var inner llm.Client
	switch cfg.Provider {
	case "gemini":
		g, err := llm.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		inner = g
	case "fake":
		inner = llm.NewFakeClient()
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	log.Printf("llm client: %s rps=%g burst=%d", inner.Name(), cfg.RPS, cfg.Burst)
	return llm.Wrap(inner,
		llm.WithHooks(),
		llm.WithLogging(nil),
		llm.Retry(cfg.Retries+1, 500*time.Millisecond),
		llm.RateLimit(cfg.RPS, cfg.Burst),
	), nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if stats := a.stores.cacheStats(); stats != nil {
		log.Printf("artifact cache at shutdown: %+v", stats)
	}
	if cerr := a.llm.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if cerr := a.stores.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
