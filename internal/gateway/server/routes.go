package server

import (
	"encoding/json"
	"net/http"

	v1 "proposalflow/internal/api/proposalflowv1"
	"proposalflow/internal/gateway/handler/rpc"
	"proposalflow/internal/gateway/middleware"
)

func NewMux(
	workflowHandler *rpc.WorkflowHandler,
	questionnaireHandler *rpc.QuestionnaireHandler,
	allowedOrigins []string,
	cacheStats func() any,
) http.Handler {
	mux := http.NewServeMux()

	// RPC Handlers
	mux.Handle(v1.NewWorkflowServiceHandler(workflowHandler))
	mux.Handle(v1.NewQuestionnaireServiceHandler(questionnaireHandler))

	// Session stream
	mux.HandleFunc("/ws/questionnaire", questionnaireHandler.HandleSessionWS)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cacheStats != nil {
		mux.HandleFunc("/debug/cache", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(cacheStats())
		})
	}

	// Middleware
	return middleware.CORS(allowedOrigins)(mux)
}
