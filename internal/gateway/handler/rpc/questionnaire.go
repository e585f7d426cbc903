package rpc

import (
	"context"
	"encoding/json"
	"strings"

	"connectrpc.com/connect"

	v1 "proposalflow/internal/api/proposalflowv1"
	questionnairesvc "proposalflow/internal/gateway/service/questionnaire"
	qn "proposalflow/internal/questionnaire"
	"proposalflow/internal/types"
)

var _ v1.QuestionnaireServiceHandler = (*QuestionnaireHandler)(nil)

type QuestionnaireHandler struct {
	svc *questionnairesvc.Service
}

func NewQuestionnaireHandler(svc *questionnairesvc.Service) *QuestionnaireHandler {
	return &QuestionnaireHandler{svc: svc}
}

func toSessionResponse(snap qn.Snapshot, err error) (*connect.Response[v1.SessionResponse], error) {
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&v1.SessionResponse{Session: snap}), nil
}

func sessionID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", invalidArgument("session_id is required")
	}
	return id, nil
}

// decodeAnswer turns a raw JSON answer into the loose value NormalizeAnswer accepts.
func decodeAnswer(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, invalidArgument("answer is not valid JSON")
	}
	return v, nil
}

func (h *QuestionnaireHandler) StartSession(ctx context.Context, req *connect.Request[v1.StartSessionRequest]) (*connect.Response[v1.SessionResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, invalidArgument("project_id is required")
	}
	stage, err := parseStage(req.Msg.Stage)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(h.svc.Start(ctx, projectID, req.Msg.WorkflowType, stage))
}

func (h *QuestionnaireHandler) GetSession(_ context.Context, req *connect.Request[v1.SessionRequest]) (*connect.Response[v1.SessionResponse], error) {
	id, err := sessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(h.svc.Get(id))
}

func (h *QuestionnaireHandler) ReloadSession(ctx context.Context, req *connect.Request[v1.SessionRequest]) (*connect.Response[v1.SessionResponse], error) {
	id, err := sessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(h.svc.Reload(ctx, id))
}

func (h *QuestionnaireHandler) RecordAnswer(_ context.Context, req *connect.Request[v1.RecordAnswerRequest]) (*connect.Response[v1.SessionResponse], error) {
	id, err := sessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	questionID := strings.TrimSpace(req.Msg.QuestionID)
	if questionID == "" {
		return nil, invalidArgument("question_id is required")
	}
	answer, err := decodeAnswer(req.Msg.Answer)
	if err != nil {
		return nil, err
	}
	source := req.Msg.Source
	if source == "" {
		source = qn.SourceUser
	}
	return toSessionResponse(h.svc.RecordAnswer(id, questionID, answer, source))
}

func (h *QuestionnaireHandler) Answer(_ context.Context, req *connect.Request[v1.AnswerRequest]) (*connect.Response[v1.SessionResponse], error) {
	id, err := sessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	answer, err := decodeAnswer(req.Msg.Answer)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(h.svc.Answer(id, answer))
}

func (h *QuestionnaireHandler) AcceptSuggestion(_ context.Context, req *connect.Request[v1.SessionRequest]) (*connect.Response[v1.SessionResponse], error) {
	id, err := sessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(h.svc.AcceptSuggestion(id))
}

func (h *QuestionnaireHandler) Next(_ context.Context, req *connect.Request[v1.SessionRequest]) (*connect.Response[v1.SessionResponse], error) {
	id, err := sessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(h.svc.Next(id))
}

func (h *QuestionnaireHandler) Previous(_ context.Context, req *connect.Request[v1.SessionRequest]) (*connect.Response[v1.SessionResponse], error) {
	id, err := sessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(h.svc.Previous(id))
}

func (h *QuestionnaireHandler) GoTo(_ context.Context, req *connect.Request[v1.GoToRequest]) (*connect.Response[v1.SessionResponse], error) {
	id, err := sessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(h.svc.GoTo(id, req.Msg.Index))
}

func (h *QuestionnaireHandler) Complete(ctx context.Context, req *connect.Request[v1.SessionRequest]) (*connect.Response[v1.SessionResponse], error) {
	id, err := sessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(h.svc.Complete(ctx, id))
}

func (h *QuestionnaireHandler) CloseSession(_ context.Context, req *connect.Request[v1.SessionRequest]) (*connect.Response[v1.CloseSessionResponse], error) {
	id, err := sessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Close(id); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&v1.CloseSessionResponse{Closed: true}), nil
}

func (h *QuestionnaireHandler) GetSaved(ctx context.Context, req *connect.Request[v1.GetSavedRequest]) (*connect.Response[v1.GetSavedResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, invalidArgument("project_id is required")
	}
	stage, err := parseStage(req.Msg.Stage)
	if err != nil {
		return nil, err
	}
	wt := req.Msg.WorkflowType
	if wt == "" {
		wt = types.WorkflowProposal
	}
	saved, err := h.svc.Saved(ctx, qn.Key{ProjectID: projectID, WorkflowType: wt, Stage: stage})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&v1.GetSavedResponse{Saved: saved}), nil
}

func (h *QuestionnaireHandler) ListSaved(ctx context.Context, req *connect.Request[v1.ListSavedRequest]) (*connect.Response[v1.ListSavedResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, invalidArgument("project_id is required")
	}
	keys, err := h.svc.ListSaved(ctx, projectID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if keys == nil {
		keys = []qn.Key{}
	}
	return connect.NewResponse(&v1.ListSavedResponse{Keys: keys}), nil
}
