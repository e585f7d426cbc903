package rpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	v1 "proposalflow/internal/api/proposalflowv1"
	workflowsvc "proposalflow/internal/gateway/service/workflow"
	wf "proposalflow/internal/workflow"
)

var _ v1.WorkflowServiceHandler = (*WorkflowHandler)(nil)

type WorkflowHandler struct {
	svc *workflowsvc.Service
}

func NewWorkflowHandler(svc *workflowsvc.Service) *WorkflowHandler {
	return &WorkflowHandler{svc: svc}
}

func toWorkflowResponse(v workflowsvc.View, err error) (*connect.Response[v1.WorkflowResponse], error) {
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&v1.WorkflowResponse{Workflow: v1.Workflow{
		Record:   v.Record,
		Unlocked: v.Unlocked,
		Stale:    v.Stale,
	}}), nil
}

func parseStage(raw wf.Stage) (wf.Stage, error) {
	st, err := wf.ParseStage(string(raw))
	if err != nil {
		return "", toConnectError(err)
	}
	return st, nil
}

func (h *WorkflowHandler) StartWorkflow(ctx context.Context, req *connect.Request[v1.StartWorkflowRequest]) (*connect.Response[v1.WorkflowResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, invalidArgument("project_id is required")
	}
	return toWorkflowResponse(h.svc.Start(ctx, projectID, req.Msg.WorkflowType))
}

func (h *WorkflowHandler) GetWorkflow(ctx context.Context, req *connect.Request[v1.GetWorkflowRequest]) (*connect.Response[v1.WorkflowResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, invalidArgument("project_id is required")
	}
	return toWorkflowResponse(h.svc.Get(ctx, projectID))
}

func (h *WorkflowHandler) UploadRFP(ctx context.Context, req *connect.Request[v1.UploadRFPRequest]) (*connect.Response[v1.WorkflowResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	name := strings.TrimSpace(req.Msg.Name)
	if projectID == "" || name == "" {
		return nil, invalidArgument("project_id and name are required")
	}
	if len(req.Msg.Content) == 0 {
		return nil, invalidArgument("content is required")
	}
	return toWorkflowResponse(h.svc.UploadRFP(ctx, projectID, name, req.Msg.ContentType, req.Msg.Content))
}

func (h *WorkflowHandler) GetRFP(ctx context.Context, req *connect.Request[v1.GetRFPRequest]) (*connect.Response[v1.GetRFPResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, invalidArgument("project_id is required")
	}
	doc, err := h.svc.GetRFP(ctx, projectID, req.Msg.Name, req.Msg.IncludeContent)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&v1.GetRFPResponse{
		Name:        doc.Name,
		ContentType: doc.ContentType,
		Size:        doc.Size,
		URL:         doc.URL,
		Content:     doc.Content,
	}), nil
}

func (h *WorkflowHandler) ListRFPs(ctx context.Context, req *connect.Request[v1.ListRFPsRequest]) (*connect.Response[v1.ListRFPsResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, invalidArgument("project_id is required")
	}
	names, err := h.svc.ListRFPs(ctx, projectID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&v1.ListRFPsResponse{Names: names}), nil
}

func (h *WorkflowHandler) CompleteStage(ctx context.Context, req *connect.Request[v1.CompleteStageRequest]) (*connect.Response[v1.WorkflowResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, invalidArgument("project_id is required")
	}
	stage, err := parseStage(req.Msg.Stage)
	if err != nil {
		return nil, err
	}
	return toWorkflowResponse(h.svc.CompleteStage(ctx, projectID, stage, req.Msg.Result))
}

func (h *WorkflowHandler) SetCurrentStage(ctx context.Context, req *connect.Request[v1.SetCurrentStageRequest]) (*connect.Response[v1.WorkflowResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, invalidArgument("project_id is required")
	}
	stage, err := parseStage(req.Msg.Stage)
	if err != nil {
		return nil, err
	}
	return toWorkflowResponse(h.svc.SetCurrentStage(ctx, projectID, stage))
}

func (h *WorkflowHandler) GetStageContext(ctx context.Context, req *connect.Request[v1.GetStageContextRequest]) (*connect.Response[v1.GetStageContextResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, invalidArgument("project_id is required")
	}
	stage, err := parseStage(req.Msg.Stage)
	if err != nil {
		return nil, err
	}
	sc, err := h.svc.StageContext(ctx, projectID, stage)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&v1.GetStageContextResponse{Context: sc}), nil
}

func (h *WorkflowHandler) AddWorkItem(ctx context.Context, req *connect.Request[v1.WorkItemRequest]) (*connect.Response[v1.WorkflowResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, invalidArgument("project_id is required")
	}
	return toWorkflowResponse(h.svc.AddWorkItem(ctx, projectID, req.Msg.Item))
}

func (h *WorkflowHandler) UpdateWorkItem(ctx context.Context, req *connect.Request[v1.WorkItemRequest]) (*connect.Response[v1.WorkflowResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" || strings.TrimSpace(req.Msg.Item.ID) == "" {
		return nil, invalidArgument("project_id and item.id are required")
	}
	return toWorkflowResponse(h.svc.UpdateWorkItem(ctx, projectID, req.Msg.Item))
}

func (h *WorkflowHandler) RemoveWorkItem(ctx context.Context, req *connect.Request[v1.RemoveWorkItemRequest]) (*connect.Response[v1.WorkflowResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	itemID := strings.TrimSpace(req.Msg.ItemID)
	if projectID == "" || itemID == "" {
		return nil, invalidArgument("project_id and item_id are required")
	}
	return toWorkflowResponse(h.svc.RemoveWorkItem(ctx, projectID, itemID))
}

func (h *WorkflowHandler) SetContingencyRate(ctx context.Context, req *connect.Request[v1.SetContingencyRateRequest]) (*connect.Response[v1.WorkflowResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, invalidArgument("project_id is required")
	}
	return toWorkflowResponse(h.svc.SetContingencyRate(ctx, projectID, req.Msg.Rate))
}

func (h *WorkflowHandler) SetRateCard(ctx context.Context, req *connect.Request[v1.SetRateCardRequest]) (*connect.Response[v1.WorkflowResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, invalidArgument("project_id is required")
	}
	return toWorkflowResponse(h.svc.SetRateCard(ctx, projectID, req.Msg.RateCard))
}
