package proposalflowv1

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// WorkflowServiceName is the fully-qualified name of the WorkflowService.
const WorkflowServiceName = "proposalflow.v1.WorkflowService"

// Procedure paths, usable as http.ServeMux patterns and in Spec.Procedure.
const (
	WorkflowServiceStartWorkflowProcedure      = "/proposalflow.v1.WorkflowService/StartWorkflow"
	WorkflowServiceGetWorkflowProcedure        = "/proposalflow.v1.WorkflowService/GetWorkflow"
	WorkflowServiceUploadRFPProcedure          = "/proposalflow.v1.WorkflowService/UploadRFP"
	WorkflowServiceCompleteStageProcedure      = "/proposalflow.v1.WorkflowService/CompleteStage"
	WorkflowServiceSetCurrentStageProcedure    = "/proposalflow.v1.WorkflowService/SetCurrentStage"
	WorkflowServiceGetStageContextProcedure    = "/proposalflow.v1.WorkflowService/GetStageContext"
	WorkflowServiceAddWorkItemProcedure        = "/proposalflow.v1.WorkflowService/AddWorkItem"
	WorkflowServiceUpdateWorkItemProcedure     = "/proposalflow.v1.WorkflowService/UpdateWorkItem"
	WorkflowServiceRemoveWorkItemProcedure     = "/proposalflow.v1.WorkflowService/RemoveWorkItem"
	WorkflowServiceSetContingencyRateProcedure = "/proposalflow.v1.WorkflowService/SetContingencyRate"
	WorkflowServiceSetRateCardProcedure        = "/proposalflow.v1.WorkflowService/SetRateCard"
	WorkflowServiceGetRFPProcedure             = "/proposalflow.v1.WorkflowService/GetRFP"
	WorkflowServiceListRFPsProcedure           = "/proposalflow.v1.WorkflowService/ListRFPs"
)

// WorkflowServiceHandler is implemented by the gateway.
type WorkflowServiceHandler interface {
	StartWorkflow(context.Context, *connect.Request[StartWorkflowRequest]) (*connect.Response[WorkflowResponse], error)
	GetWorkflow(context.Context, *connect.Request[GetWorkflowRequest]) (*connect.Response[WorkflowResponse], error)
	UploadRFP(context.Context, *connect.Request[UploadRFPRequest]) (*connect.Response[WorkflowResponse], error)
	CompleteStage(context.Context, *connect.Request[CompleteStageRequest]) (*connect.Response[WorkflowResponse], error)
	SetCurrentStage(context.Context, *connect.Request[SetCurrentStageRequest]) (*connect.Response[WorkflowResponse], error)
	GetStageContext(context.Context, *connect.Request[GetStageContextRequest]) (*connect.Response[GetStageContextResponse], error)
	AddWorkItem(context.Context, *connect.Request[WorkItemRequest]) (*connect.Response[WorkflowResponse], error)
	UpdateWorkItem(context.Context, *connect.Request[WorkItemRequest]) (*connect.Response[WorkflowResponse], error)
	RemoveWorkItem(context.Context, *connect.Request[RemoveWorkItemRequest]) (*connect.Response[WorkflowResponse], error)
	SetContingencyRate(context.Context, *connect.Request[SetContingencyRateRequest]) (*connect.Response[WorkflowResponse], error)
	SetRateCard(context.Context, *connect.Request[SetRateCardRequest]) (*connect.Response[WorkflowResponse], error)
	GetRFP(context.Context, *connect.Request[GetRFPRequest]) (*connect.Response[GetRFPResponse], error)
	ListRFPs(context.Context, *connect.Request[ListRFPsRequest]) (*connect.Response[ListRFPsResponse], error)
}

// NewWorkflowServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself. The JSON codec is always installed.
func NewWorkflowServiceHandler(svc WorkflowServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	workflowStartWorkflowHandler := connect.NewUnaryHandler(
		WorkflowServiceStartWorkflowProcedure,
		svc.StartWorkflow,
		opts...,
	)
	workflowGetWorkflowHandler := connect.NewUnaryHandler(
		WorkflowServiceGetWorkflowProcedure,
		svc.GetWorkflow,
		opts...,
	)
	workflowUploadRFPHandler := connect.NewUnaryHandler(
		WorkflowServiceUploadRFPProcedure,
		svc.UploadRFP,
		opts...,
	)
	workflowCompleteStageHandler := connect.NewUnaryHandler(
		WorkflowServiceCompleteStageProcedure,
		svc.CompleteStage,
		opts...,
	)
	workflowSetCurrentStageHandler := connect.NewUnaryHandler(
		WorkflowServiceSetCurrentStageProcedure,
		svc.SetCurrentStage,
		opts...,
	)
	workflowGetStageContextHandler := connect.NewUnaryHandler(
		WorkflowServiceGetStageContextProcedure,
		svc.GetStageContext,
		opts...,
	)
	workflowAddWorkItemHandler := connect.NewUnaryHandler(
		WorkflowServiceAddWorkItemProcedure,
		svc.AddWorkItem,
		opts...,
	)
	workflowUpdateWorkItemHandler := connect.NewUnaryHandler(
		WorkflowServiceUpdateWorkItemProcedure,
		svc.UpdateWorkItem,
		opts...,
	)
	workflowRemoveWorkItemHandler := connect.NewUnaryHandler(
		WorkflowServiceRemoveWorkItemProcedure,
		svc.RemoveWorkItem,
		opts...,
	)
	workflowSetContingencyRateHandler := connect.NewUnaryHandler(
		WorkflowServiceSetContingencyRateProcedure,
		svc.SetContingencyRate,
		opts...,
	)
	workflowSetRateCardHandler := connect.NewUnaryHandler(
		WorkflowServiceSetRateCardProcedure,
		svc.SetRateCard,
		opts...,
	)
	workflowGetRFPHandler := connect.NewUnaryHandler(
		WorkflowServiceGetRFPProcedure,
		svc.GetRFP,
		opts...,
	)
	workflowListRFPsHandler := connect.NewUnaryHandler(
		WorkflowServiceListRFPsProcedure,
		svc.ListRFPs,
		opts...,
	)
	return "/proposalflow.v1.WorkflowService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case WorkflowServiceStartWorkflowProcedure:
			workflowStartWorkflowHandler.ServeHTTP(w, r)
		case WorkflowServiceGetWorkflowProcedure:
			workflowGetWorkflowHandler.ServeHTTP(w, r)
		case WorkflowServiceUploadRFPProcedure:
			workflowUploadRFPHandler.ServeHTTP(w, r)
		case WorkflowServiceCompleteStageProcedure:
			workflowCompleteStageHandler.ServeHTTP(w, r)
		case WorkflowServiceSetCurrentStageProcedure:
			workflowSetCurrentStageHandler.ServeHTTP(w, r)
		case WorkflowServiceGetStageContextProcedure:
			workflowGetStageContextHandler.ServeHTTP(w, r)
		case WorkflowServiceAddWorkItemProcedure:
			workflowAddWorkItemHandler.ServeHTTP(w, r)
		case WorkflowServiceUpdateWorkItemProcedure:
			workflowUpdateWorkItemHandler.ServeHTTP(w, r)
		case WorkflowServiceRemoveWorkItemProcedure:
			workflowRemoveWorkItemHandler.ServeHTTP(w, r)
		case WorkflowServiceSetContingencyRateProcedure:
			workflowSetContingencyRateHandler.ServeHTTP(w, r)
		case WorkflowServiceSetRateCardProcedure:
			workflowSetRateCardHandler.ServeHTTP(w, r)
		case WorkflowServiceGetRFPProcedure:
			workflowGetRFPHandler.ServeHTTP(w, r)
		case WorkflowServiceListRFPsProcedure:
			workflowListRFPsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// WorkflowServiceClient is a client for the WorkflowService.
type WorkflowServiceClient interface {
	StartWorkflow(context.Context, *connect.Request[StartWorkflowRequest]) (*connect.Response[WorkflowResponse], error)
	GetWorkflow(context.Context, *connect.Request[GetWorkflowRequest]) (*connect.Response[WorkflowResponse], error)
	UploadRFP(context.Context, *connect.Request[UploadRFPRequest]) (*connect.Response[WorkflowResponse], error)
	CompleteStage(context.Context, *connect.Request[CompleteStageRequest]) (*connect.Response[WorkflowResponse], error)
	SetCurrentStage(context.Context, *connect.Request[SetCurrentStageRequest]) (*connect.Response[WorkflowResponse], error)
	GetStageContext(context.Context, *connect.Request[GetStageContextRequest]) (*connect.Response[GetStageContextResponse], error)
	AddWorkItem(context.Context, *connect.Request[WorkItemRequest]) (*connect.Response[WorkflowResponse], error)
	UpdateWorkItem(context.Context, *connect.Request[WorkItemRequest]) (*connect.Response[WorkflowResponse], error)
	RemoveWorkItem(context.Context, *connect.Request[RemoveWorkItemRequest]) (*connect.Response[WorkflowResponse], error)
	SetContingencyRate(context.Context, *connect.Request[SetContingencyRateRequest]) (*connect.Response[WorkflowResponse], error)
	SetRateCard(context.Context, *connect.Request[SetRateCardRequest]) (*connect.Response[WorkflowResponse], error)
	GetRFP(context.Context, *connect.Request[GetRFPRequest]) (*connect.Response[GetRFPResponse], error)
	ListRFPs(context.Context, *connect.Request[ListRFPsRequest]) (*connect.Response[ListRFPsResponse], error)
}

// NewWorkflowServiceClient constructs a client. baseURL is the gateway root,
// for example http://localhost:8081.
func NewWorkflowServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) WorkflowServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &workflowServiceClient{
		startWorkflow: connect.NewClient[StartWorkflowRequest, WorkflowResponse](
			httpClient,
			baseURL+WorkflowServiceStartWorkflowProcedure,
			opts...,
		),
		getWorkflow: connect.NewClient[GetWorkflowRequest, WorkflowResponse](
			httpClient,
			baseURL+WorkflowServiceGetWorkflowProcedure,
			opts...,
		),
		uploadRFP: connect.NewClient[UploadRFPRequest, WorkflowResponse](
			httpClient,
			baseURL+WorkflowServiceUploadRFPProcedure,
			opts...,
		),
		completeStage: connect.NewClient[CompleteStageRequest, WorkflowResponse](
			httpClient,
			baseURL+WorkflowServiceCompleteStageProcedure,
			opts...,
		),
		setCurrentStage: connect.NewClient[SetCurrentStageRequest, WorkflowResponse](
			httpClient,
			baseURL+WorkflowServiceSetCurrentStageProcedure,
			opts...,
		),
		getStageContext: connect.NewClient[GetStageContextRequest, GetStageContextResponse](
			httpClient,
			baseURL+WorkflowServiceGetStageContextProcedure,
			opts...,
		),
		addWorkItem: connect.NewClient[WorkItemRequest, WorkflowResponse](
			httpClient,
			baseURL+WorkflowServiceAddWorkItemProcedure,
			opts...,
		),
		updateWorkItem: connect.NewClient[WorkItemRequest, WorkflowResponse](
			httpClient,
			baseURL+WorkflowServiceUpdateWorkItemProcedure,
			opts...,
		),
		removeWorkItem: connect.NewClient[RemoveWorkItemRequest, WorkflowResponse](
			httpClient,
			baseURL+WorkflowServiceRemoveWorkItemProcedure,
			opts...,
		),
		setContingencyRate: connect.NewClient[SetContingencyRateRequest, WorkflowResponse](
			httpClient,
			baseURL+WorkflowServiceSetContingencyRateProcedure,
			opts...,
		),
		setRateCard: connect.NewClient[SetRateCardRequest, WorkflowResponse](
			httpClient,
			baseURL+WorkflowServiceSetRateCardProcedure,
			opts...,
		),
		getRFP: connect.NewClient[GetRFPRequest, GetRFPResponse](
			httpClient,
			baseURL+WorkflowServiceGetRFPProcedure,
			opts...,
		),
		listRFPs: connect.NewClient[ListRFPsRequest, ListRFPsResponse](
			httpClient,
			baseURL+WorkflowServiceListRFPsProcedure,
			opts...,
		),
	}
}

type workflowServiceClient struct {
	startWorkflow      *connect.Client[StartWorkflowRequest, WorkflowResponse]
	getWorkflow        *connect.Client[GetWorkflowRequest, WorkflowResponse]
	uploadRFP          *connect.Client[UploadRFPRequest, WorkflowResponse]
	completeStage      *connect.Client[CompleteStageRequest, WorkflowResponse]
	setCurrentStage    *connect.Client[SetCurrentStageRequest, WorkflowResponse]
	getStageContext    *connect.Client[GetStageContextRequest, GetStageContextResponse]
	addWorkItem        *connect.Client[WorkItemRequest, WorkflowResponse]
	updateWorkItem     *connect.Client[WorkItemRequest, WorkflowResponse]
	removeWorkItem     *connect.Client[RemoveWorkItemRequest, WorkflowResponse]
	setContingencyRate *connect.Client[SetContingencyRateRequest, WorkflowResponse]
	setRateCard        *connect.Client[SetRateCardRequest, WorkflowResponse]
	getRFP             *connect.Client[GetRFPRequest, GetRFPResponse]
	listRFPs           *connect.Client[ListRFPsRequest, ListRFPsResponse]
}

func (c *workflowServiceClient) StartWorkflow(ctx context.Context, req *connect.Request[StartWorkflowRequest]) (*connect.Response[WorkflowResponse], error) {
	return c.startWorkflow.CallUnary(ctx, req)
}

func (c *workflowServiceClient) GetWorkflow(ctx context.Context, req *connect.Request[GetWorkflowRequest]) (*connect.Response[WorkflowResponse], error) {
	return c.getWorkflow.CallUnary(ctx, req)
}

func (c *workflowServiceClient) UploadRFP(ctx context.Context, req *connect.Request[UploadRFPRequest]) (*connect.Response[WorkflowResponse], error) {
	return c.uploadRFP.CallUnary(ctx, req)
}

func (c *workflowServiceClient) CompleteStage(ctx context.Context, req *connect.Request[CompleteStageRequest]) (*connect.Response[WorkflowResponse], error) {
	return c.completeStage.CallUnary(ctx, req)
}

func (c *workflowServiceClient) SetCurrentStage(ctx context.Context, req *connect.Request[SetCurrentStageRequest]) (*connect.Response[WorkflowResponse], error) {
	return c.setCurrentStage.CallUnary(ctx, req)
}

func (c *workflowServiceClient) GetStageContext(ctx context.Context, req *connect.Request[GetStageContextRequest]) (*connect.Response[GetStageContextResponse], error) {
	return c.getStageContext.CallUnary(ctx, req)
}

func (c *workflowServiceClient) AddWorkItem(ctx context.Context, req *connect.Request[WorkItemRequest]) (*connect.Response[WorkflowResponse], error) {
	return c.addWorkItem.CallUnary(ctx, req)
}

func (c *workflowServiceClient) UpdateWorkItem(ctx context.Context, req *connect.Request[WorkItemRequest]) (*connect.Response[WorkflowResponse], error) {
	return c.updateWorkItem.CallUnary(ctx, req)
}

func (c *workflowServiceClient) RemoveWorkItem(ctx context.Context, req *connect.Request[RemoveWorkItemRequest]) (*connect.Response[WorkflowResponse], error) {
	return c.removeWorkItem.CallUnary(ctx, req)
}

func (c *workflowServiceClient) SetContingencyRate(ctx context.Context, req *connect.Request[SetContingencyRateRequest]) (*connect.Response[WorkflowResponse], error) {
	return c.setContingencyRate.CallUnary(ctx, req)
}

func (c *workflowServiceClient) SetRateCard(ctx context.Context, req *connect.Request[SetRateCardRequest]) (*connect.Response[WorkflowResponse], error) {
	return c.setRateCard.CallUnary(ctx, req)
}

func (c *workflowServiceClient) GetRFP(ctx context.Context, req *connect.Request[GetRFPRequest]) (*connect.Response[GetRFPResponse], error) {
	return c.getRFP.CallUnary(ctx, req)
}

func (c *workflowServiceClient) ListRFPs(ctx context.Context, req *connect.Request[ListRFPsRequest]) (*connect.Response[ListRFPsResponse], error) {
	return c.listRFPs.CallUnary(ctx, req)
}
