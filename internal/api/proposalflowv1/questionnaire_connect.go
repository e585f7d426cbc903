package proposalflowv1

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// QuestionnaireServiceName is the fully-qualified name of the QuestionnaireService.
const QuestionnaireServiceName = "proposalflow.v1.QuestionnaireService"

// Procedure paths, usable as http.ServeMux patterns and in Spec.Procedure.
const (
	QuestionnaireServiceStartSessionProcedure     = "/proposalflow.v1.QuestionnaireService/StartSession"
	QuestionnaireServiceGetSessionProcedure       = "/proposalflow.v1.QuestionnaireService/GetSession"
	QuestionnaireServiceReloadSessionProcedure    = "/proposalflow.v1.QuestionnaireService/ReloadSession"
	QuestionnaireServiceRecordAnswerProcedure     = "/proposalflow.v1.QuestionnaireService/RecordAnswer"
	QuestionnaireServiceAnswerProcedure           = "/proposalflow.v1.QuestionnaireService/Answer"
	QuestionnaireServiceAcceptSuggestionProcedure = "/proposalflow.v1.QuestionnaireService/AcceptSuggestion"
	QuestionnaireServiceNextProcedure             = "/proposalflow.v1.QuestionnaireService/Next"
	QuestionnaireServicePreviousProcedure         = "/proposalflow.v1.QuestionnaireService/Previous"
	QuestionnaireServiceGoToProcedure             = "/proposalflow.v1.QuestionnaireService/GoTo"
	QuestionnaireServiceCompleteProcedure         = "/proposalflow.v1.QuestionnaireService/Complete"
	QuestionnaireServiceCloseSessionProcedure     = "/proposalflow.v1.QuestionnaireService/CloseSession"
	QuestionnaireServiceGetSavedProcedure         = "/proposalflow.v1.QuestionnaireService/GetSaved"
	QuestionnaireServiceListSavedProcedure        = "/proposalflow.v1.QuestionnaireService/ListSaved"
)

// QuestionnaireServiceHandler is implemented by the gateway.
type QuestionnaireServiceHandler interface {
	StartSession(context.Context, *connect.Request[StartSessionRequest]) (*connect.Response[SessionResponse], error)
	GetSession(context.Context, *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error)
	ReloadSession(context.Context, *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error)
	RecordAnswer(context.Context, *connect.Request[RecordAnswerRequest]) (*connect.Response[SessionResponse], error)
	Answer(context.Context, *connect.Request[AnswerRequest]) (*connect.Response[SessionResponse], error)
	AcceptSuggestion(context.Context, *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error)
	Next(context.Context, *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error)
	Previous(context.Context, *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error)
	GoTo(context.Context, *connect.Request[GoToRequest]) (*connect.Response[SessionResponse], error)
	Complete(context.Context, *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error)
	CloseSession(context.Context, *connect.Request[SessionRequest]) (*connect.Response[CloseSessionResponse], error)
	GetSaved(context.Context, *connect.Request[GetSavedRequest]) (*connect.Response[GetSavedResponse], error)
	ListSaved(context.Context, *connect.Request[ListSavedRequest]) (*connect.Response[ListSavedResponse], error)
}

// NewQuestionnaireServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself. The JSON codec is always installed.
func NewQuestionnaireServiceHandler(svc QuestionnaireServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	questionnaireStartSessionHandler := connect.NewUnaryHandler(
		QuestionnaireServiceStartSessionProcedure,
		svc.StartSession,
		opts...,
	)
	questionnaireGetSessionHandler := connect.NewUnaryHandler(
		QuestionnaireServiceGetSessionProcedure,
		svc.GetSession,
		opts...,
	)
	questionnaireReloadSessionHandler := connect.NewUnaryHandler(
		QuestionnaireServiceReloadSessionProcedure,
		svc.ReloadSession,
		opts...,
	)
	questionnaireRecordAnswerHandler := connect.NewUnaryHandler(
		QuestionnaireServiceRecordAnswerProcedure,
		svc.RecordAnswer,
		opts...,
	)
	questionnaireAnswerHandler := connect.NewUnaryHandler(
		QuestionnaireServiceAnswerProcedure,
		svc.Answer,
		opts...,
	)
	questionnaireAcceptSuggestionHandler := connect.NewUnaryHandler(
		QuestionnaireServiceAcceptSuggestionProcedure,
		svc.AcceptSuggestion,
		opts...,
	)
	questionnaireNextHandler := connect.NewUnaryHandler(
		QuestionnaireServiceNextProcedure,
		svc.Next,
		opts...,
	)
	questionnairePreviousHandler := connect.NewUnaryHandler(
		QuestionnaireServicePreviousProcedure,
		svc.Previous,
		opts...,
	)
	questionnaireGoToHandler := connect.NewUnaryHandler(
		QuestionnaireServiceGoToProcedure,
		svc.GoTo,
		opts...,
	)
	questionnaireCompleteHandler := connect.NewUnaryHandler(
		QuestionnaireServiceCompleteProcedure,
		svc.Complete,
		opts...,
	)
	questionnaireCloseSessionHandler := connect.NewUnaryHandler(
		QuestionnaireServiceCloseSessionProcedure,
		svc.CloseSession,
		opts...,
	)
	questionnaireGetSavedHandler := connect.NewUnaryHandler(
		QuestionnaireServiceGetSavedProcedure,
		svc.GetSaved,
		opts...,
	)
	questionnaireListSavedHandler := connect.NewUnaryHandler(
		QuestionnaireServiceListSavedProcedure,
		svc.ListSaved,
		opts...,
	)
	return "/proposalflow.v1.QuestionnaireService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case QuestionnaireServiceStartSessionProcedure:
			questionnaireStartSessionHandler.ServeHTTP(w, r)
		case QuestionnaireServiceGetSessionProcedure:
			questionnaireGetSessionHandler.ServeHTTP(w, r)
		case QuestionnaireServiceReloadSessionProcedure:
			questionnaireReloadSessionHandler.ServeHTTP(w, r)
		case QuestionnaireServiceRecordAnswerProcedure:
			questionnaireRecordAnswerHandler.ServeHTTP(w, r)
		case QuestionnaireServiceAnswerProcedure:
			questionnaireAnswerHandler.ServeHTTP(w, r)
		case QuestionnaireServiceAcceptSuggestionProcedure:
			questionnaireAcceptSuggestionHandler.ServeHTTP(w, r)
		case QuestionnaireServiceNextProcedure:
			questionnaireNextHandler.ServeHTTP(w, r)
		case QuestionnaireServicePreviousProcedure:
			questionnairePreviousHandler.ServeHTTP(w, r)
		case QuestionnaireServiceGoToProcedure:
			questionnaireGoToHandler.ServeHTTP(w, r)
		case QuestionnaireServiceCompleteProcedure:
			questionnaireCompleteHandler.ServeHTTP(w, r)
		case QuestionnaireServiceCloseSessionProcedure:
			questionnaireCloseSessionHandler.ServeHTTP(w, r)
		case QuestionnaireServiceGetSavedProcedure:
			questionnaireGetSavedHandler.ServeHTTP(w, r)
		case QuestionnaireServiceListSavedProcedure:
			questionnaireListSavedHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// QuestionnaireServiceClient is a client for the QuestionnaireService.
type QuestionnaireServiceClient interface {
	StartSession(context.Context, *connect.Request[StartSessionRequest]) (*connect.Response[SessionResponse], error)
	GetSession(context.Context, *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error)
	ReloadSession(context.Context, *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error)
	RecordAnswer(context.Context, *connect.Request[RecordAnswerRequest]) (*connect.Response[SessionResponse], error)
	Answer(context.Context, *connect.Request[AnswerRequest]) (*connect.Response[SessionResponse], error)
	AcceptSuggestion(context.Context, *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error)
	Next(context.Context, *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error)
	Previous(context.Context, *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error)
	GoTo(context.Context, *connect.Request[GoToRequest]) (*connect.Response[SessionResponse], error)
	Complete(context.Context, *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error)
	CloseSession(context.Context, *connect.Request[SessionRequest]) (*connect.Response[CloseSessionResponse], error)
	GetSaved(context.Context, *connect.Request[GetSavedRequest]) (*connect.Response[GetSavedResponse], error)
	ListSaved(context.Context, *connect.Request[ListSavedRequest]) (*connect.Response[ListSavedResponse], error)
}

// NewQuestionnaireServiceClient constructs a client. baseURL is the gateway root,
// for example http://localhost:8081.
func NewQuestionnaireServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) QuestionnaireServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &questionnaireServiceClient{
		startSession: connect.NewClient[StartSessionRequest, SessionResponse](
			httpClient,
			baseURL+QuestionnaireServiceStartSessionProcedure,
			opts...,
		),
		getSession: connect.NewClient[SessionRequest, SessionResponse](
			httpClient,
			baseURL+QuestionnaireServiceGetSessionProcedure,
			opts...,
		),
		reloadSession: connect.NewClient[SessionRequest, SessionResponse](
			httpClient,
			baseURL+QuestionnaireServiceReloadSessionProcedure,
			opts...,
		),
		recordAnswer: connect.NewClient[RecordAnswerRequest, SessionResponse](
			httpClient,
			baseURL+QuestionnaireServiceRecordAnswerProcedure,
			opts...,
		),
		answer: connect.NewClient[AnswerRequest, SessionResponse](
			httpClient,
			baseURL+QuestionnaireServiceAnswerProcedure,
			opts...,
		),
		acceptSuggestion: connect.NewClient[SessionRequest, SessionResponse](
			httpClient,
			baseURL+QuestionnaireServiceAcceptSuggestionProcedure,
			opts...,
		),
		next: connect.NewClient[SessionRequest, SessionResponse](
			httpClient,
			baseURL+QuestionnaireServiceNextProcedure,
			opts...,
		),
		previous: connect.NewClient[SessionRequest, SessionResponse](
			httpClient,
			baseURL+QuestionnaireServicePreviousProcedure,
			opts...,
		),
		goTo: connect.NewClient[GoToRequest, SessionResponse](
			httpClient,
			baseURL+QuestionnaireServiceGoToProcedure,
			opts...,
		),
		complete: connect.NewClient[SessionRequest, SessionResponse](
			httpClient,
			baseURL+QuestionnaireServiceCompleteProcedure,
			opts...,
		),
		closeSession: connect.NewClient[SessionRequest, CloseSessionResponse](
			httpClient,
			baseURL+QuestionnaireServiceCloseSessionProcedure,
			opts...,
		),
		getSaved: connect.NewClient[GetSavedRequest, GetSavedResponse](
			httpClient,
			baseURL+QuestionnaireServiceGetSavedProcedure,
			opts...,
		),
		listSaved: connect.NewClient[ListSavedRequest, ListSavedResponse](
			httpClient,
			baseURL+QuestionnaireServiceListSavedProcedure,
			opts...,
		),
	}
}

type questionnaireServiceClient struct {
	startSession     *connect.Client[StartSessionRequest, SessionResponse]
	getSession       *connect.Client[SessionRequest, SessionResponse]
	reloadSession    *connect.Client[SessionRequest, SessionResponse]
	recordAnswer     *connect.Client[RecordAnswerRequest, SessionResponse]
	answer           *connect.Client[AnswerRequest, SessionResponse]
	acceptSuggestion *connect.Client[SessionRequest, SessionResponse]
	next             *connect.Client[SessionRequest, SessionResponse]
	previous         *connect.Client[SessionRequest, SessionResponse]
	goTo             *connect.Client[GoToRequest, SessionResponse]
	complete         *connect.Client[SessionRequest, SessionResponse]
	closeSession     *connect.Client[SessionRequest, CloseSessionResponse]
	getSaved         *connect.Client[GetSavedRequest, GetSavedResponse]
	listSaved        *connect.Client[ListSavedRequest, ListSavedResponse]
}

func (c *questionnaireServiceClient) StartSession(ctx context.Context, req *connect.Request[StartSessionRequest]) (*connect.Response[SessionResponse], error) {
	return c.startSession.CallUnary(ctx, req)
}

func (c *questionnaireServiceClient) GetSession(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

func (c *questionnaireServiceClient) ReloadSession(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error) {
	return c.reloadSession.CallUnary(ctx, req)
}

func (c *questionnaireServiceClient) RecordAnswer(ctx context.Context, req *connect.Request[RecordAnswerRequest]) (*connect.Response[SessionResponse], error) {
	return c.recordAnswer.CallUnary(ctx, req)
}

func (c *questionnaireServiceClient) Answer(ctx context.Context, req *connect.Request[AnswerRequest]) (*connect.Response[SessionResponse], error) {
	return c.answer.CallUnary(ctx, req)
}

func (c *questionnaireServiceClient) AcceptSuggestion(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error) {
	return c.acceptSuggestion.CallUnary(ctx, req)
}

func (c *questionnaireServiceClient) Next(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error) {
	return c.next.CallUnary(ctx, req)
}

func (c *questionnaireServiceClient) Previous(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error) {
	return c.previous.CallUnary(ctx, req)
}

func (c *questionnaireServiceClient) GoTo(ctx context.Context, req *connect.Request[GoToRequest]) (*connect.Response[SessionResponse], error) {
	return c.goTo.CallUnary(ctx, req)
}

func (c *questionnaireServiceClient) Complete(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error) {
	return c.complete.CallUnary(ctx, req)
}

func (c *questionnaireServiceClient) CloseSession(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[CloseSessionResponse], error) {
	return c.closeSession.CallUnary(ctx, req)
}

func (c *questionnaireServiceClient) GetSaved(ctx context.Context, req *connect.Request[GetSavedRequest]) (*connect.Response[GetSavedResponse], error) {
	return c.getSaved.CallUnary(ctx, req)
}

func (c *questionnaireServiceClient) ListSaved(ctx context.Context, req *connect.Request[ListSavedRequest]) (*connect.Response[ListSavedResponse], error) {
	return c.listSaved.CallUnary(ctx, req)
}
