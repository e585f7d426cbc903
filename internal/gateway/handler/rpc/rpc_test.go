package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "proposalflow/internal/api/proposalflowv1"
	artifactcache "proposalflow/internal/cache/artifact"
	"proposalflow/internal/cost"
	artifactrepo "proposalflow/internal/gateway/repository/artifact"
	questionnairerepo "proposalflow/internal/gateway/repository/questionnaire"
	workflowrepo "proposalflow/internal/gateway/repository/workflow"
	questionnairesvc "proposalflow/internal/gateway/service/questionnaire"
	workflowsvc "proposalflow/internal/gateway/service/workflow"
	"proposalflow/internal/questiongen"
	qn "proposalflow/internal/questionnaire"
	"proposalflow/internal/types"
	wf "proposalflow/internal/workflow"
)

type testServer struct {
	srv           *httptest.Server
	docs          *artifactcache.CachedStore
	workflow      v1.WorkflowServiceClient
	questionnaire v1.QuestionnaireServiceClient
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	docs := artifactcache.NewCachedStore(artifactrepo.NewMemoryStore(), artifactcache.DefaultCacheConfig())
	wfSvc := workflowsvc.New(workflowrepo.NewMemoryStore(), docs)

	gen, err := questiongen.LoadTemplates("")
	require.NoError(t, err)
	store := questionnairerepo.NewMemoryStore()
	engine, err := qn.New(gen, gen, store)
	require.NoError(t, err)
	qSvc, err := questionnairesvc.New(engine, wfSvc, store, questionnairesvc.DefaultConfig())
	require.NoError(t, err)

	qh := NewQuestionnaireHandler(qSvc)
	mux := http.NewServeMux()
	path, handler := v1.NewWorkflowServiceHandler(NewWorkflowHandler(wfSvc))
	mux.Handle(path, handler)
	path, handler = v1.NewQuestionnaireServiceHandler(qh)
	mux.Handle(path, handler)
	mux.HandleFunc("/ws/questionnaire", qh.HandleSessionWS)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testServer{
		srv:           srv,
		docs:          docs,
		workflow:      v1.NewWorkflowServiceClient(srv.Client(), srv.URL),
		questionnaire: v1.NewQuestionnaireServiceClient(srv.Client(), srv.URL),
	}
}

func TestWorkflowRPC(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	_, err := ts.workflow.StartWorkflow(ctx, connect.NewRequest(&v1.StartWorkflowRequest{}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	res, err := ts.workflow.StartWorkflow(ctx, connect.NewRequest(&v1.StartWorkflowRequest{ProjectID: "p1"}))
	require.NoError(t, err)
	assert.Equal(t, wf.StageUpload, res.Msg.Workflow.Record.Current)

	res, err = ts.workflow.UploadRFP(ctx, connect.NewRequest(&v1.UploadRFPRequest{
		ProjectID:   "p1",
		Name:        "rfp.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4"),
	}))
	require.NoError(t, err)
	require.NotNil(t, res.Msg.Workflow.Record.RFPFile)
	assert.Equal(t, wf.StageAnalysis, res.Msg.Workflow.Record.Current)

	_, err = ts.workflow.SetCurrentStage(ctx, connect.NewRequest(&v1.SetCurrentStageRequest{ProjectID: "p1", Stage: wf.StageProposal}))
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	_, err = ts.workflow.CompleteStage(ctx, connect.NewRequest(&v1.CompleteStageRequest{ProjectID: "p1", Stage: "bogus"}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	analysis, err := json.Marshal(types.RFPAnalysis{Summary: "build a portal"})
	require.NoError(t, err)
	res, err = ts.workflow.CompleteStage(ctx, connect.NewRequest(&v1.CompleteStageRequest{ProjectID: "p1", Stage: wf.StageAnalysis, Result: analysis}))
	require.NoError(t, err)
	assert.Contains(t, res.Msg.Workflow.Unlocked, wf.StageResearch)

	sc, err := ts.workflow.GetStageContext(ctx, connect.NewRequest(&v1.GetStageContextRequest{ProjectID: "p1", Stage: wf.StageResearch}))
	require.NoError(t, err)
	require.NotNil(t, sc.Msg.Context.Analysis)
	assert.Equal(t, "build a portal", sc.Msg.Context.Analysis.Summary)

	_, err = ts.workflow.AddWorkItem(ctx, connect.NewRequest(&v1.WorkItemRequest{ProjectID: "p1", Item: cost.WorkItem{ID: "w1", Task: "build", Hours: 10, HourlyRate: 100, Complexity: cost.ComplexityMedium}}))
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	_, err = ts.workflow.GetWorkflow(ctx, connect.NewRequest(&v1.GetWorkflowRequest{ProjectID: "missing"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestRFPDocumentsRPC(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	_, err := ts.workflow.ListRFPs(ctx, connect.NewRequest(&v1.ListRFPsRequest{}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	_, err = ts.workflow.GetRFP(ctx, connect.NewRequest(&v1.GetRFPRequest{}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = ts.workflow.StartWorkflow(ctx, connect.NewRequest(&v1.StartWorkflowRequest{ProjectID: "p1"}))
	require.NoError(t, err)
	_, err = ts.workflow.GetRFP(ctx, connect.NewRequest(&v1.GetRFPRequest{ProjectID: "p1"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	for _, name := range []string{"rfp.pdf", "rfp-reanalyze.pdf"} {
		_, err = ts.workflow.UploadRFP(ctx, connect.NewRequest(&v1.UploadRFPRequest{
			ProjectID: "p1", Name: name, ContentType: "application/pdf", Content: []byte("%PDF " + name),
		}))
		require.NoError(t, err)
	}

	list, err := ts.workflow.ListRFPs(ctx, connect.NewRequest(&v1.ListRFPsRequest{ProjectID: "p1"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"rfp-reanalyze.pdf", "rfp.pdf"}, list.Msg.Names)

	for i := 0; i < 2; i++ {
		got, err := ts.workflow.GetRFP(ctx, connect.NewRequest(&v1.GetRFPRequest{ProjectID: "p1"}))
		require.NoError(t, err)
		assert.Equal(t, "rfp-reanalyze.pdf", got.Msg.Name)
		assert.Equal(t, "application/pdf", got.Msg.ContentType)
		assert.Equal(t, []byte("%PDF rfp-reanalyze.pdf"), got.Msg.Content)
	}
	m := ts.docs.Metrics()
	assert.Equal(t, uint64(1), m.BlobMisses)
	assert.Equal(t, uint64(1), m.BlobHits)

	_, err = ts.workflow.GetRFP(ctx, connect.NewRequest(&v1.GetRFPRequest{ProjectID: "p1", Name: "other.pdf"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestQuestionnaireRPC(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	_, err := ts.workflow.StartWorkflow(ctx, connect.NewRequest(&v1.StartWorkflowRequest{ProjectID: "p1"}))
	require.NoError(t, err)

	started, err := ts.questionnaire.StartSession(ctx, connect.NewRequest(&v1.StartSessionRequest{ProjectID: "p1", Stage: wf.StageUpload}))
	require.NoError(t, err)
	snap := started.Msg.Session
	require.Equal(t, 2, snap.Total)
	assert.Equal(t, qn.StateActive, snap.State)

	_, err = ts.questionnaire.RecordAnswer(ctx, connect.NewRequest(&v1.RecordAnswerRequest{
		SessionID:  snap.ID,
		QuestionID: "client_name",
		Answer:     json.RawMessage(`"Acme"`),
	}))
	require.NoError(t, err)

	_, err = ts.questionnaire.Complete(ctx, connect.NewRequest(&v1.SessionRequest{SessionID: snap.ID}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
	var ce *connect.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "submission_deadline", ce.Meta().Get(metaQuestionID))
	assert.Equal(t, "1", ce.Meta().Get(metaFirstIndex))

	cur, err := ts.questionnaire.GetSession(ctx, connect.NewRequest(&v1.SessionRequest{SessionID: snap.ID}))
	require.NoError(t, err)
	assert.Equal(t, 1, cur.Msg.Session.Index)

	_, err = ts.questionnaire.Answer(ctx, connect.NewRequest(&v1.AnswerRequest{SessionID: snap.ID, Answer: json.RawMessage(`"2026-11-30"`)}))
	require.NoError(t, err)
	done, err := ts.questionnaire.Complete(ctx, connect.NewRequest(&v1.SessionRequest{SessionID: snap.ID}))
	require.NoError(t, err)
	assert.Equal(t, qn.StateDone, done.Msg.Session.State)

	saved, err := ts.questionnaire.GetSaved(ctx, connect.NewRequest(&v1.GetSavedRequest{ProjectID: "p1", Stage: wf.StageUpload}))
	require.NoError(t, err)
	require.Len(t, saved.Msg.Saved.Responses, 2)

	list, err := ts.questionnaire.ListSaved(ctx, connect.NewRequest(&v1.ListSavedRequest{ProjectID: "p1"}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Keys, 1)
	assert.Equal(t, wf.StageUpload, list.Msg.Keys[0].Stage)

	closed, err := ts.questionnaire.CloseSession(ctx, connect.NewRequest(&v1.SessionRequest{SessionID: snap.ID}))
	require.NoError(t, err)
	assert.True(t, closed.Msg.Closed)

	_, err = ts.questionnaire.GetSession(ctx, connect.NewRequest(&v1.SessionRequest{SessionID: snap.ID}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = ts.questionnaire.StartSession(ctx, connect.NewRequest(&v1.StartSessionRequest{ProjectID: "p1", Stage: wf.StageCost}))
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
}

func TestRecordAnswerRejectsUnknownQuestion(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	_, err := ts.workflow.StartWorkflow(ctx, connect.NewRequest(&v1.StartWorkflowRequest{ProjectID: "p1"}))
	require.NoError(t, err)
	started, err := ts.questionnaire.StartSession(ctx, connect.NewRequest(&v1.StartSessionRequest{ProjectID: "p1", Stage: wf.StageUpload}))
	require.NoError(t, err)

	_, err = ts.questionnaire.RecordAnswer(ctx, connect.NewRequest(&v1.RecordAnswerRequest{
		SessionID:  started.Msg.Session.ID,
		QuestionID: "nope",
		Answer:     json.RawMessage(`"x"`),
	}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func readWS(t *testing.T, conn *websocket.Conn, want string) sessionWSOutbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var out sessionWSOutbound
		require.NoError(t, conn.ReadJSON(&out))
		if out.Type == want {
			return out
		}
	}
}

func TestSessionWebsocket(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	_, err := ts.workflow.StartWorkflow(ctx, connect.NewRequest(&v1.StartWorkflowRequest{ProjectID: "p1"}))
	require.NoError(t, err)
	started, err := ts.questionnaire.StartSession(ctx, connect.NewRequest(&v1.StartSessionRequest{ProjectID: "p1", Stage: wf.StageUpload}))
	require.NoError(t, err)
	id := started.Msg.Session.ID

	wsURL := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/ws/questionnaire?session_id=" + id
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	readWS(t, conn, "subscribed")
	first := readWS(t, conn, "snapshot")
	require.NotNil(t, first.Session)
	assert.Equal(t, id, first.Session.ID)

	require.NoError(t, conn.WriteJSON(sessionWSInbound{Type: "ping"}))
	readWS(t, conn, "pong")

	require.NoError(t, conn.WriteJSON(sessionWSInbound{Type: "answer", Answer: json.RawMessage(`"Acme"`)}))
	readWS(t, conn, "answer_ack")

	require.NoError(t, conn.WriteJSON(sessionWSInbound{Type: "goto", Index: 9}))
	errOut := readWS(t, conn, "error")
	assert.Equal(t, connect.CodeInvalidArgument.String(), errOut.Code)

	require.NoError(t, conn.WriteJSON(sessionWSInbound{Type: "bogus"}))
	errOut = readWS(t, conn, "error")
	assert.Equal(t, connect.CodeInvalidArgument.String(), errOut.Code)

	require.NoError(t, conn.WriteJSON(sessionWSInbound{Type: "close"}))
	for {
		out := readWS(t, conn, "snapshot")
		if out.Session.Closed {
			break
		}
	}
}

func TestSessionWebsocketRequiresSessionID(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.srv.URL + "/ws/questionnaire")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
