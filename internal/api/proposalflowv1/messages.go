package proposalflowv1

import (
	"encoding/json"

	"proposalflow/internal/cost"
	qn "proposalflow/internal/questionnaire"
	"proposalflow/internal/types"
	wf "proposalflow/internal/workflow"
)

// Workflow service ----------------------------------------------------------

type Workflow struct {
	Record   wf.Record  `json:"record"`
	Unlocked []wf.Stage `json:"unlocked"`
	Stale    []wf.Stage `json:"stale"`
}

type WorkflowResponse struct {
	Workflow Workflow `json:"workflow"`
}

type StartWorkflowRequest struct {
	ProjectID    string             `json:"projectId"`
	WorkflowType types.WorkflowType `json:"workflowType,omitempty"`
}

type GetWorkflowRequest struct {
	ProjectID string `json:"projectId"`
}

// UploadRFPRequest carries the document inline; Content is base64 on the wire.
type UploadRFPRequest struct {
	ProjectID   string `json:"projectId"`
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Content     []byte `json:"content"`
}

// GetRFPRequest fetches one stored document. An empty Name selects the
// document attached to the upload stage.
type GetRFPRequest struct {
	ProjectID      string `json:"projectId"`
	Name           string `json:"name,omitempty"`
	IncludeContent bool   `json:"includeContent,omitempty"`
}

// GetRFPResponse carries a download URL when the store can presign one.
// Content is set when requested or when no URL is available.
type GetRFPResponse struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	URL         string `json:"url,omitempty"`
	Content     []byte `json:"content,omitempty"`
}

type ListRFPsRequest struct {
	ProjectID string `json:"projectId"`
}

type ListRFPsResponse struct {
	Names []string `json:"names"`
}

type CompleteStageRequest struct {
	ProjectID string          `json:"projectId"`
	Stage     wf.Stage        `json:"stage"`
	Result    json.RawMessage `json:"result"`
}

type SetCurrentStageRequest struct {
	ProjectID string   `json:"projectId"`
	Stage     wf.Stage `json:"stage"`
}

type GetStageContextRequest struct {
	ProjectID string   `json:"projectId"`
	Stage     wf.Stage `json:"stage"`
}

type GetStageContextResponse struct {
	Context wf.StageContext `json:"context"`
}

type WorkItemRequest struct {
	ProjectID string        `json:"projectId"`
	Item      cost.WorkItem `json:"item"`
}

type RemoveWorkItemRequest struct {
	ProjectID string `json:"projectId"`
	ItemID    string `json:"itemId"`
}

type SetContingencyRateRequest struct {
	ProjectID string  `json:"projectId"`
	Rate      float64 `json:"rate"`
}

type SetRateCardRequest struct {
	ProjectID string             `json:"projectId"`
	RateCard  map[string]float64 `json:"rateCard"`
}

// Questionnaire service -----------------------------------------------------

type SessionResponse struct {
	Session qn.Snapshot `json:"session"`
}

type StartSessionRequest struct {
	ProjectID    string             `json:"projectId"`
	WorkflowType types.WorkflowType `json:"workflowType,omitempty"`
	Stage        wf.Stage           `json:"stage"`
}

type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

type RecordAnswerRequest struct {
	SessionID  string          `json:"sessionId"`
	QuestionID string          `json:"questionId"`
	Answer     json.RawMessage `json:"answer"`
	Source     qn.Source       `json:"source,omitempty"`
}

type AnswerRequest struct {
	SessionID string          `json:"sessionId"`
	Answer    json.RawMessage `json:"answer"`
}

type GoToRequest struct {
	SessionID string `json:"sessionId"`
	Index     int    `json:"index"`
}

type CloseSessionResponse struct {
	Closed bool `json:"closed"`
}

type GetSavedRequest struct {
	ProjectID    string             `json:"projectId"`
	WorkflowType types.WorkflowType `json:"workflowType,omitempty"`
	Stage        wf.Stage           `json:"stage"`
}

type GetSavedResponse struct {
	Saved qn.Saved `json:"saved"`
}

type ListSavedRequest struct {
	ProjectID string `json:"projectId"`
}

type ListSavedResponse struct {
	Keys []qn.Key `json:"keys"`
}
