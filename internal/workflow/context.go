package workflow

import "proposalflow/internal/types"

// StageContext is the typed input a stage receives. Only the fields named by
// the stage's Requires list are set.
type StageContext struct {
	ProjectID    string                  `json:"projectId"`
	WorkflowType types.WorkflowType      `json:"workflowType"`
	Stage        Stage                   `json:"stage"`
	RFPFile      *types.RFPFile          `json:"rfpFile,omitempty"`
	Analysis     *types.RFPAnalysis      `json:"analysis,omitempty"`
	Research     *types.MarketResearch   `json:"research,omitempty"`
	Proposal     *types.ProposalDocument `json:"proposal,omitempty"`
}
