package types

import "time"

// Stage results -------------------------------------------------------------------

// RFPFile is the result of the upload stage.
type RFPFile struct {
	Name        string    `json:"name"`
	ContentType string    `json:"contentType,omitempty"`
	Size        int64     `json:"size"`
	ObjectKey   string    `json:"objectKey"`
	URL         string    `json:"url,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type Requirement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Mandatory   bool   `json:"mandatory"`
}

type Deadline struct {
	Label string `json:"label"`
	Date  string `json:"date"`
}

type EvaluationCriterion struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// RFPAnalysis is the result of the analysis stage.
type RFPAnalysis struct {
	Summary            string                `json:"summary"`
	Requirements       []Requirement         `json:"requirements,omitempty"`
	Deadlines          []Deadline            `json:"deadlines,omitempty"`
	EvaluationCriteria []EvaluationCriterion `json:"evaluationCriteria,omitempty"`
	Risks              []string              `json:"risks,omitempty"`
}

type Competitor struct {
	Name      string   `json:"name"`
	Strengths []string `json:"strengths,omitempty"`
	Gaps      []string `json:"gaps,omitempty"`
}

type Persona struct {
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Goals      []string `json:"goals,omitempty"`
	PainPoints []string `json:"painPoints,omitempty"`
}

// MarketResearch is the result of the research stage, including persona analysis.
type MarketResearch struct {
	Summary     string       `json:"summary"`
	Competitors []Competitor `json:"competitors,omitempty"`
	Trends      []string     `json:"trends,omitempty"`
	Personas    []Persona    `json:"personas,omitempty"`
}

type ProposalSection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// ProposalDocument is the result of the proposal stage.
type ProposalDocument struct {
	Title    string            `json:"title"`
	Sections []ProposalSection `json:"sections,omitempty"`
	Version  int               `json:"version"`
}
