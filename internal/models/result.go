// internal/models/result.go
package models

import "time"

// Memo is an analyst-style note emitted while a stage runs.
type Memo struct {
	ID        string    `json:"id"`
	Stage     Stage     `json:"stage"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// RunStats counts what each stage produced and dropped.
type RunStats struct {
	CodesExtracted      int `json:"codesExtracted"`
	CodesAfterFilter    int `json:"codesAfterFilter"`
	OrphansReparented   int `json:"orphansReparented"`
	StructuralIssues    int `json:"structuralIssues"`
	RelationshipsFound  int `json:"relationshipsFound"`
	RelationshipsKept   int `json:"relationshipsKept"`
	CandidatesExtracted int `json:"candidatesExtracted"`
	CandidatesMerged    int `json:"candidatesMerged"`
	CandidatesApproved  int `json:"candidatesApproved"`
	CandidatesFlagged   int `json:"candidatesFlagged"`
	CandidatesTentative int `json:"candidatesTentative"`
	CandidatesRejected  int `json:"candidatesRejected"`
	CompletionRetries   int `json:"completionRetries"`
	PassFailures        int `json:"passFailures"`
}

// RunMetadata identifies one analysis run.
type RunMetadata struct {
	RunID          string    `json:"runId"`
	Model          string    `json:"model"`
	StartedAt      time.Time `json:"startedAt"`
	CompletedAt    time.Time `json:"completedAt"`
	InterviewCount int       `json:"interviewCount"`
	Stats          RunStats  `json:"stats"`
}

// AnalysisResult aggregates everything the workflow produced.
type AnalysisResult struct {
	Codes            []*Code             `json:"codes"`
	Relationships    []AxialRelationship `json:"relationships"`
	CoreCategories   []CoreCategory      `json:"coreCategories"`
	TheoreticalModel *TheoreticalModel   `json:"theoreticalModel,omitempty"`
	Memos            []Memo              `json:"memos,omitempty"`
	Metadata         RunMetadata         `json:"metadata"`
}
