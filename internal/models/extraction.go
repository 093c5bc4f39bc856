// internal/models/extraction.go
package models

// CandidateKind tags what an extraction pass was hunting for.
type CandidateKind string

const (
	KindConcept CandidateKind = "concept"
	KindInVivo  CandidateKind = "in_vivo"
	KindProcess CandidateKind = "process"
)

// Candidate is one entity proposed by an extraction pass, before
// consolidation and quality validation.
type Candidate struct {
	Name       string        `json:"name"`
	Kind       CandidateKind `json:"kind"`
	Confidence float64       `json:"confidence"`
	Context    string        `json:"context,omitempty"`
	Quotes     []string      `json:"quotes,omitempty"`
	Pass       int           `json:"pass"`
}

// RelationshipCandidate is one relationship proposed by the relationship
// pass, referencing candidates by name. Flagged marks a kind kept outside
// the controlled vocabulary in hybrid mode.
type RelationshipCandidate struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Kind     string   `json:"kind"`
	Strength float64  `json:"strength"`
	Evidence []string `json:"evidence,omitempty"`
	Pass     int      `json:"pass"`
	Flagged  bool     `json:"flagged,omitempty"`
}
