// internal/models/relationship.go
package models

// AxialRelationship links two categories discovered during axial coding.
// Kind is standardized against the relationship vocabulary before the
// relationship is kept.
type AxialRelationship struct {
	CentralCategory string   `json:"centralCategory"`
	RelatedCategory string   `json:"relatedCategory"`
	Kind            string   `json:"kind"`
	Conditions      []string `json:"conditions,omitempty"`
	Consequences    []string `json:"consequences,omitempty"`
	Evidence        []string `json:"evidence,omitempty"`
	Strength        float64  `json:"strength"`
	Flagged         bool     `json:"flagged,omitempty"`
}
