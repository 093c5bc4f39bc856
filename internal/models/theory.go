// internal/models/theory.go
package models

// TheoreticalModel is the integrated outcome of the final workflow stage.
// CoreCategories preserves the ordering the model proposed.
type TheoreticalModel struct {
	Name                    string   `json:"name"`
	CoreCategories          []string `json:"coreCategories"`
	NarrativeFramework      string   `json:"narrativeFramework"`
	Propositions            []string `json:"propositions,omitempty"`
	ConceptualRelationships []string `json:"conceptualRelationships,omitempty"`
	ScopeConditions         []string `json:"scopeConditions,omitempty"`
	Implications            []string `json:"implications,omitempty"`
	FutureResearch          []string `json:"futureResearch,omitempty"`
}
