// internal/models/category.go
package models

// CoreCategory is a central phenomenon selected during selective coding.
// A run may produce several; the workflow requires at least one.
type CoreCategory struct {
	Name                  string   `json:"name"`
	Definition            string   `json:"definition,omitempty"`
	CentralPhenomenon     string   `json:"centralPhenomenon,omitempty"`
	RelatedCategories     []string `json:"relatedCategories,omitempty"`
	TheoreticalProperties []string `json:"theoreticalProperties,omitempty"`
	ExplanatoryPower      float64  `json:"explanatoryPower"`
	IntegrationRationale  string   `json:"integrationRationale,omitempty"`
}
