// pkg/vocabulary/schema.go
package vocabulary

type Vocabulary struct {
	Version     string             `json:"version"`
	LastUpdated string             `json:"lastUpdated"`
	Kinds       []RelationshipKind `json:"kinds"`
}

type RelationshipKind struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
}
