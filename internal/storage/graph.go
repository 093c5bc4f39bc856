// internal/storage/graph.go
package storage

import (
	"context"

	"gt-analyzer/internal/models"
)

// GraphStore persists extracted entities, relationships, and codes, and
// answers ad-hoc queries over them. Implementations are pure sinks; the
// analysis pipeline never reads its own output back through this
// interface.
type GraphStore interface {
	CreateEntity(ctx context.Context, entity models.Candidate) (string, error)
	CreateRelationship(ctx context.Context, rel models.RelationshipCandidate) (string, error)
	CreateCode(ctx context.Context, code *models.Code) (string, error)
	StoreResult(ctx context.Context, result *models.AnalysisResult) error
	Query(ctx context.Context, statement string, params []interface{}) ([]map[string]interface{}, error)
	Close() error
}
