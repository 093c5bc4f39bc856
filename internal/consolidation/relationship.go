// internal/consolidation/relationship.go
package consolidation

import (
	"gt-analyzer/internal/common/logger"
	"gt-analyzer/internal/models"
	"gt-analyzer/pkg/vocabulary"
)

// Vocabulary modes decide the fate of relationship kinds that match
// nothing in the controlled vocabulary.
const (
	ModeOpen   = "open"   // keep unmapped kinds verbatim
	ModeClosed = "closed" // drop unmapped kinds
	ModeHybrid = "hybrid" // keep unmapped kinds but flag them
)

// KindOutcome describes what standardization did with one raw kind.
type KindOutcome string

const (
	OutcomeMapped    KindOutcome = "mapped"
	OutcomePreserved KindOutcome = "preserved"
	OutcomeFlagged   KindOutcome = "flagged"
	OutcomeDropped   KindOutcome = "dropped"
)

// RelationshipStats summarizes one standardization batch.
type RelationshipStats struct {
	Processed int `json:"processed"`
	Mapped    int `json:"mapped"`
	Preserved int `json:"preserved"`
	Flagged   int `json:"flagged"`
	Dropped   int `json:"dropped"`
}

func (s *RelationshipStats) record(outcome KindOutcome) {
	s.Processed++
	switch outcome {
	case OutcomeMapped:
		s.Mapped++
	case OutcomePreserved:
		s.Preserved++
	case OutcomeFlagged:
		s.Flagged++
	case OutcomeDropped:
		s.Dropped++
	}
}

// RelationshipConsolidator maps free-form relationship kinds onto the
// controlled vocabulary, exact match first, aliases second.
type RelationshipConsolidator struct {
	vocab  *vocabulary.Vocabulary
	mode   string
	logger logger.Logger
}

func NewRelationshipConsolidator(vocab *vocabulary.Vocabulary, mode string, log logger.Logger) *RelationshipConsolidator {
	if vocab == nil {
		vocab = vocabulary.Default()
	}
	return &RelationshipConsolidator{vocab: vocab, mode: mode, logger: log}
}

// StandardizeKind resolves one raw kind. The returned kind is empty only
// for OutcomeDropped.
func (c *RelationshipConsolidator) StandardizeKind(raw string) (string, KindOutcome) {
	if canonical, ok := c.vocab.Normalize(raw); ok {
		return canonical, OutcomeMapped
	}

	switch c.mode {
	case ModeClosed:
		return "", OutcomeDropped
	case ModeHybrid:
		return raw, OutcomeFlagged
	default:
		return raw, OutcomePreserved
	}
}

// StandardizeCandidates resolves the kind of every relationship candidate,
// dropping or flagging per the vocabulary mode.
func (c *RelationshipConsolidator) StandardizeCandidates(candidates []models.RelationshipCandidate) ([]models.RelationshipCandidate, RelationshipStats) {
	stats := RelationshipStats{}
	kept := make([]models.RelationshipCandidate, 0, len(candidates))

	for _, candidate := range candidates {
		kind, outcome := c.StandardizeKind(candidate.Kind)
		stats.record(outcome)
		if outcome == OutcomeDropped {
			c.logger.Debug("Dropping relationship with unmapped kind", map[string]interface{}{
				"source": candidate.Source,
				"target": candidate.Target,
				"kind":   candidate.Kind,
			})
			continue
		}
		candidate.Kind = kind
		candidate.Flagged = outcome == OutcomeFlagged
		kept = append(kept, candidate)
	}
	return kept, stats
}

// StandardizeRelationships applies the same resolution to axial
// relationships produced by the workflow.
func (c *RelationshipConsolidator) StandardizeRelationships(relationships []models.AxialRelationship) ([]models.AxialRelationship, RelationshipStats) {
	stats := RelationshipStats{}
	kept := make([]models.AxialRelationship, 0, len(relationships))

	for _, rel := range relationships {
		kind, outcome := c.StandardizeKind(rel.Kind)
		stats.record(outcome)
		if outcome == OutcomeDropped {
			c.logger.Debug("Dropping relationship with unmapped kind", map[string]interface{}{
				"central": rel.CentralCategory,
				"related": rel.RelatedCategory,
				"kind":    rel.Kind,
			})
			continue
		}
		rel.Kind = kind
		rel.Flagged = outcome == OutcomeFlagged
		kept = append(kept, rel)
	}
	return kept, stats
}
