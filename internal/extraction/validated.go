// internal/extraction/validated.go
package extraction

import (
	"context"

	"gt-analyzer/internal/common/logger"
	"gt-analyzer/internal/common/metrics"
	"gt-analyzer/internal/consolidation"
	"gt-analyzer/internal/models"
)

// Stats aggregates consolidation and validation outcomes for one text
// unit. These are the statistics a successful run reports.
type Stats struct {
	Extracted    int `json:"extracted"`
	Merged       int `json:"merged"`
	Approved     int `json:"approved"`
	Flagged      int `json:"flagged"`
	Tentative    int `json:"tentative"`
	Rejected     int `json:"rejected"`
	KindsDropped int `json:"kindsDropped"`
	PassFailures int `json:"passFailures"`
}

// ValidatedResult is the cleaned output of extraction: consolidated,
// standardized, and quality-validated.
type ValidatedResult struct {
	Candidates    []models.Candidate             `json:"candidates"`
	Relationships []models.RelationshipCandidate `json:"relationships"`
	Stats         Stats                          `json:"stats"`
	Failures      []PassFailure                  `json:"failures,omitempty"`
}

// ValidatedExtractor composes the multi-pass extractor with the
// consolidators and the quality validator. Structural rejections are
// absorbed here as statistics; they never abort extraction.
type ValidatedExtractor struct {
	extractor     *Extractor
	entities      *consolidation.EntityConsolidator
	relationships *consolidation.RelationshipConsolidator
	validator     *consolidation.QualityValidator
	logger        logger.Logger
}

func NewValidatedExtractor(
	extractor *Extractor,
	entities *consolidation.EntityConsolidator,
	relationships *consolidation.RelationshipConsolidator,
	validator *consolidation.QualityValidator,
	log logger.Logger,
) *ValidatedExtractor {
	return &ValidatedExtractor{
		extractor:     extractor,
		entities:      entities,
		relationships: relationships,
		validator:     validator,
		logger:        log,
	}
}

func (ve *ValidatedExtractor) Extract(ctx context.Context, text string) (*ValidatedResult, error) {
	raw, err := ve.extractor.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	stats := Stats{
		Extracted:    len(raw.Candidates),
		PassFailures: len(raw.Failures),
	}

	consolidated, entityStats := ve.entities.Consolidate(raw.Candidates)
	stats.Merged = entityStats.Merged

	accepted := make([]models.Candidate, 0, len(consolidated))
	for _, candidate := range consolidated {
		assessment := ve.validator.Validate(candidate)
		metrics.CandidatesTotal.WithLabelValues("extraction", string(assessment.Verdict)).Inc()

		switch assessment.Verdict {
		case consolidation.VerdictApproved:
			stats.Approved++
		case consolidation.VerdictFlagged:
			stats.Flagged++
		case consolidation.VerdictTentative:
			stats.Tentative++
		case consolidation.VerdictRejected:
			stats.Rejected++
			ve.logger.Debug("Rejecting candidate", map[string]interface{}{
				"candidate": candidate.Name,
				"issues":    assessment.Issues,
			})
			continue
		}
		accepted = append(accepted, candidate)
	}

	standardized, relStats := ve.relationships.StandardizeCandidates(raw.Relationships)
	stats.KindsDropped = relStats.Dropped

	keptRelationships := make([]models.RelationshipCandidate, 0, len(standardized))
	for _, rel := range standardized {
		assessment := ve.validator.ValidateRelationship(rel)
		metrics.CandidatesTotal.WithLabelValues("extraction_relationship", string(assessment.Verdict)).Inc()

		switch assessment.Verdict {
		case consolidation.VerdictApproved:
			stats.Approved++
		case consolidation.VerdictFlagged:
			stats.Flagged++
		case consolidation.VerdictTentative:
			stats.Tentative++
		case consolidation.VerdictRejected:
			stats.Rejected++
			ve.logger.Debug("Rejecting relationship", map[string]interface{}{
				"source": rel.Source,
				"target": rel.Target,
				"issues": assessment.Issues,
			})
			continue
		}
		keptRelationships = append(keptRelationships, rel)
	}

	return &ValidatedResult{
		Candidates:    accepted,
		Relationships: keptRelationships,
		Stats:         stats,
		Failures:      raw.Failures,
	}, nil
}
