// internal/consolidation/entity.go
package consolidation

import (
	"gt-analyzer/internal/common/logger"
	"gt-analyzer/internal/models"
)

// EntityStats summarizes one consolidation batch.
type EntityStats struct {
	Processed int `json:"processed"`
	Merged    int `json:"merged"`
	Kept      int `json:"kept"`
}

// EntityConsolidator folds near-duplicate candidates into canonical
// records. Each incoming candidate is compared against the candidates
// already accepted in this batch, never against later ones.
type EntityConsolidator struct {
	threshold float64
	logger    logger.Logger
}

func NewEntityConsolidator(threshold float64, log logger.Logger) *EntityConsolidator {
	return &EntityConsolidator{threshold: threshold, logger: log}
}

// Consolidate merges candidates whose name similarity meets the threshold.
// A merge unions supporting quotes, keeps the higher confidence, and keeps
// the more specific name. Candidates below the threshold stay distinct.
func (c *EntityConsolidator) Consolidate(candidates []models.Candidate) ([]models.Candidate, EntityStats) {
	stats := EntityStats{Processed: len(candidates)}
	accepted := make([]models.Candidate, 0, len(candidates))

	for _, candidate := range candidates {
		matched := -1
		bestScore := 0.0
		for i := range accepted {
			score := Similarity(candidate.Name, accepted[i].Name)
			if score >= c.threshold && score > bestScore {
				matched = i
				bestScore = score
			}
		}

		if matched < 0 {
			accepted = append(accepted, candidate)
			continue
		}

		c.logger.Debug("Merging duplicate candidate", map[string]interface{}{
			"candidate":  candidate.Name,
			"mergedInto": accepted[matched].Name,
			"similarity": bestScore,
		})
		accepted[matched] = mergeCandidates(accepted[matched], candidate)
		stats.Merged++
	}

	stats.Kept = len(accepted)
	return accepted, stats
}

func mergeCandidates(base, incoming models.Candidate) models.Candidate {
	merged := base
	merged.Quotes = unionStrings(base.Quotes, incoming.Quotes)

	if incoming.Confidence > merged.Confidence {
		merged.Confidence = incoming.Confidence
		if incoming.Context != "" {
			merged.Context = incoming.Context
		}
	}
	if merged.Context == "" {
		merged.Context = incoming.Context
	}
	if len(NormalizeName(incoming.Name)) > len(NormalizeName(merged.Name)) {
		merged.Name = incoming.Name
	}
	return merged
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, slice := range [][]string{a, b} {
		for _, s := range slice {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
