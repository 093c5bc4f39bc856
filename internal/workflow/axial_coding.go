// internal/workflow/axial_coding.go
package workflow

import (
	"context"
	"fmt"

	"gt-analyzer/internal/common/errors"
	"gt-analyzer/internal/models"
	"gt-analyzer/internal/prompts"
)

type axialCodingPayload struct {
	Relationships []models.AxialRelationship `json:"relationships"`
}

// ExecuteAxialCoding relates the open codes to each other, standardizes
// the relationship kinds against the vocabulary, and keeps only the
// relationships above the configured strength threshold.
func (w *Workflow) ExecuteAxialCoding(ctx context.Context, text string, result *models.AnalysisResult) error {
	ctx, done := w.stageSpan(ctx, models.StageAxialCoding)
	defer done()

	stageText := prompts.FormatCodes(result.Codes) + "\n\nSource material:\n" + text
	prompt := w.builder.Build(models.StageAxialCoding, stageText, w.cfg)

	var payload axialCodingPayload
	if err := w.client.CompleteStructured(ctx, prompt, prompts.AxialCodingSchema, w.maxTokens, &payload); err != nil {
		return errors.NewStageFailedError(string(models.StageAxialCoding), err)
	}

	standardized, vocabStats := w.relationships.StandardizeRelationships(payload.Relationships)

	kept := make([]models.AxialRelationship, 0, len(standardized))
	for _, rel := range standardized {
		if rel.Strength < w.cfg.RelationshipConfidenceThreshold {
			continue
		}
		kept = append(kept, rel)
	}

	result.Relationships = kept
	result.Metadata.Stats.RelationshipsFound = len(payload.Relationships)
	result.Metadata.Stats.RelationshipsKept = len(kept)

	w.logger.Info("Axial coding completed", map[string]interface{}{
		"found":        len(payload.Relationships),
		"kept":         len(kept),
		"kindsDropped": vocabStats.Dropped,
		"kindsFlagged": vocabStats.Flagged,
	})
	w.appendMemo(result, models.StageAxialCoding, fmt.Sprintf(
		"Axial coding proposed %d relationships; %d met the strength threshold of %.2f after vocabulary standardization dropped %d.",
		len(payload.Relationships), len(kept), w.cfg.RelationshipConfidenceThreshold, vocabStats.Dropped))
	return nil
}
