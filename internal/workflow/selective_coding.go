// internal/workflow/selective_coding.go
package workflow

import (
	"context"
	"fmt"
	"strings"

	"gt-analyzer/internal/common/errors"
	"gt-analyzer/internal/models"
	"gt-analyzer/internal/prompts"
)

type selectiveCodingPayload struct {
	CoreCategories []models.CoreCategory `json:"coreCategories"`
}

// ExecuteSelectiveCoding identifies the core categories that organize the
// coded material. At least one core category must come back; the schema
// enforces this, and an empty list is treated as a stage failure.
func (w *Workflow) ExecuteSelectiveCoding(ctx context.Context, text string, result *models.AnalysisResult) error {
	ctx, done := w.stageSpan(ctx, models.StageSelectiveCoding)
	defer done()

	stageText := prompts.FormatCodes(result.Codes) + "\n\n" +
		prompts.FormatRelationships(result.Relationships) + "\n\nSource material:\n" + text
	prompt := w.builder.Build(models.StageSelectiveCoding, stageText, w.cfg)

	var payload selectiveCodingPayload
	if err := w.client.CompleteStructured(ctx, prompt, prompts.SelectiveCodingSchema, w.maxTokens, &payload); err != nil {
		return errors.NewStageFailedError(string(models.StageSelectiveCoding), err)
	}
	if len(payload.CoreCategories) == 0 {
		return errors.NewStageFailedError(string(models.StageSelectiveCoding),
			errors.NewSchemaValidationFailedError("no core categories returned"))
	}

	result.CoreCategories = payload.CoreCategories

	w.logger.Info("Selective coding completed", map[string]interface{}{
		"coreCategories": len(payload.CoreCategories),
	})
	names := make([]string, len(payload.CoreCategories))
	for i, cat := range payload.CoreCategories {
		names[i] = cat.Name
	}
	w.appendMemo(result, models.StageSelectiveCoding, fmt.Sprintf(
		"Selective coding surfaced %d core categories: %s.",
		len(payload.CoreCategories), strings.Join(names, ", ")))
	return nil
}
