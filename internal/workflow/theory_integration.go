// internal/workflow/theory_integration.go
package workflow

import (
	"context"
	"fmt"

	"gt-analyzer/internal/common/errors"
	"gt-analyzer/internal/models"
	"gt-analyzer/internal/prompts"
)

type theoryIntegrationPayload struct {
	TheoreticalModel *models.TheoreticalModel `json:"theoreticalModel"`
}

// ExecuteTheoryIntegration weaves the core categories into exactly one
// theoretical model. A response without a named model fails the stage.
func (w *Workflow) ExecuteTheoryIntegration(ctx context.Context, text string, result *models.AnalysisResult) error {
	ctx, done := w.stageSpan(ctx, models.StageTheoryIntegration)
	defer done()

	stageText := prompts.FormatCodes(result.Codes) + "\n\n" +
		prompts.FormatRelationships(result.Relationships) + "\n\n" +
		prompts.FormatCategories(result.CoreCategories) + "\n\nSource material:\n" + text
	prompt := w.builder.Build(models.StageTheoryIntegration, stageText, w.cfg)

	var payload theoryIntegrationPayload
	if err := w.client.CompleteStructured(ctx, prompt, prompts.TheoryIntegrationSchema, w.maxTokens, &payload); err != nil {
		return errors.NewStageFailedError(string(models.StageTheoryIntegration), err)
	}
	if payload.TheoreticalModel == nil || payload.TheoreticalModel.Name == "" {
		return errors.NewStageFailedError(string(models.StageTheoryIntegration),
			errors.NewSchemaValidationFailedError("no theoretical model returned"))
	}

	result.TheoreticalModel = payload.TheoreticalModel

	w.logger.Info("Theory integration completed", map[string]interface{}{
		"model":          payload.TheoreticalModel.Name,
		"coreCategories": len(payload.TheoreticalModel.CoreCategories),
		"propositions":   len(payload.TheoreticalModel.Propositions),
	})
	w.appendMemo(result, models.StageTheoryIntegration, fmt.Sprintf(
		"Theory integration produced the model %q spanning %d core categories with %d propositions.",
		payload.TheoreticalModel.Name, len(payload.TheoreticalModel.CoreCategories),
		len(payload.TheoreticalModel.Propositions)))
	return nil
}
