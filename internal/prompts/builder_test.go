// internal/prompts/builder_test.go
package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gt-analyzer/internal/common/config"
	"gt-analyzer/internal/models"
)

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		MinimumCodeFrequency:            2,
		RelationshipConfidenceThreshold: 0.5,
		ConsolidationThreshold:          0.85,
		AutoApproveThreshold:            0.8,
		ReviewThreshold:                 0.6,
		ValidationThreshold:             0.4,
		TheoreticalSensitivity:          "balanced",
		CodingDepth:                     "standard",
		VocabularyMode:                  "hybrid",
	}
}

func TestBuilder_Build_Deterministic(t *testing.T) {
	builder := NewBuilder(nil)
	cfg := testAnalysisConfig()
	text := "Interviewee: we adopted AI tooling because management pushed for efficiency."

	for _, stage := range models.Stages() {
		t.Run(string(stage), func(t *testing.T) {
			first := builder.Build(stage, text, cfg)
			second := builder.Build(stage, text, cfg)

			require.NotEmpty(t, first)
			assert.Equal(t, first, second)
		})
	}
}

func TestBuilder_Build_ConfigChangesPrompt(t *testing.T) {
	builder := NewBuilder(nil)
	base := testAnalysisConfig()
	text := "Interviewee: training was the hardest part of the rollout."

	tests := []struct {
		name   string
		stage  models.Stage
		mutate func(cfg *config.AnalysisConfig)
	}{
		{
			name:   "theoretical sensitivity changes open coding",
			stage:  models.StageOpenCoding,
			mutate: func(cfg *config.AnalysisConfig) { cfg.TheoreticalSensitivity = "high" },
		},
		{
			name:   "coding depth changes open coding",
			stage:  models.StageOpenCoding,
			mutate: func(cfg *config.AnalysisConfig) { cfg.CodingDepth = "deep" },
		},
		{
			name:   "minimum code frequency changes open coding",
			stage:  models.StageOpenCoding,
			mutate: func(cfg *config.AnalysisConfig) { cfg.MinimumCodeFrequency = 5 },
		},
		{
			name:   "relationship threshold changes axial coding",
			stage:  models.StageAxialCoding,
			mutate: func(cfg *config.AnalysisConfig) { cfg.RelationshipConfidenceThreshold = 0.7 },
		},
		{
			name:   "vocabulary mode changes axial coding",
			stage:  models.StageAxialCoding,
			mutate: func(cfg *config.AnalysisConfig) { cfg.VocabularyMode = "closed" },
		},
		{
			name:   "theoretical sensitivity changes theory integration",
			stage:  models.StageTheoryIntegration,
			mutate: func(cfg *config.AnalysisConfig) { cfg.TheoreticalSensitivity = "low" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := base
			tt.mutate(&changed)

			basePrompt := builder.Build(tt.stage, text, base)
			changedPrompt := builder.Build(tt.stage, text, changed)

			assert.NotEqual(t, basePrompt, changedPrompt)
		})
	}
}

func TestBuilder_Build_StageContent(t *testing.T) {
	builder := NewBuilder(nil)
	cfg := testAnalysisConfig()

	open := builder.Build(models.StageOpenCoding, "data", cfg)
	assert.Contains(t, open, "open coding")
	assert.Contains(t, open, "fewer than 2 times")
	assert.Contains(t, open, `"codes"`)

	axial := builder.Build(models.StageAxialCoding, "data", cfg)
	assert.Contains(t, axial, "axial coding")
	assert.Contains(t, axial, "below 0.50")
	assert.Contains(t, axial, "causes")

	selective := builder.Build(models.StageSelectiveCoding, "data", cfg)
	assert.Contains(t, selective, "core category")

	theory := builder.Build(models.StageTheoryIntegration, "data", cfg)
	assert.Contains(t, theory, "theoreticalModel")
}

func TestBuilder_Build_ClosedModeListsOnlyVocabulary(t *testing.T) {
	builder := NewBuilder(nil)
	cfg := testAnalysisConfig()
	cfg.VocabularyMode = "closed"

	prompt := builder.Build(models.StageAxialCoding, "data", cfg)

	assert.Contains(t, prompt, "ONLY")
	assert.Contains(t, prompt, "causes")
	assert.Contains(t, prompt, "contradicts")
}

func TestFormatCodes(t *testing.T) {
	codes := []*models.Code{
		{Name: "ai_adoption", Level: 0, Frequency: 3, Confidence: 0.9, Description: "Uptake of AI tooling"},
		{Name: "management_pressure", Parent: "ai_adoption", Level: 1, Frequency: 2, Confidence: 0.8},
	}

	block := FormatCodes(codes)

	assert.Contains(t, block, "ai_adoption")
	assert.Contains(t, block, "parent: ai_adoption")
	assert.Contains(t, block, "Uptake of AI tooling")
	assert.Equal(t, block, FormatCodes(codes))
}
