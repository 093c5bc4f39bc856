// internal/workflow/workflow.go
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"gt-analyzer/internal/common/config"
	"gt-analyzer/internal/common/logger"
	"gt-analyzer/internal/common/metrics"
	"gt-analyzer/internal/consolidation"
	"gt-analyzer/internal/llm"
	"gt-analyzer/internal/models"
	"gt-analyzer/internal/prompts"
)

// Workflow drives one grounded-theory analysis run through its stages,
// strictly in order: open coding, axial coding, selective coding, theory
// integration. A terminal failure in any stage aborts the run.
type Workflow struct {
	client        llm.Client
	builder       *prompts.Builder
	relationships *consolidation.RelationshipConsolidator
	cfg           config.AnalysisConfig
	maxTokens     int
	logger        logger.Logger
	tracer        trace.Tracer
}

func New(client llm.Client, builder *prompts.Builder, relationships *consolidation.RelationshipConsolidator, cfg config.AnalysisConfig, maxTokens int, log logger.Logger) *Workflow {
	if builder == nil {
		builder = prompts.NewBuilder(nil)
	}
	if relationships == nil {
		relationships = consolidation.NewRelationshipConsolidator(nil, cfg.VocabularyMode, log)
	}
	return &Workflow{
		client:        client,
		builder:       builder,
		relationships: relationships,
		cfg:           cfg,
		maxTokens:     maxTokens,
		logger:        log,
		tracer:        otel.Tracer("gt-analyzer/workflow"),
	}
}

// ExecuteCompleteWorkflow analyzes the interviews end to end and returns
// the completed result. On stage failure the partial result is discarded
// and the stage error is returned.
func (w *Workflow) ExecuteCompleteWorkflow(ctx context.Context, interviews []string) (*models.AnalysisResult, error) {
	ctx, span := w.tracer.Start(ctx, "workflow.execute")
	defer span.End()

	result := &models.AnalysisResult{
		Metadata: models.RunMetadata{
			RunID:          uuid.New().String(),
			StartedAt:      time.Now().UTC(),
			InterviewCount: len(interviews),
		},
	}
	text := combineInterviews(interviews)

	w.logger.Info("Starting grounded theory analysis", map[string]interface{}{
		"runId":      result.Metadata.RunID,
		"interviews": len(interviews),
	})

	stages := []struct {
		stage models.Stage
		run   func(context.Context, string, *models.AnalysisResult) error
	}{
		{models.StageOpenCoding, w.ExecuteOpenCoding},
		{models.StageAxialCoding, w.ExecuteAxialCoding},
		{models.StageSelectiveCoding, w.ExecuteSelectiveCoding},
		{models.StageTheoryIntegration, w.ExecuteTheoryIntegration},
	}

	for _, s := range stages {
		if err := s.run(ctx, text, result); err != nil {
			w.logger.WithError(err).Error("Analysis run aborted", map[string]interface{}{
				"runId": result.Metadata.RunID,
				"stage": string(s.stage),
			})
			return nil, err
		}
	}

	result.Metadata.CompletedAt = time.Now().UTC()
	w.logger.Info("Analysis run completed", map[string]interface{}{
		"runId":          result.Metadata.RunID,
		"codes":          len(result.Codes),
		"relationships":  len(result.Relationships),
		"coreCategories": len(result.CoreCategories),
	})
	return result, nil
}

func combineInterviews(interviews []string) string {
	trimmed := make([]string, 0, len(interviews))
	for i, interview := range interviews {
		if strings.TrimSpace(interview) == "" {
			continue
		}
		trimmed = append(trimmed, fmt.Sprintf("Interview %d:\n%s", i+1, strings.TrimSpace(interview)))
	}
	return strings.Join(trimmed, "\n\n")
}

// stageSpan opens a trace span and stage timer; the returned func closes
// both.
func (w *Workflow) stageSpan(ctx context.Context, stage models.Stage) (context.Context, func()) {
	ctx = llm.WithStage(ctx, string(stage))
	ctx, span := w.tracer.Start(ctx, "workflow."+string(stage))
	started := time.Now()
	return ctx, func() {
		metrics.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(started).Seconds())
		span.End()
	}
}

func (w *Workflow) appendMemo(result *models.AnalysisResult, stage models.Stage, content string) {
	result.Memos = append(result.Memos, models.Memo{
		ID:        uuid.New().String(),
		Stage:     stage,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
}
