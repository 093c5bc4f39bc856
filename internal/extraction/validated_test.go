// internal/extraction/validated_test.go
package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gt-analyzer/internal/common/logger"
	"gt-analyzer/internal/consolidation"
)

func newTestValidatedExtractor(client *fakeClient, mode string) *ValidatedExtractor {
	log := logger.NewNoOpLogger()
	return NewValidatedExtractor(
		NewExtractor(client, DefaultConfig(), log),
		consolidation.NewEntityConsolidator(0.85, log),
		consolidation.NewRelationshipConsolidator(nil, mode, log),
		consolidation.NewQualityValidator(0.8, 0.6, 0.4),
		log,
	)
}

func TestValidatedExtractor_CleansAndCounts(t *testing.T) {
	client := &fakeClient{responses: []fakeStructuredResponse{
		{payload: `{"candidates": [{"name": "pricing pressure", "confidence": 0.9, "quotes": ["we lose every bid on price"]}]}`},
		{payload: `{"candidates": [{"name": "Pricing  Pressure", "confidence": 0.7, "quotes": ["prices keep dropping"]}]}`},
		{payload: `{"candidates": [{"name": "cutting corners", "confidence": 0.3}]}`},
		{payload: `{"relationships": [
			{"source": "pricing pressure", "target": "cutting corners", "kind": "leads to", "strength": 0.9},
			{"source": "pricing pressure", "target": "cutting corners", "kind": "echoes", "strength": 0.8}
		]}`},
	}}
	extractor := newTestValidatedExtractor(client, consolidation.ModeClosed)

	result, err := extractor.Extract(context.Background(), "interview text")
	require.NoError(t, err)

	require.Len(t, result.Candidates, 1, "duplicates merge, low confidence rejects")
	assert.Equal(t, 0.9, result.Candidates[0].Confidence)
	assert.ElementsMatch(t,
		[]string{"we lose every bid on price", "prices keep dropping"},
		result.Candidates[0].Quotes)

	require.Len(t, result.Relationships, 1, "closed mode drops the unmapped kind")
	assert.Equal(t, "causes", result.Relationships[0].Kind)

	assert.Equal(t, Stats{
		Extracted:    3,
		Merged:       1,
		Approved:     2,
		Rejected:     1,
		KindsDropped: 1,
	}, result.Stats)
	assert.Empty(t, result.Failures)
}

func TestValidatedExtractor_HybridKeepsFlaggedKinds(t *testing.T) {
	client := &fakeClient{responses: []fakeStructuredResponse{
		{payload: `{"candidates": [{"name": "pricing pressure", "confidence": 0.9}]}`},
		{payload: `{"candidates": [{"name": "churn risk", "confidence": 0.85}]}`},
		{payload: `{"candidates": []}`},
		{payload: `{"relationships": [{"source": "pricing pressure", "target": "churn risk", "kind": "echoes", "strength": 0.9}]}`},
	}}
	extractor := newTestValidatedExtractor(client, consolidation.ModeHybrid)

	result, err := extractor.Extract(context.Background(), "interview text")
	require.NoError(t, err)

	require.Len(t, result.Relationships, 1)
	assert.Equal(t, "echoes", result.Relationships[0].Kind)
	assert.True(t, result.Relationships[0].Flagged)
	assert.Equal(t, 0, result.Stats.KindsDropped)
}

func TestValidatedExtractor_AllPassesFailedPropagates(t *testing.T) {
	client := &fakeClient{responses: []fakeStructuredResponse{{err: assert.AnError}}}
	extractor := newTestValidatedExtractor(client, consolidation.ModeOpen)

	result, err := extractor.Extract(context.Background(), "interview text")
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestValidatedExtractor_PassFailuresSurfaceInStats(t *testing.T) {
	client := &fakeClient{responses: []fakeStructuredResponse{
		{payload: `{"candidates": [{"name": "pricing pressure", "confidence": 0.9}]}`},
		{err: assert.AnError},
		{err: assert.AnError},
	}}
	extractor := newTestValidatedExtractor(client, consolidation.ModeOpen)

	result, err := extractor.Extract(context.Background(), "interview text")
	require.NoError(t, err)

	assert.Len(t, result.Candidates, 1)
	assert.Equal(t, 2, result.Stats.PassFailures)
	assert.Len(t, result.Failures, 2)
}
