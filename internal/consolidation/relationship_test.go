// internal/consolidation/relationship_test.go
package consolidation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gt-analyzer/internal/common/logger"
	"gt-analyzer/internal/models"
)

func TestRelationshipConsolidator_StandardizeKind(t *testing.T) {
	tests := []struct {
		name        string
		mode        string
		raw         string
		wantKind    string
		wantOutcome KindOutcome
	}{
		{
			name:        "exact match",
			mode:        ModeClosed,
			raw:         "causes",
			wantKind:    "causes",
			wantOutcome: OutcomeMapped,
		},
		{
			name:        "alias match",
			mode:        ModeClosed,
			raw:         "leads to",
			wantKind:    "causes",
			wantOutcome: OutcomeMapped,
		},
		{
			name:        "alias with case and underscores",
			mode:        ModeClosed,
			raw:         "Leads_To",
			wantKind:    "causes",
			wantOutcome: OutcomeMapped,
		},
		{
			name:        "strategy alias",
			mode:        ModeClosed,
			raw:         "copes with",
			wantKind:    "strategy_for",
			wantOutcome: OutcomeMapped,
		},
		{
			name:        "unmapped in open mode",
			mode:        ModeOpen,
			raw:         "echoes",
			wantKind:    "echoes",
			wantOutcome: OutcomePreserved,
		},
		{
			name:        "unmapped in closed mode",
			mode:        ModeClosed,
			raw:         "echoes",
			wantKind:    "",
			wantOutcome: OutcomeDropped,
		},
		{
			name:        "unmapped in hybrid mode",
			mode:        ModeHybrid,
			raw:         "echoes",
			wantKind:    "echoes",
			wantOutcome: OutcomeFlagged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consolidator := NewRelationshipConsolidator(nil, tt.mode, logger.NewNoOpLogger())
			kind, outcome := consolidator.StandardizeKind(tt.raw)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantOutcome, outcome)
		})
	}
}

func TestRelationshipConsolidator_StandardizeCandidates_ClosedDropsUnmapped(t *testing.T) {
	consolidator := NewRelationshipConsolidator(nil, ModeClosed, logger.NewNoOpLogger())
	candidates := []models.RelationshipCandidate{
		{Source: "pricing_pressure", Target: "churn_risk", Kind: "leads to", Strength: 0.8},
		{Source: "pricing_pressure", Target: "margin_loss", Kind: "echoes", Strength: 0.7},
	}

	kept, stats := consolidator.StandardizeCandidates(candidates)

	require.Len(t, kept, 1)
	assert.Equal(t, "causes", kept[0].Kind)
	assert.False(t, kept[0].Flagged)
	assert.Equal(t, RelationshipStats{Processed: 2, Mapped: 1, Dropped: 1}, stats)
}

func TestRelationshipConsolidator_StandardizeCandidates_HybridFlagsUnmapped(t *testing.T) {
	consolidator := NewRelationshipConsolidator(nil, ModeHybrid, logger.NewNoOpLogger())
	candidates := []models.RelationshipCandidate{
		{Source: "pricing_pressure", Target: "churn_risk", Kind: "leads to", Strength: 0.8},
		{Source: "pricing_pressure", Target: "margin_loss", Kind: "echoes", Strength: 0.7},
	}

	kept, stats := consolidator.StandardizeCandidates(candidates)

	require.Len(t, kept, 2)
	assert.Equal(t, "causes", kept[0].Kind)
	assert.False(t, kept[0].Flagged)
	assert.Equal(t, "echoes", kept[1].Kind)
	assert.True(t, kept[1].Flagged)
	assert.Equal(t, RelationshipStats{Processed: 2, Mapped: 1, Flagged: 1}, stats)
}

func TestRelationshipConsolidator_StandardizeRelationships(t *testing.T) {
	consolidator := NewRelationshipConsolidator(nil, ModeOpen, logger.NewNoOpLogger())
	relationships := []models.AxialRelationship{
		{CentralCategory: "pricing_pressure", RelatedCategory: "churn_risk", Kind: "results in", Strength: 0.9},
		{CentralCategory: "pricing_pressure", RelatedCategory: "discounting", Kind: "echoes", Strength: 0.6},
	}

	kept, stats := consolidator.StandardizeRelationships(relationships)

	require.Len(t, kept, 2)
	assert.Equal(t, "causes", kept[0].Kind)
	assert.Equal(t, "echoes", kept[1].Kind)
	assert.Equal(t, RelationshipStats{Processed: 2, Mapped: 1, Preserved: 1}, stats)
}
