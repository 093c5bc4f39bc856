// internal/prompts/builder.go
package prompts

import (
	"fmt"
	"strings"

	"gt-analyzer/internal/common/config"
	"gt-analyzer/internal/models"
	"gt-analyzer/pkg/vocabulary"
)

// Builder renders stage prompts. Given the same stage, text, and
// configuration it always returns byte-identical output, so prompt text is
// a pure function of its inputs plus the injected vocabulary.
type Builder struct {
	vocab *vocabulary.Vocabulary
}

func NewBuilder(vocab *vocabulary.Vocabulary) *Builder {
	if vocab == nil {
		vocab = vocabulary.Default()
	}
	return &Builder{vocab: vocab}
}

// Build returns the literal prompt for one workflow stage.
func (b *Builder) Build(stage models.Stage, text string, cfg config.AnalysisConfig) string {
	switch stage {
	case models.StageOpenCoding:
		return b.buildOpenCoding(text, cfg)
	case models.StageAxialCoding:
		return b.buildAxialCoding(text, cfg)
	case models.StageSelectiveCoding:
		return b.buildSelectiveCoding(text, cfg)
	case models.StageTheoryIntegration:
		return b.buildTheoryIntegration(text, cfg)
	default:
		return ""
	}
}

func (b *Builder) buildOpenCoding(text string, cfg config.AnalysisConfig) string {
	var parts []string

	parts = append(parts, "You are a qualitative researcher performing open coding on interview data using grounded theory methodology.")
	parts = append(parts, sensitivityClause(cfg.TheoreticalSensitivity))
	parts = append(parts, depthClause(cfg.CodingDepth))
	parts = append(parts, "")
	parts = append(parts, "Interview data:")
	parts = append(parts, text)
	parts = append(parts, "")
	parts = append(parts, "Build a hierarchical coding scheme, not a flat list:")
	parts = append(parts, "- Root themes sit at level 0; each sub-code's level is its parent's level plus one.")
	parts = append(parts, "- Reference parents and children by exact code name and keep both directions consistent.")
	parts = append(parts, fmt.Sprintf("- Count how often each code appears; codes seen fewer than %d times will be discarded.", cfg.MinimumCodeFrequency))
	parts = append(parts, "- Score each code's confidence from 0 to 1 and attach supporting quotes.")
	parts = append(parts, "")
	parts = append(parts, `Respond with JSON only: {"codes": [{"name", "description", "properties", "dimensions", "supportingQuotes", "frequency", "confidence", "parent", "level", "children"}]}`)

	return strings.Join(parts, "\n")
}

func (b *Builder) buildAxialCoding(text string, cfg config.AnalysisConfig) string {
	var parts []string

	parts = append(parts, "You are a qualitative researcher performing axial coding: relate the coded categories along causal, contextual, and strategic dimensions.")
	parts = append(parts, sensitivityClause(cfg.TheoreticalSensitivity))
	parts = append(parts, "")
	parts = append(parts, text)
	parts = append(parts, "")
	parts = append(parts, vocabularyClause(cfg.VocabularyMode, b.vocab))
	parts = append(parts, fmt.Sprintf("Rate each relationship's strength from 0 to 1; relationships below %.2f will be discarded.", cfg.RelationshipConfidenceThreshold))
	parts = append(parts, "For each relationship name the conditions under which it holds, its consequences, and quote evidence.")
	parts = append(parts, "")
	parts = append(parts, `Respond with JSON only: {"relationships": [{"centralCategory", "relatedCategory", "kind", "conditions", "consequences", "evidence", "strength"}]}`)

	return strings.Join(parts, "\n")
}

func (b *Builder) buildSelectiveCoding(text string, cfg config.AnalysisConfig) string {
	var parts []string

	parts = append(parts, "You are a qualitative researcher performing selective coding: identify the core category or categories that organize this analysis.")
	parts = append(parts, sensitivityClause(cfg.TheoreticalSensitivity))
	parts = append(parts, "")
	parts = append(parts, text)
	parts = append(parts, "")
	parts = append(parts, "Select one or more core categories. A core category must be central to the data, recur across interviews, and relate to most other categories.")
	parts = append(parts, "For each, give a definition, the central phenomenon it captures, related category names, theoretical properties, an explanatory power score from 0 to 1, and the rationale for choosing it.")
	parts = append(parts, "")
	parts = append(parts, `Respond with JSON only: {"coreCategories": [{"name", "definition", "centralPhenomenon", "relatedCategories", "theoreticalProperties", "explanatoryPower", "integrationRationale"}]}`)

	return strings.Join(parts, "\n")
}

func (b *Builder) buildTheoryIntegration(text string, cfg config.AnalysisConfig) string {
	var parts []string

	parts = append(parts, "You are a qualitative researcher integrating a grounded theory from the completed open, axial, and selective coding below.")
	parts = append(parts, sensitivityClause(cfg.TheoreticalSensitivity))
	parts = append(parts, "")
	parts = append(parts, text)
	parts = append(parts, "")
	parts = append(parts, "Synthesize one theoretical model: name it, order the core categories, and write a narrative framework that explains how they interact.")
	parts = append(parts, "State testable propositions, the conceptual relationships between categories, the scope conditions bounding the theory, practical implications, and open questions for future research.")
	parts = append(parts, "")
	parts = append(parts, `Respond with JSON only: {"theoreticalModel": {"name", "coreCategories", "narrativeFramework", "propositions", "conceptualRelationships", "scopeConditions", "implications", "futureResearch"}}`)

	return strings.Join(parts, "\n")
}

func sensitivityClause(sensitivity string) string {
	switch sensitivity {
	case "low":
		return "Stay close to the participants' own words; avoid abstracting beyond what the data directly states."
	case "high":
		return "Abstract aggressively: read for latent meanings, silences, and theoretical constructs beneath the surface wording."
	default:
		return "Balance descriptive fidelity with conceptual abstraction; label what the data shows and one level above it."
	}
}

func depthClause(depth string) string {
	switch depth {
	case "surface":
		return "Keep the hierarchy shallow: root themes plus at most one sub-level."
	case "deep":
		return "Code exhaustively: develop three or four hierarchy levels and elaborate properties and dimensions for every code."
	default:
		return "Develop two or three hierarchy levels with properties and dimensions where the data supports them."
	}
}

func vocabularyClause(mode string, vocab *vocabulary.Vocabulary) string {
	switch mode {
	case "closed":
		return fmt.Sprintf("Use ONLY these relationship kinds: %s.", strings.Join(vocab.Names(), ", "))
	case "hybrid":
		return fmt.Sprintf("Prefer these relationship kinds: %s. Introduce a new kind only when none of them fits.", strings.Join(vocab.Names(), ", "))
	default:
		return "Name each relationship kind freely; causal, contextual, strategic, and structural kinds are all welcome."
	}
}
