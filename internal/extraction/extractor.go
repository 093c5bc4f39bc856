// internal/extraction/extractor.go
package extraction

import (
	"context"
	"fmt"
	"strings"

	"gt-analyzer/internal/common/errors"
	"gt-analyzer/internal/common/logger"
	"gt-analyzer/internal/llm"
	"gt-analyzer/internal/models"
	"gt-analyzer/internal/prompts"
)

// ==========================
// 1. EXTRACTION PASSES
// ==========================

// PassSpec describes one extraction pass: what kind of candidate it hunts
// for and the prompt template it runs. The template takes the text unit as
// its single formatting argument.
type PassSpec struct {
	Kind           models.CandidateKind
	PromptTemplate string
}

// Config drives the multi-pass extractor.
type Config struct {
	Passes               []PassSpec
	RelationshipPass     bool
	RelationshipTemplate string // takes the known-concept list and the text unit
	MaxTokens            int
}

// DefaultConfig returns the standard three entity passes plus the
// relationship pass.
func DefaultConfig() Config {
	return Config{
		Passes: []PassSpec{
			{Kind: models.KindConcept, PromptTemplate: conceptPassTemplate},
			{Kind: models.KindInVivo, PromptTemplate: inVivoPassTemplate},
			{Kind: models.KindProcess, PromptTemplate: processPassTemplate},
		},
		RelationshipPass:     true,
		RelationshipTemplate: relationshipPassTemplate,
		MaxTokens:            2048,
	}
}

const conceptPassTemplate = `You are a qualitative researcher performing open coding on interview data.
Identify the abstract concepts present in the text below. For each concept provide
a short snake_case name, a confidence between 0 and 1, the surrounding context,
and the supporting quotes copied verbatim from the text.

Interview text:
%s

Respond with JSON: {"candidates": [{"name": "...", "confidence": 0.0, "context": "...", "quotes": ["..."]}]}`

const inVivoPassTemplate = `You are a qualitative researcher performing open coding on interview data.
Extract in-vivo codes: the participants' own striking words and phrases, kept
verbatim as code names. For each provide the phrase as the name, a confidence
between 0 and 1, the surrounding context, and the supporting quotes.

Interview text:
%s

Respond with JSON: {"candidates": [{"name": "...", "confidence": 0.0, "context": "...", "quotes": ["..."]}]}`

const processPassTemplate = `You are a qualitative researcher performing open coding on interview data.
Identify the processes and actions unfolding in the text: gerund-form codes that
describe what participants are doing or undergoing over time. For each provide a
snake_case name, a confidence between 0 and 1, the surrounding context, and the
supporting quotes.

Interview text:
%s

Respond with JSON: {"candidates": [{"name": "...", "confidence": 0.0, "context": "...", "quotes": ["..."]}]}`

const relationshipPassTemplate = `You are a qualitative researcher relating concepts identified in interview data.
Known concepts: %s

For each plausible relationship between two known concepts, provide the source and
target concept names, a relationship kind, a strength between 0 and 1, and the
supporting evidence quotes.

Interview text:
%s

Respond with JSON: {"relationships": [{"source": "...", "target": "...", "kind": "...", "strength": 0.0, "evidence": ["..."]}]}`

// ==========================
// 2. EXTRACTOR
// ==========================

// PassFailure records one pass that failed terminally. Failures are
// in-band results, not errors: candidates from other passes stand.
type PassFailure struct {
	Pass    int                  `json:"pass"`
	Kind    models.CandidateKind `json:"kind"`
	Code    string               `json:"code"`
	Message string               `json:"message"`
}

// Result is the concatenation of all passes plus per-pass failure notes.
type Result struct {
	Candidates    []models.Candidate             `json:"candidates"`
	Relationships []models.RelationshipCandidate `json:"relationships"`
	Failures      []PassFailure                  `json:"failures,omitempty"`
}

// Extractor runs an ordered list of passes over a text unit. Passes are
// independent: they share no state beyond the input text, and results are
// decoded per pass and tagged with the pass index.
type Extractor struct {
	client               llm.Client
	passes               []PassSpec
	relationshipPass     bool
	relationshipTemplate string
	maxTokens            int
	logger               logger.Logger
}

func NewExtractor(client llm.Client, cfg Config, log logger.Logger) *Extractor {
	defaults := DefaultConfig()
	if len(cfg.Passes) == 0 {
		cfg.Passes = defaults.Passes
	}
	if cfg.RelationshipTemplate == "" {
		cfg.RelationshipTemplate = defaults.RelationshipTemplate
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	return &Extractor{
		client:               client,
		passes:               cfg.Passes,
		relationshipPass:     cfg.RelationshipPass,
		relationshipTemplate: cfg.RelationshipTemplate,
		maxTokens:            cfg.MaxTokens,
		logger:               log,
	}
}

type entityPassPayload struct {
	Candidates []models.Candidate `json:"candidates"`
}

type relationshipPassPayload struct {
	Relationships []models.RelationshipCandidate `json:"relationships"`
}

// Extract runs every configured pass and returns everything the passes
// produced. A terminal failure in one pass is recorded as a failure note
// and never discards candidates from other passes. Only the degenerate
// case, every entity pass failing terminally, returns an error; the
// result still carries the failure notes.
func (e *Extractor) Extract(ctx context.Context, text string) (*Result, error) {
	ctx = llm.WithStage(ctx, "extraction")
	result := &Result{}

	var lastErr error
	for i, pass := range e.passes {
		prompt := fmt.Sprintf(pass.PromptTemplate, text)

		var payload entityPassPayload
		if err := e.client.CompleteStructured(ctx, prompt, prompts.EntityPassSchema, e.maxTokens, &payload); err != nil {
			lastErr = err
			result.Failures = append(result.Failures, failureNote(i, pass.Kind, err))
			e.logger.WithError(err).Warn("Extraction pass failed", map[string]interface{}{
				"pass": i,
				"kind": string(pass.Kind),
			})
			continue
		}

		for j := range payload.Candidates {
			payload.Candidates[j].Kind = pass.Kind
			payload.Candidates[j].Pass = i
		}
		result.Candidates = append(result.Candidates, payload.Candidates...)
	}

	if len(e.passes) > 0 && len(result.Failures) == len(e.passes) {
		return result, lastErr
	}

	if e.relationshipPass {
		e.runRelationshipPass(ctx, text, result)
	}

	return result, nil
}

func (e *Extractor) runRelationshipPass(ctx context.Context, text string, result *Result) {
	passIndex := len(e.passes)
	names := make([]string, 0, len(result.Candidates))
	seen := make(map[string]struct{}, len(result.Candidates))
	for _, candidate := range result.Candidates {
		if _, ok := seen[candidate.Name]; ok {
			continue
		}
		seen[candidate.Name] = struct{}{}
		names = append(names, candidate.Name)
	}
	if len(names) < 2 {
		return
	}

	prompt := fmt.Sprintf(e.relationshipTemplate, strings.Join(names, ", "), text)

	var payload relationshipPassPayload
	if err := e.client.CompleteStructured(ctx, prompt, prompts.RelationshipPassSchema, e.maxTokens, &payload); err != nil {
		result.Failures = append(result.Failures, failureNote(passIndex, "relationship", err))
		e.logger.WithError(err).Warn("Relationship pass failed", map[string]interface{}{
			"pass": passIndex,
		})
		return
	}

	for j := range payload.Relationships {
		payload.Relationships[j].Pass = passIndex
	}
	result.Relationships = append(result.Relationships, payload.Relationships...)
}

func failureNote(pass int, kind models.CandidateKind, err error) PassFailure {
	stdErr := errors.Normalize(err)
	return PassFailure{
		Pass:    pass,
		Kind:    kind,
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
	}
}
