// internal/workflow/open_coding.go
package workflow

import (
	"context"
	"fmt"

	"gt-analyzer/internal/common/errors"
	"gt-analyzer/internal/models"
	"gt-analyzer/internal/prompts"
)

type openCodingPayload struct {
	Codes []*models.Code `json:"codes"`
}

// ExecuteOpenCoding requests a hierarchical coding scheme for the combined
// interview text, validates its structure, applies the frequency filter,
// and re-parents orphaned survivors to root.
func (w *Workflow) ExecuteOpenCoding(ctx context.Context, text string, result *models.AnalysisResult) error {
	ctx, done := w.stageSpan(ctx, models.StageOpenCoding)
	defer done()

	prompt := w.builder.Build(models.StageOpenCoding, text, w.cfg)

	var payload openCodingPayload
	if err := w.client.CompleteStructured(ctx, prompt, prompts.OpenCodingSchema, w.maxTokens, &payload); err != nil {
		return errors.NewStageFailedError(string(models.StageOpenCoding), err)
	}

	book := models.NewCodeBook(payload.Codes)

	issues := book.Validate()
	for _, issue := range issues {
		w.logger.Warn("Code hierarchy issue", map[string]interface{}{
			"code":   issue.Code,
			"kind":   issue.Kind,
			"detail": issue.Detail,
		})
	}

	filtered, filterStats := filterCodes(book.All(), w.cfg.MinimumCodeFrequency)

	result.Codes = filtered
	result.Metadata.Stats.CodesExtracted = book.Len()
	result.Metadata.Stats.CodesAfterFilter = len(filtered)
	result.Metadata.Stats.OrphansReparented = filterStats.Reparented
	result.Metadata.Stats.StructuralIssues += len(issues)

	w.logger.Info("Open coding completed", map[string]interface{}{
		"extracted":  book.Len(),
		"kept":       len(filtered),
		"reparented": filterStats.Reparented,
		"issues":     len(issues),
	})
	w.appendMemo(result, models.StageOpenCoding, fmt.Sprintf(
		"Open coding produced %d codes; %d survived the minimum frequency of %d, %d orphans were re-parented to root.",
		book.Len(), len(filtered), w.cfg.MinimumCodeFrequency, filterStats.Reparented))
	return nil
}

type codeFilterStats struct {
	Dropped    int
	Reparented int
}

// filterCodes drops codes under the frequency floor, prunes child links to
// dropped codes, re-parents surviving orphans to root, and renormalizes
// descendant levels so every child still sits one below its parent.
func filterCodes(codes []*models.Code, minFrequency int) ([]*models.Code, codeFilterStats) {
	stats := codeFilterStats{}
	kept := make([]*models.Code, 0, len(codes))
	for _, code := range codes {
		if code.Frequency < minFrequency {
			stats.Dropped++
			continue
		}
		kept = append(kept, code)
	}

	index := make(map[string]*models.Code, len(kept))
	for _, code := range kept {
		index[code.Name] = code
	}

	for _, code := range kept {
		var children []string
		for _, child := range code.Children {
			if index[child] != nil {
				children = append(children, child)
			}
		}
		code.Children = children

		if code.Parent != "" && index[code.Parent] == nil {
			code.Parent = ""
			code.Level = 0
			stats.Reparented++
		}
	}

	for _, code := range kept {
		if code.IsRoot() {
			code.Level = 0
			normalizeLevels(code, index)
		}
	}

	return kept, stats
}

func normalizeLevels(root *models.Code, index map[string]*models.Code) {
	visited := map[string]bool{root.Name: true}
	queue := []*models.Code{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, childName := range current.Children {
			child := index[childName]
			if child == nil || visited[childName] || child.Parent != current.Name {
				continue
			}
			visited[childName] = true
			child.Level = current.Level + 1
			queue = append(queue, child)
		}
	}
}
