// internal/prompts/format.go
package prompts

import (
	"fmt"
	"strings"

	"gt-analyzer/internal/models"
)

// FormatCodes renders a code set as a prompt block, preserving slice order
// so identical input always renders identically.
func FormatCodes(codes []*models.Code) string {
	var parts []string
	parts = append(parts, "Coded categories:")
	for _, c := range codes {
		line := fmt.Sprintf("- %s (level %d, frequency %d, confidence %.2f)", c.Name, c.Level, c.Frequency, c.Confidence)
		if c.Parent != "" {
			line += fmt.Sprintf(" parent: %s", c.Parent)
		}
		parts = append(parts, line)
		if c.Description != "" {
			parts = append(parts, fmt.Sprintf("  %s", c.Description))
		}
	}
	return strings.Join(parts, "\n")
}

// FormatRelationships renders the axial relationship set as a prompt block.
func FormatRelationships(rels []models.AxialRelationship) string {
	var parts []string
	parts = append(parts, "Relationships:")
	for _, r := range rels {
		parts = append(parts, fmt.Sprintf("- %s %s %s (strength %.2f)", r.CentralCategory, r.Kind, r.RelatedCategory, r.Strength))
	}
	return strings.Join(parts, "\n")
}

// FormatCategories renders the core categories as a prompt block.
func FormatCategories(categories []models.CoreCategory) string {
	var parts []string
	parts = append(parts, "Core categories:")
	for _, c := range categories {
		parts = append(parts, fmt.Sprintf("- %s: %s", c.Name, c.Definition))
		if len(c.RelatedCategories) > 0 {
			parts = append(parts, fmt.Sprintf("  relates to: %s", strings.Join(c.RelatedCategories, ", ")))
		}
	}
	return strings.Join(parts, "\n")
}
