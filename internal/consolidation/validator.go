// internal/consolidation/validator.go
package consolidation

import (
	"fmt"
	"strings"

	"gt-analyzer/internal/models"
)

// Verdict is the validator's ruling on one candidate.
type Verdict string

const (
	VerdictApproved  Verdict = "approved"
	VerdictFlagged   Verdict = "flagged"   // accepted with a flagged issue
	VerdictTentative Verdict = "tentative" // accepted pending validation
	VerdictRejected  Verdict = "rejected"
)

// Assessment pairs a verdict with the issues that produced it.
type Assessment struct {
	Verdict Verdict  `json:"verdict"`
	Issues  []string `json:"issues,omitempty"`
}

// Accepted reports whether the candidate survives in any form.
func (a Assessment) Accepted() bool {
	return a.Verdict != VerdictRejected
}

// QualityValidator grades candidates against the configured confidence
// bands. Structural invalidity rejects regardless of confidence.
type QualityValidator struct {
	autoApprove float64
	review      float64
	validation  float64
}

func NewQualityValidator(autoApprove, review, validation float64) *QualityValidator {
	return &QualityValidator{
		autoApprove: autoApprove,
		review:      review,
		validation:  validation,
	}
}

func (v *QualityValidator) Validate(candidate models.Candidate) Assessment {
	if issues := candidateStructuralIssues(candidate); len(issues) > 0 {
		return Assessment{Verdict: VerdictRejected, Issues: issues}
	}
	return v.grade(candidate.Confidence)
}

// ValidateRelationship grades a relationship candidate, using strength as
// its confidence score.
func (v *QualityValidator) ValidateRelationship(candidate models.RelationshipCandidate) Assessment {
	if issues := relationshipStructuralIssues(candidate); len(issues) > 0 {
		return Assessment{Verdict: VerdictRejected, Issues: issues}
	}
	return v.grade(candidate.Strength)
}

func (v *QualityValidator) grade(confidence float64) Assessment {
	switch {
	case confidence >= v.autoApprove:
		return Assessment{Verdict: VerdictApproved}
	case confidence >= v.review:
		return Assessment{
			Verdict: VerdictFlagged,
			Issues:  []string{fmt.Sprintf("confidence %.2f below auto-approve threshold %.2f", confidence, v.autoApprove)},
		}
	case confidence >= v.validation:
		return Assessment{
			Verdict: VerdictTentative,
			Issues:  []string{fmt.Sprintf("confidence %.2f below review threshold %.2f, accepted tentatively", confidence, v.review)},
		}
	default:
		return Assessment{
			Verdict: VerdictRejected,
			Issues:  []string{fmt.Sprintf("confidence %.2f below validation threshold %.2f", confidence, v.validation)},
		}
	}
}

func candidateStructuralIssues(candidate models.Candidate) []string {
	var issues []string
	if strings.TrimSpace(candidate.Name) == "" {
		issues = append(issues, "candidate name is empty")
	}
	if candidate.Confidence < 0 || candidate.Confidence > 1 {
		issues = append(issues, fmt.Sprintf("confidence %.2f outside [0, 1]", candidate.Confidence))
	}
	return issues
}

func relationshipStructuralIssues(candidate models.RelationshipCandidate) []string {
	var issues []string
	if strings.TrimSpace(candidate.Source) == "" {
		issues = append(issues, "relationship source is empty")
	}
	if strings.TrimSpace(candidate.Target) == "" {
		issues = append(issues, "relationship target is empty")
	}
	if strings.TrimSpace(candidate.Kind) == "" {
		issues = append(issues, "relationship kind is empty")
	}
	if candidate.Strength < 0 || candidate.Strength > 1 {
		issues = append(issues, fmt.Sprintf("strength %.2f outside [0, 1]", candidate.Strength))
	}
	return issues
}
