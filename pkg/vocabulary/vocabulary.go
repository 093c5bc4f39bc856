// pkg/vocabulary/vocabulary.go
package vocabulary

import (
	"encoding/json"
	"os"
	"strings"
)

func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var vocab Vocabulary
	err = json.Unmarshal(data, &vocab)
	return &vocab, err
}

// Default returns the built-in relationship vocabulary covering the
// causal, contextual, strategic, and structural dimensions of axial coding.
func Default() *Vocabulary {
	return &Vocabulary{
		Version:     "1.0.0",
		LastUpdated: "2026-07-02",
		Kinds: []RelationshipKind{
			{
				Name:        "causes",
				Aliases:     []string{"leads to", "results in", "drives", "triggers", "causal"},
				Description: "Direct causal link from the central category to the related one",
				Category:    "causal",
			},
			{
				Name:        "influences",
				Aliases:     []string{"affects", "impacts", "shapes"},
				Description: "Weaker-than-causal directional effect",
				Category:    "causal",
			},
			{
				Name:        "contributes_to",
				Aliases:     []string{"supports", "feeds into", "reinforces"},
				Description: "Partial or additive causal contribution",
				Category:    "causal",
			},
			{
				Name:        "contextualizes",
				Aliases:     []string{"context of", "conditions", "frames", "situates"},
				Description: "Provides the setting in which the related category operates",
				Category:    "contextual",
			},
			{
				Name:        "intervenes_in",
				Aliases:     []string{"moderates", "mediates", "intervening condition"},
				Description: "Alters the strength or direction of another relationship",
				Category:    "contextual",
			},
			{
				Name:        "strategy_for",
				Aliases:     []string{"strategy", "response to", "copes with", "manages"},
				Description: "Action or interaction taken to handle the related phenomenon",
				Category:    "strategic",
			},
			{
				Name:        "consequence_of",
				Aliases:     []string{"result of", "outcome of", "follows from"},
				Description: "Outcome position in an action/consequence pair",
				Category:    "consequence",
			},
			{
				Name:        "part_of",
				Aliases:     []string{"belongs to", "component of", "subsumed by"},
				Description: "Compositional membership between categories",
				Category:    "structural",
			},
			{
				Name:        "associated_with",
				Aliases:     []string{"related to", "correlates with", "linked to"},
				Description: "Co-occurrence without a directional claim",
				Category:    "structural",
			},
			{
				Name:        "contradicts",
				Aliases:     []string{"conflicts with", "tension with", "opposes"},
				Description: "Negative or opposing relation between categories",
				Category:    "structural",
			},
		},
	}
}

// Normalize maps a free-form relationship type to its canonical kind,
// trying exact matches before aliases. The boolean reports whether a
// mapping was found.
func (v *Vocabulary) Normalize(raw string) (string, bool) {
	term := normalizeTerm(raw)
	if term == "" {
		return "", false
	}

	for _, kind := range v.Kinds {
		if normalizeTerm(kind.Name) == term {
			return kind.Name, true
		}
	}

	for _, kind := range v.Kinds {
		for _, alias := range kind.Aliases {
			if normalizeTerm(alias) == term {
				return kind.Name, true
			}
		}
	}

	return "", false
}

// Names returns the canonical kind names in declaration order.
func (v *Vocabulary) Names() []string {
	names := make([]string, 0, len(v.Kinds))
	for _, kind := range v.Kinds {
		names = append(names, kind.Name)
	}
	return names
}

func normalizeTerm(s string) string {
	fields := strings.Fields(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
	return strings.Join(fields, "_")
}
