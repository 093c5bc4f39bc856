// internal/prompts/schemas.go
package prompts

import "gt-analyzer/internal/models"

// Stage schemas describe the JSON shape each stage prompt asks for. They
// pin required fields and types only; confidence and strength ranges are
// left to the quality validator so one bad candidate rejects that
// candidate instead of forcing a full-response retry.

var OpenCodingSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"codes": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":             map[string]interface{}{"type": "string"},
					"description":      map[string]interface{}{"type": "string"},
					"properties":       map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					"dimensions":       map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					"supportingQuotes": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					"frequency":        map[string]interface{}{"type": "integer"},
					"confidence":       map[string]interface{}{"type": "number"},
					"parent":           map[string]interface{}{"type": "string"},
					"level":            map[string]interface{}{"type": "integer"},
					"children":         map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				},
				"required": []string{"name", "frequency", "confidence", "level"},
			},
		},
	},
	"required": []string{"codes"},
}

var AxialCodingSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"relationships": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"centralCategory": map[string]interface{}{"type": "string"},
					"relatedCategory": map[string]interface{}{"type": "string"},
					"kind":            map[string]interface{}{"type": "string"},
					"conditions":      map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					"consequences":    map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					"evidence":        map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					"strength":        map[string]interface{}{"type": "number"},
				},
				"required": []string{"centralCategory", "relatedCategory", "kind", "strength"},
			},
		},
	},
	"required": []string{"relationships"},
}

var SelectiveCodingSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"coreCategories": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":                  map[string]interface{}{"type": "string"},
					"definition":            map[string]interface{}{"type": "string"},
					"centralPhenomenon":     map[string]interface{}{"type": "string"},
					"relatedCategories":     map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					"theoreticalProperties": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					"explanatoryPower":      map[string]interface{}{"type": "number"},
					"integrationRationale":  map[string]interface{}{"type": "string"},
				},
				"required": []string{"name"},
			},
		},
	},
	"required": []string{"coreCategories"},
}

var TheoryIntegrationSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"theoreticalModel": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name":                    map[string]interface{}{"type": "string"},
				"coreCategories":          map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				"narrativeFramework":      map[string]interface{}{"type": "string"},
				"propositions":            map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				"conceptualRelationships": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				"scopeConditions":         map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				"implications":            map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				"futureResearch":          map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			},
			"required": []string{"name", "coreCategories", "narrativeFramework"},
		},
	},
	"required": []string{"theoreticalModel"},
}

// EntityPassSchema is shared by every entity extraction pass; the expected
// candidate kind varies by pass but the shape does not.
var EntityPassSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"candidates": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":       map[string]interface{}{"type": "string"},
					"kind":       map[string]interface{}{"type": "string"},
					"confidence": map[string]interface{}{"type": "number"},
					"context":    map[string]interface{}{"type": "string"},
					"quotes":     map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				},
				"required": []string{"name", "confidence"},
			},
		},
	},
	"required": []string{"candidates"},
}

var RelationshipPassSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"relationships": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source":   map[string]interface{}{"type": "string"},
					"target":   map[string]interface{}{"type": "string"},
					"kind":     map[string]interface{}{"type": "string"},
					"strength": map[string]interface{}{"type": "number"},
					"evidence": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				},
				"required": []string{"source", "target", "kind", "strength"},
			},
		},
	},
	"required": []string{"relationships"},
}

// SchemaFor returns the response schema for a workflow stage.
func SchemaFor(stage models.Stage) map[string]interface{} {
	switch stage {
	case models.StageOpenCoding:
		return OpenCodingSchema
	case models.StageAxialCoding:
		return AxialCodingSchema
	case models.StageSelectiveCoding:
		return SelectiveCodingSchema
	case models.StageTheoryIntegration:
		return TheoryIntegrationSchema
	default:
		return nil
	}
}
