package ai

// JSON schemas sent with each schema-constrained generation call. Keeping the
// response shape pinned on the wire is what makes the payloads parsable into
// the report and question types without post-hoc repair.

var questionSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":   map[string]any{"type": "integer"},
			"type": map[string]any{"type": "string", "enum": []string{"multiple-choice"}},
			"text": map[string]any{"type": "string"},
			"options": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 3,
				"maxItems": 3,
			},
		},
		"required": []string{"id", "type", "text", "options"},
	},
}

var chartPointSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":  map[string]any{"type": "string"},
			"value": map[string]any{"type": "integer"},
		},
		"required": []string{"name", "value"},
	},
}

var analysisSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"overallScore":          map[string]any{"type": "integer"},
		"strengths":             map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"weaknesses":            map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"optimizations":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"responseSpeedAnalysis": map[string]any{"type": "string"},
		"cognitiveBiases": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"bias":        map[string]any{"type": "string"},
					"explanation": map[string]any{"type": "string"},
				},
				"required": []string{"bias", "explanation"},
			},
		},
		"questionBreakdown": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"questionText": map[string]any{"type": "string"},
					"userAnswer":   map[string]any{"type": "string"},
					"aiFeedback":   map[string]any{"type": "string"},
				},
				"required": []string{"questionText", "userAnswer", "aiFeedback"},
			},
		},
		"performanceData":    chartPointSchema,
		"decisionMakingData": chartPointSchema,
		"suggestedResources": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"keywords": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"references": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"title": map[string]any{"type": "string"},
							"url":   map[string]any{"type": "string"},
						},
						"required": []string{"title", "url"},
					},
				},
			},
			"required": []string{"keywords", "references"},
		},
	},
	"required": []string{
		"overallScore", "strengths", "weaknesses", "optimizations",
		"responseSpeedAnalysis", "cognitiveBiases", "questionBreakdown",
		"performanceData", "decisionMakingData", "suggestedResources",
	},
}

var scenarioSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":          map[string]any{"type": "string"},
		"name":        map[string]any{"type": "string"},
		"jobType":     map[string]any{"type": "string"},
		"level":       map[string]any{"type": "string", "enum": []string{"Newbie", "Expert", "Specialist"}},
		"description": map[string]any{"type": "string"},
		"tags":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []string{"id", "name", "jobType", "level", "description", "tags"},
}

var subtaskSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"xp":    map[string]any{"type": "integer"},
		},
		"required": []string{"title", "xp"},
	},
	"minItems": 3,
	"maxItems": 7,
}
