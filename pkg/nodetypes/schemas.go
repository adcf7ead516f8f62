package nodetypes

// JSON schemas for node config bags, validated with gojsonschema. Schemas
// are deliberately permissive: they type-check known fields without marking
// them required, because configs are filled incrementally from the editor's
// side panel and only the publish gate enforces completeness.

var triggerSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"scheduleType": map[string]any{
			"type": "string",
			"enum": []any{"immediate", "scheduled"},
		},
		"scheduledDate": map[string]any{"type": "string"},
		"scheduledTime": map[string]any{"type": "string"},
		"connections": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"categories": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
}

var textSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"content":       map[string]any{"type": "string"},
		"useVariations": map[string]any{"type": "boolean"},
		"variations": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
}

var mediaSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"url":           map[string]any{"type": "string"},
		"filename":      map[string]any{"type": "string"},
		"caption":       map[string]any{"type": "string"},
		"useVariations": map[string]any{"type": "boolean"},
		"variations":    map[string]any{"type": "array"},
	},
}

var aiSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"provider": map[string]any{
			"type": "string",
			"enum": []any{"openai", "groq"},
		},
		"prompt":    map[string]any{"type": "string"},
		"model":     map[string]any{"type": "string"},
		"maxTokens": map[string]any{"type": "number"},
	},
}

var actionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"actionType": map[string]any{"type": "string"},
		"value":      map[string]any{"type": "string"},
	},
}

var conditionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"variable": map[string]any{"type": "string"},
		"operator": map[string]any{"type": "string"},
		"value":    map[string]any{"type": "string"},
	},
}

var delaySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"amount": map[string]any{"type": "number"},
		"unit": map[string]any{
			"type": "string",
			"enum": []any{"seconds", "minutes", "hours", "days"},
		},
	},
}

var httpRestSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"method": map[string]any{
			"type": "string",
			"enum": []any{"GET", "POST", "PUT", "PATCH", "DELETE", "get", "post", "put", "patch", "delete"},
		},
		"url":     map[string]any{"type": "string"},
		"headers": map[string]any{"type": "object"},
		"body":    map[string]any{"type": "string"},
	},
}

var perfexSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"action": map[string]any{"type": "string"},
		"target": map[string]any{"type": "string"},
	},
}

var chatwootSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"action": map[string]any{"type": "string"},
		"tags": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
}
