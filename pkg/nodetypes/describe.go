package nodetypes

import (
	"fmt"
	"path"
	"strings"

	"github.com/zapflow/zapflow/pkg/models"
)

// actionLabels maps the action node's actionType sub-field to its summary.
var actionLabels = map[string]string{
	"add_tag":          "Add tag to contact",
	"remove_tag":       "Remove tag from contact",
	"assign_agent":     "Assign to agent",
	"move_category":    "Move contact to category",
	"mark_resolved":    "Mark conversation resolved",
	"send_transcript":  "Send conversation transcript",
	"notify_team":      "Notify team",
	"update_attribute": "Update contact attribute",
}

// conditionLabels maps the condition node's operator to display text.
var conditionLabels = map[string]string{
	"equals":       "equals",
	"not_equals":   "is not",
	"contains":     "contains",
	"not_contains": "does not contain",
	"starts_with":  "starts with",
	"greater_than": "is greater than",
	"less_than":    "is less than",
}

// delayUnitLabels maps the delay node's unit field to display text.
var delayUnitLabels = map[string]string{
	"seconds": "seconds",
	"minutes": "minutes",
	"hours":   "hours",
	"days":    "days",
}

// chatwootActionLabels maps the Chatwoot integration action to display text.
var chatwootActionLabels = map[string]string{
	"add_tags":     "Add tags",
	"remove_tags":  "Remove tags",
	"open_ticket":  "Open conversation",
	"close_ticket": "Close conversation",
}

// perfexActionLabels maps the Perfex CRM integration action to display text.
var perfexActionLabels = map[string]string{
	"create_lead":     "Create lead",
	"update_lead":     "Update lead",
	"create_task":     "Create task",
	"create_customer": "Create customer",
}

func builtinDefinitions() []Definition {
	return []Definition{
		{Type: models.NodeTypeTrigger, Name: "Trigger", Describe: describeTrigger, Schema: triggerSchema},
		{Type: models.NodeTypeText, Name: "Text message", Describe: describeText, Schema: textSchema},
		{Type: models.NodeTypeImage, Name: "Image", Describe: describeMedia("image"), Schema: mediaSchema},
		{Type: models.NodeTypeVideo, Name: "Video", Describe: describeMedia("video"), Schema: mediaSchema},
		{Type: models.NodeTypeAudio, Name: "Audio", Describe: describeMedia("audio"), Schema: mediaSchema},
		{Type: models.NodeTypeDocument, Name: "Document", Describe: describeMedia("document"), Schema: mediaSchema},
		{Type: models.NodeTypeAI, Name: "AI response", Describe: describeAI, Schema: aiSchema},
		{Type: models.NodeTypeAction, Name: "Action", Describe: describeAction, Schema: actionSchema},
		{Type: models.NodeTypeCondition, Name: "Condition", Describe: describeCondition, Schema: conditionSchema},
		{Type: models.NodeTypeDelay, Name: "Delay", Describe: describeDelay, Schema: delaySchema},
		{Type: models.NodeTypeHTTPRest, Name: "HTTP request", Describe: describeHTTPRest, Schema: httpRestSchema},
		{Type: models.NodeTypeStop, Name: "Stop", Describe: describeStop, Schema: nil},
		{Type: models.NodeTypeIntegrationPerfex, Name: "Perfex CRM", Describe: describePerfex, Schema: perfexSchema},
		{Type: models.NodeTypeIntegrationChatwoot, Name: "Chatwoot", Describe: describeChatwoot, Schema: chatwootSchema},
	}
}

func describeTrigger(config map[string]any) string {
	mode := "Immediate start"
	if stringField(config, "scheduleType") == "scheduled" {
		date := stringField(config, "scheduledDate")
		clock := stringField(config, "scheduledTime")

		if date != "" && clock != "" {
			mode = fmt.Sprintf("Scheduled for %s %s", date, clock)
		} else {
			mode = "Scheduled (incomplete)"
		}
	}

	connections := sliceLen(config, "connections")
	categories := sliceLen(config, "categories")

	parts := []string{mode}

	if connections == 0 {
		parts = append(parts, "⚠ no connections")
	} else {
		parts = append(parts, fmt.Sprintf("%d connection%s", connections, plural(connections)))
	}

	if categories == 0 {
		parts = append(parts, "⚠ no categories")
	} else {
		parts = append(parts, fmt.Sprintf("%d categor%s", categories, pluralY(categories)))
	}

	return strings.Join(parts, " · ")
}

func describeText(config map[string]any) string {
	if boolField(config, "useVariations") {
		count := sliceLen(config, "variations")
		if count == 0 {
			return "Configure text variations"
		}

		return fmt.Sprintf("%d text variation%s", count, plural(count))
	}

	content := stringField(config, "content")
	if content == "" {
		return "Configure message text"
	}

	return excerpt(content, 30)
}

// describeMedia builds the summary function shared by the four media node
// types. The filename drives the preview icon, so it is surfaced here too.
func describeMedia(kind string) DescribeFunc {
	return func(config map[string]any) string {
		if boolField(config, "useVariations") {
			count := sliceLen(config, "variations")
			if count == 0 {
				return fmt.Sprintf("Configure %s variations", kind)
			}

			return fmt.Sprintf("%d %s variation%s", count, kind, plural(count))
		}

		url := stringField(config, "url")
		if url == "" {
			return fmt.Sprintf("Configure %s", kind)
		}

		filename := stringField(config, "filename")
		if filename == "" {
			filename = path.Base(url)
		}

		extension := strings.TrimPrefix(path.Ext(filename), ".")
		if extension == "" {
			return fmt.Sprintf("%s configured: %s", capitalize(kind), filename)
		}

		return fmt.Sprintf("%s configured: %s (%s)", capitalize(kind), filename, strings.ToUpper(extension))
	}
}

func describeAI(config map[string]any) string {
	provider := stringField(config, "provider")
	if provider != "openai" && provider != "groq" {
		provider = ""
	}

	prompt := stringField(config, "prompt")

	switch {
	case provider == "" && prompt == "":
		return "Configure AI response"
	case prompt == "":
		return fmt.Sprintf("AI (%s): configure prompt", provider)
	case provider == "":
		return "AI: " + excerpt(prompt, 20)
	default:
		return fmt.Sprintf("AI (%s): %s", provider, excerpt(prompt, 20))
	}
}

func describeAction(config map[string]any) string {
	label, ok := actionLabels[stringField(config, "actionType")]
	if !ok {
		return "Configure action"
	}

	return label
}

func describeCondition(config map[string]any) string {
	variable := stringField(config, "variable")
	operator, ok := conditionLabels[stringField(config, "operator")]
	value := stringField(config, "value")

	if variable == "" || !ok {
		return "Configure condition"
	}

	return fmt.Sprintf("If %s %s %q", variable, operator, value)
}

func describeDelay(config map[string]any) string {
	amount := intField(config, "amount")
	unit, ok := delayUnitLabels[stringField(config, "unit")]

	if amount <= 0 || !ok {
		return "Configure delay"
	}

	return fmt.Sprintf("Wait %d %s", amount, unit)
}

func describeHTTPRest(config map[string]any) string {
	method := strings.ToUpper(stringField(config, "method"))
	url := stringField(config, "url")

	if method == "" || url == "" {
		return "Configure HTTP request"
	}

	return fmt.Sprintf("%s %s", method, excerpt(url, 40))
}

func describeStop(_ map[string]any) string {
	return "End of flow"
}

func describePerfex(config map[string]any) string {
	label, ok := perfexActionLabels[stringField(config, "action")]
	if !ok {
		return "Configure Perfex CRM integration"
	}

	target := stringField(config, "target")
	if target == "" {
		return label
	}

	return fmt.Sprintf("%s: %s", label, target)
}

func describeChatwoot(config map[string]any) string {
	label, ok := chatwootActionLabels[stringField(config, "action")]
	if !ok {
		return "Configure Chatwoot integration"
	}

	tags := stringSlice(config, "tags")
	if len(tags) == 0 {
		return label
	}

	return fmt.Sprintf("%s: %s", label, strings.Join(tags, ", "))
}

// Config probing helpers. Config bags arrive from JSON, so values may be
// missing or of any type; every accessor degrades to a zero value.

func stringField(config map[string]any, key string) string {
	if config == nil {
		return ""
	}

	value, _ := config[key].(string)

	return strings.TrimSpace(value)
}

func boolField(config map[string]any, key string) bool {
	if config == nil {
		return false
	}

	value, _ := config[key].(bool)

	return value
}

func intField(config map[string]any, key string) int {
	if config == nil {
		return 0
	}

	switch value := config[key].(type) {
	case int:
		return value
	case float64:
		return int(value)
	default:
		return 0
	}
}

func sliceLen(config map[string]any, key string) int {
	if config == nil {
		return 0
	}

	value, _ := config[key].([]any)

	return len(value)
}

func stringSlice(config map[string]any, key string) []string {
	if config == nil {
		return nil
	}

	raw, _ := config[key].([]any)

	values := make([]string, 0, len(raw))

	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			values = append(values, s)
		}
	}

	return values
}

func excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit]) + "…"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

func plural(n int) string {
	if n == 1 {
		return ""
	}

	return "s"
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}

	return "ies"
}
