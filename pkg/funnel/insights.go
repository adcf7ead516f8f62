package funnel

import (
	"fmt"

	"github.com/zapflow/zapflow/pkg/models"
)

// Insight levels. These are presentation hints for the report view, not
// alerts requiring operator action.
const (
	LevelPositive = "positive"
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelCritical = "critical"
)

// Completion rate bands and the drop-off reporting threshold.
const (
	completionExcellent  = 70.0
	completionAcceptable = 40.0
	dropOffThreshold     = 10.0
)

// Insight is a qualitative observation derived deterministically from the
// computed metrics.
type Insight struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func deriveInsights(result *Result, sessions []*models.Session) []Insight {
	insights := make([]Insight, 0, 4)

	switch {
	case result.CompletionRate >= completionExcellent:
		insights = append(insights, Insight{
			Level:   LevelPositive,
			Message: fmt.Sprintf("Excellent completion rate: %.1f%% of sessions reach the end of the flow", result.CompletionRate),
		})
	case result.CompletionRate >= completionAcceptable:
		insights = append(insights, Insight{
			Level:   LevelInfo,
			Message: fmt.Sprintf("Acceptable completion rate: %.1f%% of sessions reach the end of the flow", result.CompletionRate),
		})
	default:
		insights = append(insights, Insight{
			Level:   LevelCritical,
			Message: fmt.Sprintf("Critical completion rate: only %.1f%% of sessions reach the end of the flow", result.CompletionRate),
		})
	}

	if step, ok := maxDropOffStep(result.Steps); ok && step.DropOff > dropOffThreshold {
		insights = append(insights, Insight{
			Level:   LevelWarning,
			Message: fmt.Sprintf("Largest drop-off at step %d (%s): %.1f%% of sessions are lost there", step.Index+1, step.NodeType, step.DropOff),
		})
	}

	stats := models.CountSessions(sessions)

	if stats.Failed > 0 || stats.Expired > 0 {
		insights = append(insights, Insight{
			Level:   LevelWarning,
			Message: fmt.Sprintf("%d failed and %d expired sessions detected; check connection health and session timeouts", stats.Failed, stats.Expired),
		})
	}

	if stats.Failed == 0 && stats.Expired == 0 && result.CompletionRate >= completionExcellent {
		insights = append(insights, Insight{
			Level:   LevelPositive,
			Message: "No failed sessions and a high completion rate; the flow is performing well",
		})
	}

	return insights
}

func maxDropOffStep(steps []StepMetrics) (StepMetrics, bool) {
	if len(steps) == 0 {
		return StepMetrics{}, false
	}

	top := steps[0]
	for _, step := range steps[1:] {
		if step.DropOff > top.DropOff {
			top = step
		}
	}

	return top, true
}
