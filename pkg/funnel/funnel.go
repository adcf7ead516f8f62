// Package funnel computes reach, delivery, and drop-off analytics for a
// published campaign from per-session node visitation records.
package funnel

import "github.com/zapflow/zapflow/pkg/models"

// StepMetrics holds the computed metrics for one flow step.
type StepMetrics struct {
	Index           int     `json:"index"`
	NodeID          string  `json:"node_id"`
	NodeType        string  `json:"node_type"`
	Reached         int     `json:"reached"`
	Sent            int     `json:"sent"`
	ReachPercentage float64 `json:"reach_percentage"`
	SuccessRate     float64 `json:"success_rate"`
	DropOff         float64 `json:"drop_off"`
}

// Result is the full funnel computation for a campaign.
type Result struct {
	TotalSessions  int           `json:"total_sessions"`
	Steps          []StepMetrics `json:"steps"`
	CompletionRate float64       `json:"completion_rate"`
	Insights       []Insight     `json:"insights"`
}

// Compute derives per-step metrics and insights from an ordered flow node
// sequence and the campaign's sessions. All percentages are division-safe:
// a zero denominator yields 0, never NaN.
func Compute(flowNodes []*models.FlowNode, sessions []*models.Session) *Result {
	result := &Result{
		TotalSessions: len(sessions),
		Steps:         make([]StepMetrics, 0, len(flowNodes)),
	}

	previousReached := len(sessions)

	for i, node := range flowNodes {
		reached := 0
		sent := 0

		for _, session := range sessions {
			visit, ok := session.Visited(node.ID)
			if !ok {
				continue
			}

			reached++

			if visit.Sent {
				sent++
			}
		}

		step := StepMetrics{
			Index:           i,
			NodeID:          node.ID,
			NodeType:        string(node.Type),
			Reached:         reached,
			Sent:            sent,
			ReachPercentage: percentage(reached, len(sessions)),
			SuccessRate:     percentage(sent, reached),
			DropOff:         percentage(previousReached-reached, previousReached),
		}

		result.Steps = append(result.Steps, step)
		previousReached = reached
	}

	if len(result.Steps) > 0 {
		last := result.Steps[len(result.Steps)-1]
		result.CompletionRate = percentage(last.Reached, len(sessions))
	}

	result.Insights = deriveInsights(result, sessions)

	return result
}

func percentage(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}

	return float64(numerator) / float64(denominator) * 100
}
