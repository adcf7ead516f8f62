package funnel

import "github.com/zapflow/zapflow/pkg/models"

// ExportRow is one session projected to a flat tabular row: contact fields
// plus one cell per flow node.
type ExportRow struct {
	Name   string   `json:"name"`
	Phone  string   `json:"phone"`
	Status string   `json:"status"`
	Cells  []string `json:"cells"`
}

// ExportRows projects every session onto the flow node columns. Each cell is
// a formatted success marker with timestamp, a failure marker with the error
// text, or empty when the session never reached the node.
func ExportRows(flowNodes []*models.FlowNode, sessions []*models.Session) []ExportRow {
	rows := make([]ExportRow, 0, len(sessions))

	for _, session := range sessions {
		row := ExportRow{
			Name:   session.ContactName,
			Phone:  session.ContactPhone,
			Status: string(session.Status),
			Cells:  make([]string, 0, len(flowNodes)),
		}

		for _, node := range flowNodes {
			row.Cells = append(row.Cells, formatCell(session, node.ID))
		}

		rows = append(rows, row)
	}

	return rows
}

func formatCell(session *models.Session, nodeID string) string {
	visit, ok := session.Visited(nodeID)
	if !ok {
		return ""
	}

	if visit.Sent {
		if visit.VisitedAt != nil {
			return "✓ " + visit.VisitedAt.Format("02/01/2006 15:04")
		}

		return "✓"
	}

	if visit.Error != "" {
		return "✗ " + visit.Error
	}

	return "✗"
}
