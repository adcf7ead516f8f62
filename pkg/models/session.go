package models

import "time"

// SessionStatus represents a contact's runtime progress state through a
// published flow. Sessions are owned by the execution runtime; this package
// only reads them for reporting.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
	SessionStatusExpired   SessionStatus = "expired"
)

// NodeVisit records the outcome of one node delivery attempt for a session.
type NodeVisit struct {
	Sent      bool       `json:"sent"`
	VisitedAt *time.Time `json:"visited_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Session tracks a single contact's progress through a published campaign.
// VisitedNodes is sparse: absence of a node id means the node was never
// reached for that session.
type Session struct {
	ID           string               `json:"id"`
	CampaignID   string               `json:"campaign_id"`
	ContactName  string               `json:"contact_name"`
	ContactPhone string               `json:"contact_phone"`
	Status       SessionStatus        `json:"status"`
	VisitedNodes map[string]NodeVisit `json:"visited_nodes"`
	StartedAt    time.Time            `json:"started_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// Visited returns the visit record for a node and whether it exists.
func (s *Session) Visited(nodeID string) (NodeVisit, bool) {
	visit, ok := s.VisitedNodes[nodeID]

	return visit, ok
}

// SessionStats aggregates session counts by status for a campaign.
type SessionStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Expired   int `json:"expired"`
}

// CountSessions tallies sessions by status.
func CountSessions(sessions []*Session) SessionStats {
	stats := SessionStats{Total: len(sessions)}

	for _, session := range sessions {
		switch session.Status {
		case SessionStatusActive:
			stats.Active++
		case SessionStatusCompleted:
			stats.Completed++
		case SessionStatusFailed:
			stats.Failed++
		case SessionStatusExpired:
			stats.Expired++
		}
	}

	return stats
}

// CampaignReport is the exact shape the report endpoint serves and the funnel
// engine consumes.
type CampaignReport struct {
	Campaign  *Campaign    `json:"campaign"`
	Sessions  []*Session   `json:"sessions"`
	FlowNodes []*FlowNode  `json:"flow_nodes"`
	Stats     SessionStats `json:"stats"`
}
