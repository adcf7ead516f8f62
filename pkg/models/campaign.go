// Package models defines the core domain models for interactive campaign automation.
package models

import "time"

// CampaignStatus represents the lifecycle state of an interactive campaign.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"     // Editable, not executable
	CampaignStatusScheduled CampaignStatus = "scheduled" // Published with a future start date
	CampaignStatusStarted   CampaignStatus = "started"   // Actively executing sessions
	CampaignStatusPaused    CampaignStatus = "paused"    // Execution suspended
	CampaignStatusCompleted CampaignStatus = "completed" // Terminal, no outgoing transition
)

// Campaign represents a multi-step WhatsApp conversational automation built
// as a directed graph of typed nodes.
type Campaign struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"                     validate:"required,min=3"`
	Status        CampaignStatus `json:"status"                   validate:"required"`
	Graph         *FlowGraph     `json:"graph"`
	ConnectionID  string         `json:"connection_id,omitempty"`
	ScheduledDate *time.Time     `json:"scheduled_date,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsTerminal reports whether the campaign can no longer change status.
func (c *Campaign) IsTerminal() bool {
	return c.Status == CampaignStatusCompleted
}

// Editable reports whether the campaign graph may still be mutated.
func (c *Campaign) Editable() bool {
	return c.Status == CampaignStatusDraft
}
