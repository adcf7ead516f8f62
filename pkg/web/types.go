// Package web provides HTTP request and response types for the campaign API.
package web

import (
	"time"

	"github.com/zapflow/zapflow/pkg/models"
)

// CreateCampaignRequest represents the request body for creating a campaign.
type CreateCampaignRequest struct {
	Name string `json:"name" validate:"required,min=3"`
}

// UpdateCampaignRequest represents the request body for updating a campaign.
// All fields are optional to support partial updates; the graph always
// arrives whole. Status is not updatable here; the lifecycle endpoints own
// status changes.
type UpdateCampaignRequest struct {
	Name          *string           `json:"name,omitempty"  validate:"omitempty,min=3"`
	Graph         *models.FlowGraph `json:"graph,omitempty"`
	ScheduledDate *time.Time        `json:"scheduled_date,omitempty"`
}

// PublishCampaignRequest is the optional publish body. A scheduled date here
// overrides the trigger node's own schedule settings.
type PublishCampaignRequest struct {
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
}

// NodeTypeResponse describes one registered node type for the editor palette.
type NodeTypeResponse struct {
	Type models.NodeType `json:"type"`
	Name string          `json:"name"`
}

// NodeWarning carries advisory config problems for a single node. Warnings
// never block saving; only publishing enforces requirements.
type NodeWarning struct {
	NodeID   string   `json:"node_id"`
	NodeType string   `json:"node_type"`
	Problems []string `json:"problems"`
}

// CampaignResponse wraps a campaign with derived per-node summaries.
type CampaignResponse struct {
	*models.Campaign

	NodeSummaries map[string]string `json:"node_summaries,omitempty"`
	Warnings      []NodeWarning     `json:"warnings,omitempty"`
}
