// Package events defines event types for campaign lifecycle notifications.
package events

import "time"

// EventType identifies a campaign lifecycle event on the bus.
type EventType string

// Topic is the bus topic campaign lifecycle events are published on.
const Topic = "zapflow.campaigns"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	CampaignPublishedEvent  EventType = "campaign.published"
	CampaignStartedEvent    EventType = "campaign.started"
	CampaignPausedEvent     EventType = "campaign.paused"
	CampaignCompletedEvent  EventType = "campaign.completed"
	CampaignDuplicatedEvent EventType = "campaign.duplicated"
	CampaignDeletedEvent    EventType = "campaign.deleted"
)

// BaseEvent carries the fields shared by all campaign events.
type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	CampaignID string    `json:"campaign_id"`
}

// CampaignPublished is emitted when a draft passes the publish gate. The
// scheduled date is nil for immediate starts.
type CampaignPublished struct {
	BaseEvent

	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	NodeCount     int        `json:"node_count"`
}

func (e CampaignPublished) GetType() EventType { return CampaignPublishedEvent }

// CampaignStarted is emitted when a campaign begins executing, either
// immediately on publish or when the scheduler promotes a scheduled one.
type CampaignStarted struct {
	BaseEvent
}

func (e CampaignStarted) GetType() EventType { return CampaignStartedEvent }

// CampaignPaused is emitted when execution is suspended.
type CampaignPaused struct {
	BaseEvent
}

func (e CampaignPaused) GetType() EventType { return CampaignPausedEvent }

// CampaignCompleted is emitted on the terminal transition.
type CampaignCompleted struct {
	BaseEvent
}

func (e CampaignCompleted) GetType() EventType { return CampaignCompletedEvent }

// CampaignDuplicated is emitted when a campaign is copied into a new draft.
type CampaignDuplicated struct {
	BaseEvent

	SourceCampaignID string `json:"source_campaign_id"`
}

func (e CampaignDuplicated) GetType() EventType { return CampaignDuplicatedEvent }

// CampaignDeleted is emitted after a campaign and its sessions are removed.
type CampaignDeleted struct {
	BaseEvent
}

func (e CampaignDeleted) GetType() EventType { return CampaignDeletedEvent }
