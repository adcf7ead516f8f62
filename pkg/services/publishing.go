// Package services provides campaign lifecycle operations behind the HTTP API.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zapflow/zapflow/pkg/eventbus"
	"github.com/zapflow/zapflow/pkg/events"
	"github.com/zapflow/zapflow/pkg/graph"
	"github.com/zapflow/zapflow/pkg/models"
	"github.com/zapflow/zapflow/pkg/persistence"
)

// scheduleLayout is the combined wall-clock layout a trigger's scheduled_date
// and scheduled_time fields produce. Parsed in the server's local zone.
const scheduleLayout = "2006-01-02 15:04"

// allowedTransitions is the campaign status transition table. Completed is
// terminal and has no row.
var allowedTransitions = map[models.CampaignStatus][]models.CampaignStatus{
	models.CampaignStatusDraft:     {models.CampaignStatusScheduled, models.CampaignStatusStarted},
	models.CampaignStatusScheduled: {models.CampaignStatusStarted, models.CampaignStatusPaused, models.CampaignStatusCompleted},
	models.CampaignStatusStarted:   {models.CampaignStatusPaused, models.CampaignStatusCompleted},
	models.CampaignStatusPaused:    {models.CampaignStatusStarted, models.CampaignStatusCompleted},
}

// CanTransition reports whether the status change is allowed.
func CanTransition(from, to models.CampaignStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}

	return false
}

// Publishing moves campaigns through their lifecycle: the draft publish gate
// plus pause, resume, and complete.
type Publishing struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	logger      *slog.Logger
}

// NewPublishing creates a new campaign publishing service.
func NewPublishing(persistence persistence.Persistence, eventBus eventbus.EventBus, logger *slog.Logger) *Publishing {
	return &Publishing{
		persistence: persistence,
		eventBus:    eventBus,
		logger:      logger.With("service", "publishing"),
	}
}

// Publish validates a draft campaign and moves it to started or scheduled.
// The campaign is saved before the transition so a failed transition never
// loses graph edits. A non-nil startAt overrides the trigger's own schedule
// and always yields a scheduled campaign.
func (p *Publishing) Publish(ctx context.Context, campaignID string, startAt *time.Time) (*models.Campaign, error) {
	campaign, err := p.persistence.CampaignRepository().GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	trigger, err := validateForPublishing(campaign)
	if err != nil {
		return nil, err
	}

	target := models.CampaignStatusScheduled
	scheduledAt := startAt

	if startAt == nil {
		target, scheduledAt, err = resolveSchedule(trigger)
		if err != nil {
			return nil, err
		}
	}

	if !CanTransition(campaign.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, campaign.Status, target)
	}

	// Persist the graph as validated before flipping the status.
	campaign.UpdatedAt = time.Now().UTC()
	if err := p.persistence.CampaignRepository().Save(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}

	campaign.Status = target
	campaign.ScheduledDate = scheduledAt
	campaign.ConnectionID = connectionID(trigger)
	campaign.UpdatedAt = time.Now().UTC()

	if err := p.persistence.CampaignRepository().Save(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to transition campaign: %w", err)
	}

	p.publishEvent(ctx, campaign.ID, events.CampaignPublished{
		BaseEvent:     p.baseEvent(events.CampaignPublishedEvent, campaign.ID),
		ScheduledDate: scheduledAt,
		NodeCount:     len(campaign.Graph.Nodes),
	})

	if target == models.CampaignStatusStarted {
		p.publishEvent(ctx, campaign.ID, events.CampaignStarted{
			BaseEvent: p.baseEvent(events.CampaignStartedEvent, campaign.ID),
		})
	}

	p.logger.InfoContext(ctx, "Campaign published",
		"campaign_id", campaign.ID, "status", campaign.Status, "scheduled_date", scheduledAt)

	return campaign, nil
}

// Pause suspends a running or scheduled campaign.
func (p *Publishing) Pause(ctx context.Context, campaignID string) (*models.Campaign, error) {
	campaign, err := p.transition(ctx, campaignID, models.CampaignStatusPaused)
	if err != nil {
		return nil, err
	}

	p.publishEvent(ctx, campaign.ID, events.CampaignPaused{
		BaseEvent: p.baseEvent(events.CampaignPausedEvent, campaign.ID),
	})

	return campaign, nil
}

// Resume restarts a paused campaign.
func (p *Publishing) Resume(ctx context.Context, campaignID string) (*models.Campaign, error) {
	campaign, err := p.transition(ctx, campaignID, models.CampaignStatusStarted)
	if err != nil {
		return nil, err
	}

	p.publishEvent(ctx, campaign.ID, events.CampaignStarted{
		BaseEvent: p.baseEvent(events.CampaignStartedEvent, campaign.ID),
	})

	return campaign, nil
}

// Complete moves a campaign to its terminal status.
func (p *Publishing) Complete(ctx context.Context, campaignID string) (*models.Campaign, error) {
	campaign, err := p.transition(ctx, campaignID, models.CampaignStatusCompleted)
	if err != nil {
		return nil, err
	}

	p.publishEvent(ctx, campaign.ID, events.CampaignCompleted{
		BaseEvent: p.baseEvent(events.CampaignCompletedEvent, campaign.ID),
	})

	return campaign, nil
}

// Start promotes a scheduled campaign whose start time has arrived. Used by
// the activator, not exposed over HTTP.
func (p *Publishing) Start(ctx context.Context, campaignID string) (*models.Campaign, error) {
	campaign, err := p.transition(ctx, campaignID, models.CampaignStatusStarted)
	if err != nil {
		return nil, err
	}

	p.publishEvent(ctx, campaign.ID, events.CampaignStarted{
		BaseEvent: p.baseEvent(events.CampaignStartedEvent, campaign.ID),
	})

	return campaign, nil
}

func (p *Publishing) transition(ctx context.Context, campaignID string, target models.CampaignStatus) (*models.Campaign, error) {
	campaign, err := p.persistence.CampaignRepository().GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	if !CanTransition(campaign.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, campaign.Status, target)
	}

	campaign.Status = target
	campaign.UpdatedAt = time.Now().UTC()

	if err := p.persistence.CampaignRepository().Save(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to transition campaign: %w", err)
	}

	p.logger.InfoContext(ctx, "Campaign transitioned", "campaign_id", campaign.ID, "status", target)

	return campaign, nil
}

// validateForPublishing runs the publish gate and returns the single trigger
// node on success. Checks run in a fixed order so the first failure reported
// is always the same for a given graph.
func validateForPublishing(campaign *models.Campaign) (*models.FlowNode, error) {
	if campaign.Graph == nil {
		return nil, ErrMissingTrigger
	}

	if err := graph.NewBuilder(campaign.Graph).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGraph, err)
	}

	triggers := campaign.Graph.TriggerNodes()

	switch {
	case len(triggers) == 0:
		return nil, ErrMissingTrigger
	case len(triggers) > 1:
		return nil, ErrMultipleTriggers
	}

	trigger := triggers[0]
	config := trigger.Config()

	if len(stringSlice(config["connections"])) == 0 {
		return nil, ErrMissingConnection
	}

	if len(stringSlice(config["categories"])) == 0 {
		return nil, ErrMissingCategory
	}

	return trigger, nil
}

// resolveSchedule decides the post-publish status from the trigger's start
// mode. Immediate triggers start now; scheduled triggers need both a date and
// a time, combined in the server's local zone.
func resolveSchedule(trigger *models.FlowNode) (models.CampaignStatus, *time.Time, error) {
	config := trigger.Config()

	mode, _ := config["scheduleType"].(string)
	if mode != "scheduled" {
		return models.CampaignStatusStarted, nil, nil
	}

	date, _ := config["scheduledDate"].(string)
	clock, _ := config["scheduledTime"].(string)

	if date == "" || clock == "" {
		return "", nil, ErrInvalidSchedule
	}

	at, err := time.ParseInLocation(scheduleLayout, date+" "+clock, time.Local)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	return models.CampaignStatusScheduled, &at, nil
}

// connectionID returns the trigger's first selected connection, the one the
// runtime sends from.
func connectionID(trigger *models.FlowNode) string {
	connections := stringSlice(trigger.Config()["connections"])
	if len(connections) == 0 {
		return ""
	}

	return connections[0]
}

// stringSlice reads a config value that arrives from JSON as []any.
func stringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))

		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}

		return out
	default:
		return nil
	}
}

func (p *Publishing) baseEvent(eventType events.EventType, campaignID string) events.BaseEvent {
	id := uuid.New().String()
	if p.eventBus != nil {
		id = p.eventBus.GenerateID()
	}

	return events.BaseEvent{
		ID:         id,
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		CampaignID: campaignID,
	}
}

func (p *Publishing) publishEvent(ctx context.Context, key string, event eventbus.Event) {
	if p.eventBus == nil {
		return
	}

	if err := p.eventBus.Publish(ctx, key, event); err != nil {
		p.logger.WarnContext(ctx, "Failed to publish campaign event",
			"campaign_id", key, "event_type", event.GetType(), "error", err)
	}
}
