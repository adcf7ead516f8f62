package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/zapflow/zapflow/pkg/cache"
	"github.com/zapflow/zapflow/pkg/eventbus"
	"github.com/zapflow/zapflow/pkg/events"
	"github.com/zapflow/zapflow/pkg/graph"
	"github.com/zapflow/zapflow/pkg/models"
	"github.com/zapflow/zapflow/pkg/persistence"
)

// ErrCampaignNotFound is returned when a campaign is not found.
var ErrCampaignNotFound = persistence.ErrCampaignNotFound

// Campaign handles campaign CRUD and duplication. Lifecycle transitions live
// in the Publishing service.
type Campaign struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	reportCache cache.ReportCache
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewCampaign creates a new campaign service. The report cache is optional;
// pass nil to skip invalidation.
func NewCampaign(
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	reportCache cache.ReportCache,
	logger *slog.Logger,
) *Campaign {
	return &Campaign{
		persistence: persistence,
		eventBus:    eventBus,
		reportCache: reportCache,
		validator:   validator.New(),
		logger:      logger.With("service", "campaign"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Campaign) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// CreateCampaignRequest contains the fields for creating a campaign.
type CreateCampaignRequest struct {
	Name string `validate:"required,min=3"`
}

// Create creates a new draft campaign with an empty graph.
func (s *Campaign) Create(ctx context.Context, req CreateCampaignRequest) (*models.Campaign, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCampaignNameRequired, err)
	}

	now := time.Now().UTC()
	campaign := &models.Campaign{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Status:    models.CampaignStatusDraft,
		Graph:     models.NewFlowGraph(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.persistence.CampaignRepository().Save(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}

	s.logger.InfoContext(ctx, "Campaign created", "campaign_id", campaign.ID, "name", campaign.Name)

	return campaign, nil
}

// FetchAll retrieves all campaigns, most recently created first.
func (s *Campaign) FetchAll(ctx context.Context) ([]*models.Campaign, error) {
	campaigns, err := s.persistence.CampaignRepository().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	return campaigns, nil
}

// FetchByID retrieves a single campaign by id.
func (s *Campaign) FetchByID(ctx context.Context, id string) (*models.Campaign, error) {
	campaign, err := s.persistence.CampaignRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return campaign, nil
}

// UpdateCampaignRequest carries the mutable fields of a campaign. Nil fields
// are left untouched. Status changes go through the Publishing service, never
// through Update.
type UpdateCampaignRequest struct {
	Name          *string           `validate:"omitempty,min=3"`
	Graph         *models.FlowGraph `validate:"omitempty"`
	ScheduledDate *time.Time
}

// Update renames a campaign, replaces its graph, or moves its scheduled
// start. Graph replacement is only allowed while the campaign is a draft,
// and the incoming graph must pass structural validation before it is
// persisted.
func (s *Campaign) Update(ctx context.Context, id string, req UpdateCampaignRequest) (*models.Campaign, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCampaignNameRequired, err)
	}

	campaign, err := s.persistence.CampaignRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	if req.Name != nil {
		campaign.Name = *req.Name
	}

	if req.Graph != nil {
		if !campaign.Editable() {
			return nil, ErrCampaignNotEditable
		}

		if err := graph.NewBuilder(req.Graph).Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidGraph, err)
		}

		campaign.Graph = req.Graph
	}

	if req.ScheduledDate != nil {
		campaign.ScheduledDate = req.ScheduledDate
	}

	campaign.UpdatedAt = time.Now().UTC()

	if err := s.persistence.CampaignRepository().Save(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}

	s.invalidateReport(ctx, campaign.ID)

	return campaign, nil
}

// Delete removes a campaign and its sessions, then emits a deleted event.
func (s *Campaign) Delete(ctx context.Context, id string) error {
	if _, err := s.persistence.CampaignRepository().GetByID(ctx, id); err != nil {
		return fmt.Errorf("failed to get campaign: %w", err)
	}

	if err := s.persistence.CampaignRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	s.invalidateReport(ctx, id)
	s.publish(ctx, id, events.CampaignDeleted{
		BaseEvent: s.baseEvent(events.CampaignDeletedEvent, id),
	})

	s.logger.InfoContext(ctx, "Campaign deleted", "campaign_id", id)

	return nil
}

// Duplicate copies a campaign into a fresh draft. The copy gets new node and
// edge ids so the two graphs never alias, keeps node configurations, and
// resets all lifecycle fields.
func (s *Campaign) Duplicate(ctx context.Context, id string) (*models.Campaign, error) {
	source, err := s.persistence.CampaignRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	duplicated := source.Graph.Clone()
	remapNodeIDs(duplicated)

	now := time.Now().UTC()
	clone := &models.Campaign{
		ID:        uuid.New().String(),
		Name:      source.Name + " (copy)",
		Status:    models.CampaignStatusDraft,
		Graph:     duplicated,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.persistence.CampaignRepository().Save(ctx, clone); err != nil {
		return nil, fmt.Errorf("failed to save duplicated campaign: %w", err)
	}

	s.publish(ctx, clone.ID, events.CampaignDuplicated{
		BaseEvent:        s.baseEvent(events.CampaignDuplicatedEvent, clone.ID),
		SourceCampaignID: source.ID,
	})

	s.logger.InfoContext(ctx, "Campaign duplicated", "campaign_id", clone.ID, "source_campaign_id", source.ID)

	return clone, nil
}

// remapNodeIDs assigns fresh ids to every node and edge, rewriting edge
// endpoints to match. Node ids keep the {type}-{uuid} shape.
func remapNodeIDs(g *models.FlowGraph) {
	ids := make(map[string]string, len(g.Nodes))

	for _, node := range g.Nodes {
		fresh := fmt.Sprintf("%s-%s", node.Type, uuid.New().String())
		ids[node.ID] = fresh
		node.ID = fresh
	}

	for _, edge := range g.Edges {
		edge.ID = uuid.New().String()

		if fresh, ok := ids[edge.Source]; ok {
			edge.Source = fresh
		}

		if fresh, ok := ids[edge.Target]; ok {
			edge.Target = fresh
		}
	}
}

func (s *Campaign) baseEvent(eventType events.EventType, campaignID string) events.BaseEvent {
	id := uuid.New().String()
	if s.eventBus != nil {
		id = s.eventBus.GenerateID()
	}

	return events.BaseEvent{
		ID:         id,
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		CampaignID: campaignID,
	}
}

// publish emits a lifecycle event. Event delivery is best effort; a bus
// failure never rolls back the persisted state change.
func (s *Campaign) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.eventBus == nil {
		return
	}

	if err := s.eventBus.Publish(ctx, key, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish campaign event",
			"campaign_id", key, "event_type", event.GetType(), "error", err)
	}
}

func (s *Campaign) invalidateReport(ctx context.Context, campaignID string) {
	if s.reportCache == nil {
		return
	}

	if err := s.reportCache.Invalidate(ctx, campaignID); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate report cache",
			"campaign_id", campaignID, "error", err)
	}
}
