// Package web provides HTTP handlers and REST API endpoints for campaign management.
package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/zapflow/zapflow/pkg/models"
	"github.com/zapflow/zapflow/pkg/nodetypes"
	"github.com/zapflow/zapflow/pkg/persistence"
	"github.com/zapflow/zapflow/pkg/services"
)

type APIHandlers struct {
	campaignService   *services.Campaign
	publishingService *services.Publishing
	reportService     *services.Report
	reference         persistence.ReferenceRepository
	validator         *validator.Validate
	registry          *nodetypes.Registry
}

func NewAPIHandlers(
	campaignService *services.Campaign,
	publishingService *services.Publishing,
	reportService *services.Report,
	reference persistence.ReferenceRepository,
	validator *validator.Validate,
	registry *nodetypes.Registry,
) *APIHandlers {
	return &APIHandlers{
		campaignService:   campaignService,
		publishingService: publishingService,
		reportService:     reportService,
		reference:         reference,
		validator:         validator,
		registry:          registry,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	repositoryCheck, repOk := h.campaignService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Zapflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "Zapflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetCampaigns(c fiber.Ctx) error {
	campaigns, err := h.campaignService.FetchAll(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"campaigns":   campaigns,
		"total_count": len(campaigns),
	})
}

func (h *APIHandlers) GetCampaign(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Campaign ID is required")
	}

	campaign, err := h.campaignService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsCampaignNotFound(err) {
			return notFound(c, "Campaign not found")
		}

		return internalError(c, err)
	}

	return c.JSON(h.decorate(campaign))
}

func (h *APIHandlers) CreateCampaign(c fiber.Ctx) error {
	var req CreateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.campaignService.Create(c.Context(), services.CreateCampaignRequest{Name: req.Name})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateCampaign(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Campaign ID is required")
	}

	var req UpdateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.campaignService.Update(c.Context(), id, services.UpdateCampaignRequest{
		Name:          req.Name,
		Graph:         req.Graph,
		ScheduledDate: req.ScheduledDate,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.decorate(updated))
}

func (h *APIHandlers) DeleteCampaign(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Campaign ID is required")
	}

	if err := h.campaignService.Delete(c.Context(), id); err != nil {
		if persistence.IsCampaignNotFound(err) {
			return notFound(c, "Campaign not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) PublishCampaign(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Campaign ID is required")
	}

	var req PublishCampaignRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	published, err := h.publishingService.Publish(c.Context(), id, req.ScheduledDate)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(published)
}

func (h *APIHandlers) PauseCampaign(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Campaign ID is required")
	}

	paused, err := h.publishingService.Pause(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(paused)
}

func (h *APIHandlers) ResumeCampaign(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Campaign ID is required")
	}

	resumed, err := h.publishingService.Resume(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(resumed)
}

func (h *APIHandlers) CompleteCampaign(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Campaign ID is required")
	}

	completed, err := h.publishingService.Complete(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(completed)
}

func (h *APIHandlers) DuplicateCampaign(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Campaign ID is required")
	}

	duplicated, err := h.campaignService.Duplicate(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(duplicated)
}

func (h *APIHandlers) GetCampaignReport(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Campaign ID is required")
	}

	report, err := h.reportService.Fetch(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(report)
}

func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	types := make([]NodeTypeResponse, 0)

	for _, nodeType := range h.registry.Types() {
		def, _ := h.registry.Get(nodeType)
		types = append(types, NodeTypeResponse{Type: def.Type, Name: def.Name})
	}

	return c.JSON(fiber.Map{"node_types": types})
}

func (h *APIHandlers) GetConnections(c fiber.Ctx) error {
	connections, err := h.reference.Connections(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"connections": connections})
}

func (h *APIHandlers) GetCategories(c fiber.Ctx) error {
	categories, err := h.reference.Categories(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"categories": categories})
}

// decorate attaches derived node summaries and advisory config warnings to a
// campaign response.
func (h *APIHandlers) decorate(campaign *models.Campaign) CampaignResponse {
	response := CampaignResponse{Campaign: campaign}

	if campaign.Graph == nil {
		return response
	}

	summaries := make(map[string]string, len(campaign.Graph.Nodes))
	warnings := make([]NodeWarning, 0)

	for _, node := range campaign.Graph.Nodes {
		summaries[node.ID] = h.registry.Describe(node.Type, node.Data.Config)

		if problems := h.registry.ValidateConfig(node.Type, node.Data.Config); len(problems) > 0 {
			warnings = append(warnings, NodeWarning{
				NodeID:   node.ID,
				NodeType: string(node.Type),
				Problems: problems,
			})
		}
	}

	response.NodeSummaries = summaries
	response.Warnings = warnings

	return response
}
