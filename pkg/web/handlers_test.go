package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapflow/zapflow/pkg/models"
	"github.com/zapflow/zapflow/pkg/nodetypes"
	"github.com/zapflow/zapflow/pkg/persistence/file"
	"github.com/zapflow/zapflow/pkg/services"
	"github.com/zapflow/zapflow/pkg/web"
)

func setupTestApp(t *testing.T) (*fiber.App, *file.Persistence) {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())
	logger := slog.Default()

	campaignService := services.NewCampaign(persistence, nil, nil, logger)
	publishingService := services.NewPublishing(persistence, nil, logger)
	reportService := services.NewReport(persistence, nil, nil, logger)

	handlers := web.NewAPIHandlers(
		campaignService,
		publishingService,
		reportService,
		persistence.ReferenceRepository(),
		validator.New(validator.WithRequiredStructEnabled()),
		nodetypes.NewRegistry(),
	)

	app := fiber.New()

	campaigns := app.Group("/campaigns")
	campaigns.Get("/", handlers.GetCampaigns)
	campaigns.Post("/", handlers.CreateCampaign)
	campaigns.Get("/:id", handlers.GetCampaign)
	campaigns.Patch("/:id", handlers.UpdateCampaign)
	campaigns.Delete("/:id", handlers.DeleteCampaign)
	campaigns.Post("/:id/publish", handlers.PublishCampaign)
	campaigns.Post("/:id/pause", handlers.PauseCampaign)
	campaigns.Post("/:id/resume", handlers.ResumeCampaign)
	campaigns.Post("/:id/complete", handlers.CompleteCampaign)
	campaigns.Post("/:id/duplicate", handlers.DuplicateCampaign)
	campaigns.Get("/:id/report", handlers.GetCampaignReport)

	app.Get("/node-types", handlers.GetNodeTypes)
	app.Get("/connections", handlers.GetConnections)
	app.Get("/categories", handlers.GetCategories)

	return app, persistence
}

func createCampaignViaAPI(t *testing.T, app *fiber.App, name string) models.Campaign {
	t.Helper()

	body, err := json.Marshal(web.CreateCampaignRequest{Name: name})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/campaigns", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var campaign models.Campaign
	decodeBody(t, resp.Body, &campaign)

	return campaign
}

func decodeBody(t *testing.T, body io.ReadCloser, out any) {
	t.Helper()

	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestCreateCampaign(t *testing.T) {
	app, _ := setupTestApp(t)

	campaign := createCampaignViaAPI(t, app, "Black Friday")

	assert.NotEmpty(t, campaign.ID)
	assert.Equal(t, "Black Friday", campaign.Name)
	assert.Equal(t, models.CampaignStatusDraft, campaign.Status)
	require.NotNil(t, campaign.Graph)
	assert.Empty(t, campaign.Graph.Nodes)
}

func TestCreateCampaignRejectsShortName(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/campaigns", bytes.NewBufferString(`{"name":"ab"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetCampaignNotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/campaigns/missing", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateCampaignGraphAndSummaries(t *testing.T) {
	app, _ := setupTestApp(t)
	campaign := createCampaignViaAPI(t, app, "Welcome flow")

	update := map[string]any{
		"graph": map[string]any{
			"nodes": []map[string]any{
				{"id": "trigger-1", "type": "trigger", "position": map[string]any{"x": 0, "y": 0}, "data": map[string]any{"config": map[string]any{}}},
				{"id": "text-1", "type": "text", "position": map[string]any{"x": 100, "y": 0}, "data": map[string]any{"config": map[string]any{"content": "Hello!"}}},
			},
			"edges": []map[string]any{
				{"id": "e1", "source": "trigger-1", "target": "text-1"},
			},
		},
	}

	body, err := json.Marshal(update)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/campaigns/"+campaign.ID, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var response web.CampaignResponse
	decodeBody(t, resp.Body, &response)

	require.Len(t, response.Graph.Nodes, 2)
	assert.Equal(t, "Hello!", response.NodeSummaries["text-1"])
	assert.Contains(t, response.NodeSummaries["trigger-1"], "Immediate start")
}

func TestPublishCampaignValidationError(t *testing.T) {
	app, _ := setupTestApp(t)
	campaign := createCampaignViaAPI(t, app, "Welcome flow")

	// Empty graph: no trigger node, so the gate rejects it.
	req := httptest.NewRequest(http.MethodPost, "/campaigns/"+campaign.ID+"/publish", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var problem struct {
		Type   string `json:"type"`
		Detail string `json:"detail"`
	}
	decodeBody(t, resp.Body, &problem)

	assert.Equal(t, "validation_error", problem.Type)
	assert.Contains(t, problem.Detail, "trigger")
}

func TestPublishedCampaignLifecycleOverAPI(t *testing.T) {
	app, persistence := setupTestApp(t)
	campaign := createCampaignViaAPI(t, app, "Welcome flow")

	// Wire a publishable graph directly through persistence.
	stored, err := persistence.CampaignRepository().GetByID(context.Background(), campaign.ID)
	require.NoError(t, err)

	stored.Graph = &models.FlowGraph{
		Nodes: []*models.FlowNode{
			{ID: "trigger-1", Type: models.NodeTypeTrigger, Data: models.NodeData{Config: map[string]any{
				"connections": []any{"conn-1"},
				"categories":  []any{"cat-1"},
			}}},
			{ID: "text-1", Type: models.NodeTypeText},
		},
		Edges: []*models.FlowEdge{{ID: "e1", Source: "trigger-1", Target: "text-1"}},
	}
	require.NoError(t, persistence.CampaignRepository().Save(context.Background(), stored))

	publish := httptest.NewRequest(http.MethodPost, "/campaigns/"+campaign.ID+"/publish", nil)
	resp, err := app.Test(publish)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var published models.Campaign
	decodeBody(t, resp.Body, &published)
	assert.Equal(t, models.CampaignStatusStarted, published.Status)

	pause := httptest.NewRequest(http.MethodPost, "/campaigns/"+campaign.ID+"/pause", nil)
	resp, err = app.Test(pause)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Pausing twice is a conflict.
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/campaigns/"+campaign.ID+"/pause", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	complete := httptest.NewRequest(http.MethodPost, "/campaigns/"+campaign.ID+"/complete", nil)
	resp, err = app.Test(complete)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var completed models.Campaign
	decodeBody(t, resp.Body, &completed)
	assert.Equal(t, models.CampaignStatusCompleted, completed.Status)
}

func TestPublishCampaignWithScheduleOverride(t *testing.T) {
	app, persistence := setupTestApp(t)
	campaign := createCampaignViaAPI(t, app, "Welcome flow")

	stored, err := persistence.CampaignRepository().GetByID(context.Background(), campaign.ID)
	require.NoError(t, err)

	stored.Graph = &models.FlowGraph{
		Nodes: []*models.FlowNode{
			{ID: "trigger-1", Type: models.NodeTypeTrigger, Data: models.NodeData{Config: map[string]any{
				"connections": []any{"conn-1"},
				"categories":  []any{"cat-1"},
			}}},
			{ID: "text-1", Type: models.NodeTypeText},
		},
		Edges: []*models.FlowEdge{{ID: "e1", Source: "trigger-1", Target: "text-1"}},
	}
	require.NoError(t, persistence.CampaignRepository().Save(context.Background(), stored))

	body := bytes.NewBufferString(`{"scheduled_date":"2025-06-01T09:00:00Z"}`)
	req := httptest.NewRequest(http.MethodPost, "/campaigns/"+campaign.ID+"/publish", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var published models.Campaign
	decodeBody(t, resp.Body, &published)

	assert.Equal(t, models.CampaignStatusScheduled, published.Status)
	require.NotNil(t, published.ScheduledDate)
	assert.Equal(t, "2025-06-01T09:00:00Z", published.ScheduledDate.UTC().Format("2006-01-02T15:04:05Z07:00"))
}

func TestUpdateCampaignScheduledDateOverAPI(t *testing.T) {
	app, persistence := setupTestApp(t)
	campaign := createCampaignViaAPI(t, app, "Welcome flow")

	stored, err := persistence.CampaignRepository().GetByID(context.Background(), campaign.ID)
	require.NoError(t, err)

	stored.Status = models.CampaignStatusScheduled
	require.NoError(t, persistence.CampaignRepository().Save(context.Background(), stored))

	body := bytes.NewBufferString(`{"scheduled_date":"2025-06-02T10:00:00Z"}`)
	req := httptest.NewRequest(http.MethodPatch, "/campaigns/"+campaign.ID, body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var response web.CampaignResponse
	decodeBody(t, resp.Body, &response)

	require.NotNil(t, response.ScheduledDate)
	assert.Equal(t, "2025-06-02T10:00:00Z", response.ScheduledDate.UTC().Format("2006-01-02T15:04:05Z07:00"))
}

func TestDuplicateCampaignOverAPI(t *testing.T) {
	app, _ := setupTestApp(t)
	campaign := createCampaignViaAPI(t, app, "Welcome flow")

	req := httptest.NewRequest(http.MethodPost, "/campaigns/"+campaign.ID+"/duplicate", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var copy models.Campaign
	decodeBody(t, resp.Body, &copy)

	assert.NotEqual(t, campaign.ID, copy.ID)
	assert.Equal(t, "Welcome flow (copy)", copy.Name)
	assert.Equal(t, models.CampaignStatusDraft, copy.Status)
}

func TestDeleteCampaignOverAPI(t *testing.T) {
	app, _ := setupTestApp(t)
	campaign := createCampaignViaAPI(t, app, "Throwaway")

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/campaigns/"+campaign.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/campaigns/"+campaign.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetCampaignReportOverAPI(t *testing.T) {
	app, _ := setupTestApp(t)
	campaign := createCampaignViaAPI(t, app, "Welcome flow")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/campaigns/"+campaign.ID+"/report", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report models.CampaignReport
	decodeBody(t, resp.Body, &report)

	assert.Equal(t, campaign.ID, report.Campaign.ID)
	assert.Equal(t, 0, report.Stats.Total)
}

func TestGetNodeTypes(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/node-types", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var response struct {
		NodeTypes []web.NodeTypeResponse `json:"node_types"`
	}
	decodeBody(t, resp.Body, &response)

	assert.Len(t, response.NodeTypes, 14)
}

func TestGetConnectionsAndCategories(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/connections", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/categories", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
