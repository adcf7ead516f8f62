package lifecycle

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapflow/zapflow/pkg/models"
)

func TestGetCampaign(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/campaigns/campaign-1", r.URL.Path)

		_ = json.NewEncoder(w).Encode(models.Campaign{
			ID:     "campaign-1",
			Name:   "Welcome flow",
			Status: models.CampaignStatusDraft,
			Graph:  models.NewFlowGraph(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, slog.Default())

	campaign, err := client.GetCampaign(context.Background(), "campaign-1")
	require.NoError(t, err)
	assert.Equal(t, "Welcome flow", campaign.Name)
	require.NotNil(t, campaign.Graph)
}

func TestUpdateCampaignSendsPartialBody(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_ = json.NewEncoder(w).Encode(models.Campaign{ID: "campaign-1"})
	}))
	defer server.Close()

	client := NewClient(server.URL, slog.Default())

	name := "Renamed"
	_, err := client.UpdateCampaign(context.Background(), "campaign-1", UpdateCampaignRequest{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", received["name"])
	assert.NotContains(t, received, "graph", "nil fields stay out of the body")
}

func TestPublishCampaignSendsScheduleOverride(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/campaigns/campaign-1/publish", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_ = json.NewEncoder(w).Encode(models.Campaign{ID: "campaign-1", Status: models.CampaignStatusScheduled})
	}))
	defer server.Close()

	client := NewClient(server.URL, slog.Default())

	scheduledAt := time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)
	published, err := client.PublishCampaign(context.Background(), "campaign-1", &scheduledAt)
	require.NoError(t, err)

	assert.Equal(t, models.CampaignStatusScheduled, published.Status)
	assert.Contains(t, received, "scheduled_date")
}

func TestUpdateCampaignSendsScheduledDate(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_ = json.NewEncoder(w).Encode(models.Campaign{ID: "campaign-1"})
	}))
	defer server.Close()

	client := NewClient(server.URL, slog.Default())

	scheduledAt := time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)
	_, err := client.UpdateCampaign(context.Background(), "campaign-1", UpdateCampaignRequest{ScheduledDate: &scheduledAt})
	require.NoError(t, err)

	assert.Contains(t, received, "scheduled_date")
	assert.NotContains(t, received, "name")
}

func TestTimeoutIsDistinguishable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, slog.Default(), WithTimeout(20*time.Millisecond))

	_, err := client.GetCampaign(context.Background(), "campaign-1")
	require.ErrorIs(t, err, ErrTimeout)
}

func TestQuotaErrorPropagatesUpgradeFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"type":"quota_exceeded","title":"Forbidden","status":403,"detail":"campaign limit reached","upgrade_required":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, slog.Default())

	_, err := client.PublishCampaign(context.Background(), "campaign-1", nil)
	require.Error(t, err)

	quotaErr, ok := IsQuotaError(err)
	require.True(t, ok)
	assert.True(t, quotaErr.UpgradeRequired)
	assert.Equal(t, "campaign limit reached", quotaErr.Message)
}

func TestAPIErrorCarriesDecodedDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"validation_error","title":"Bad Request","status":400,"detail":"campaign has no trigger node"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, slog.Default())

	_, err := client.PublishCampaign(context.Background(), "campaign-1", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "campaign has no trigger node", apiErr.Detail)
}

func TestAPIErrorUndecodableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, slog.Default())

	_, err := client.GetCampaign(context.Background(), "campaign-1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Empty(t, apiErr.Detail, "generic fallback when the body is not a problem document")
}

func TestDeleteCampaignNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, slog.Default())

	require.NoError(t, client.DeleteCampaign(context.Background(), "campaign-1"))
}

func TestGetCampaignReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/campaigns/campaign-1/report", r.URL.Path)

		_ = json.NewEncoder(w).Encode(models.CampaignReport{
			Campaign: &models.Campaign{ID: "campaign-1"},
			Stats:    models.SessionStats{Total: 3, Completed: 2, Failed: 1},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, slog.Default())

	report, err := client.GetCampaignReport(context.Background(), "campaign-1")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Stats.Total)
}
