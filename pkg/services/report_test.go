package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapflow/zapflow/pkg/models"
	"github.com/zapflow/zapflow/pkg/persistence/file"
)

func TestReportFetch(t *testing.T) {
	filePersistence := file.NewPersistence(t.TempDir())
	service := NewReport(filePersistence, nil, nil, slog.Default())
	ctx := context.Background()

	campaign := &models.Campaign{
		ID:     "campaign-1",
		Name:   "Welcome flow",
		Status: models.CampaignStatusStarted,
		Graph: &models.FlowGraph{
			Nodes: []*models.FlowNode{
				// Authoring order differs from flow order on purpose.
				{ID: "text-1", Type: models.NodeTypeText},
				{ID: "trigger-1", Type: models.NodeTypeTrigger},
			},
			Edges: []*models.FlowEdge{{ID: "e1", Source: "trigger-1", Target: "text-1"}},
		},
	}
	require.NoError(t, filePersistence.CampaignRepository().Save(ctx, campaign))

	sessions := []*models.Session{
		{
			ID: "s1", CampaignID: "campaign-1", Status: models.SessionStatusCompleted,
			VisitedNodes: map[string]models.NodeVisit{"trigger-1": {Sent: true}, "text-1": {Sent: true}},
			StartedAt:    time.Now().Add(-time.Hour),
		},
		{
			ID: "s2", CampaignID: "campaign-1", Status: models.SessionStatusFailed,
			VisitedNodes: map[string]models.NodeVisit{"trigger-1": {Sent: false, Error: "blocked"}},
			StartedAt:    time.Now(),
		},
	}

	for _, session := range sessions {
		require.NoError(t, filePersistence.SessionRepository().Save(ctx, session))
	}

	report, err := service.Fetch(ctx, "campaign-1")
	require.NoError(t, err)

	assert.Equal(t, "campaign-1", report.Campaign.ID)
	assert.Len(t, report.Sessions, 2)

	// Flow nodes come back in execution order, trigger first.
	require.Len(t, report.FlowNodes, 2)
	assert.Equal(t, "trigger-1", report.FlowNodes[0].ID)
	assert.Equal(t, "text-1", report.FlowNodes[1].ID)

	assert.Equal(t, 2, report.Stats.Total)
	assert.Equal(t, 1, report.Stats.Completed)
	assert.Equal(t, 1, report.Stats.Failed)
}

func TestReportFetchUnknownCampaign(t *testing.T) {
	service := NewReport(file.NewPersistence(t.TempDir()), nil, nil, slog.Default())

	_, err := service.Fetch(context.Background(), "missing")
	require.Error(t, err)
}
