package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapflow/zapflow/pkg/models"
	"github.com/zapflow/zapflow/pkg/persistence"
)

func TestCampaignSaveAndGet(t *testing.T) {
	repo := NewCampaignRepository(t.TempDir())
	ctx := context.Background()

	campaign := &models.Campaign{
		ID:     "campaign-1",
		Name:   "Welcome flow",
		Status: models.CampaignStatusDraft,
		Graph: &models.FlowGraph{
			Nodes: []*models.FlowNode{{ID: "trigger-1", Type: models.NodeTypeTrigger}},
		},
		CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.Save(ctx, campaign))

	loaded, err := repo.GetByID(ctx, "campaign-1")
	require.NoError(t, err)
	assert.Equal(t, "Welcome flow", loaded.Name)
	require.Len(t, loaded.Graph.Nodes, 1)
}

func TestCampaignGetNotFound(t *testing.T) {
	repo := NewCampaignRepository(t.TempDir())

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, persistence.IsCampaignNotFound(err))
}

func TestCampaignGetRepairsNilGraph(t *testing.T) {
	repo := NewCampaignRepository(t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.Campaign{ID: "campaign-1", Name: "No graph"}))

	loaded, err := repo.GetByID(ctx, "campaign-1")
	require.NoError(t, err)
	require.NotNil(t, loaded.Graph)
	assert.Empty(t, loaded.Graph.Nodes)
}

func TestCampaignListNewestFirst(t *testing.T) {
	repo := NewCampaignRepository(t.TempDir())
	ctx := context.Background()

	base := time.Now().UTC()

	for i, id := range []string{"older", "newest", "oldest"} {
		offsets := []time.Duration{-time.Hour, 0, -2 * time.Hour}

		require.NoError(t, repo.Save(ctx, &models.Campaign{
			ID:        id,
			Name:      id,
			CreatedAt: base.Add(offsets[i]),
		}))
	}

	campaigns, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, campaigns, 3)

	assert.Equal(t, "newest", campaigns[0].ID)
	assert.Equal(t, "older", campaigns[1].ID)
	assert.Equal(t, "oldest", campaigns[2].ID)
}

func TestCampaignListEmptyDir(t *testing.T) {
	repo := NewCampaignRepository(t.TempDir())

	campaigns, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, campaigns)
}

func TestCampaignDeleteCascadesSessions(t *testing.T) {
	root := t.TempDir()
	filePersistence := NewPersistence(root)
	ctx := context.Background()

	require.NoError(t, filePersistence.CampaignRepository().Save(ctx, &models.Campaign{ID: "campaign-1", Name: "Throwaway"}))
	require.NoError(t, filePersistence.SessionRepository().Save(ctx, &models.Session{ID: "s1", CampaignID: "campaign-1"}))

	require.NoError(t, filePersistence.CampaignRepository().Delete(ctx, "campaign-1"))

	err := filePersistence.CampaignRepository().Delete(ctx, "campaign-1")
	assert.True(t, persistence.IsCampaignNotFound(err))

	sessions, err := filePersistence.SessionRepository().ListByCampaign(ctx, "campaign-1")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
