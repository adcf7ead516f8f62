package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/zapflow/zapflow/pkg/models"
	"github.com/zapflow/zapflow/pkg/persistence"
)

// CampaignRepository stores each campaign as campaigns/{id}.json.
type CampaignRepository struct {
	root string
}

// NewCampaignRepository creates a new campaign repository.
func NewCampaignRepository(root string) *CampaignRepository {
	return &CampaignRepository{root: root}
}

func (cr *CampaignRepository) dir() string {
	return filepath.Join(cr.root, "campaigns")
}

func (cr *CampaignRepository) path(id string) string {
	return filepath.Join(cr.dir(), id+".json")
}

// List returns every stored campaign sorted by creation time, newest first.
func (cr *CampaignRepository) List(ctx context.Context) ([]*models.Campaign, error) {
	entries, err := fs.Glob(os.DirFS(cr.dir()), "*.json")
	if err != nil || len(entries) == 0 {
		return []*models.Campaign{}, nil
	}

	campaigns := make([]*models.Campaign, 0, len(entries))

	for _, entry := range entries {
		id := entry[:len(entry)-len(".json")]

		campaign, err := cr.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load campaign %s: %w", id, err)
		}

		campaigns = append(campaigns, campaign)
	}

	sort.Slice(campaigns, func(i, j int) bool {
		return campaigns[i].CreatedAt.After(campaigns[j].CreatedAt)
	})

	return campaigns, nil
}

// GetByID loads one campaign.
func (cr *CampaignRepository) GetByID(_ context.Context, id string) (*models.Campaign, error) {
	data, err := os.ReadFile(cr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewCampaignError("GetByID", id, persistence.ErrCampaignNotFound)
		}

		return nil, persistence.NewCampaignError("GetByID", id, err)
	}

	var campaign models.Campaign
	if err := json.Unmarshal(data, &campaign); err != nil {
		return nil, persistence.NewCampaignError("GetByID", id, err)
	}

	if campaign.Graph == nil {
		campaign.Graph = models.NewFlowGraph()
	}

	return &campaign, nil
}

// Save writes a campaign, creating the directory on first use.
func (cr *CampaignRepository) Save(_ context.Context, campaign *models.Campaign) error {
	if err := os.MkdirAll(cr.dir(), 0o755); err != nil {
		return persistence.NewCampaignError("Save", campaign.ID, err)
	}

	data, err := json.MarshalIndent(campaign, "", "  ")
	if err != nil {
		return persistence.NewCampaignError("Save", campaign.ID, err)
	}

	if err := os.WriteFile(cr.path(campaign.ID), data, 0o644); err != nil {
		return persistence.NewCampaignError("Save", campaign.ID, err)
	}

	return nil
}

// Delete removes a campaign file and its session directory.
func (cr *CampaignRepository) Delete(_ context.Context, id string) error {
	if err := os.Remove(cr.path(id)); err != nil {
		if os.IsNotExist(err) {
			return persistence.NewCampaignError("Delete", id, persistence.ErrCampaignNotFound)
		}

		return persistence.NewCampaignError("Delete", id, err)
	}

	// Sessions belong to the campaign; drop them with it.
	_ = os.RemoveAll(filepath.Join(cr.root, "sessions", id))

	return nil
}
