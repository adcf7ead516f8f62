package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapflow/zapflow/pkg/models"
	"github.com/zapflow/zapflow/pkg/persistence"
)

// CampaignRepository handles campaign-related database operations. The flow
// graph is stored as a single JSONB document: the graph is always read and
// written whole, so there is nothing to gain from normalizing nodes and
// edges into their own tables.
type CampaignRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCampaignRepository creates a new campaign repository.
func NewCampaignRepository(db *sql.DB, logger *slog.Logger) *CampaignRepository {
	return &CampaignRepository{db: db, logger: logger}
}

const campaignColumns = `
	id
  , name
  , status
  , graph
  , connection_id
  , scheduled_date
  , created_at
  , updated_at
`

// List returns all campaigns, newest first.
func (r *CampaignRepository) List(ctx context.Context) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	campaigns := make([]*models.Campaign, 0)

	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}

		campaigns = append(campaigns, campaign)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaigns: %w", err)
	}

	return campaigns, nil
}

// GetByID loads one campaign.
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	campaign, err := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewCampaignError("GetByID", id, persistence.ErrCampaignNotFound)
		}

		return nil, persistence.NewCampaignError("GetByID", id, err)
	}

	return campaign, nil
}

// Save upserts a campaign.
func (r *CampaignRepository) Save(ctx context.Context, campaign *models.Campaign) error {
	now := time.Now().UTC()

	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = now
	}

	campaign.UpdatedAt = now

	if campaign.Graph == nil {
		campaign.Graph = models.NewFlowGraph()
	}

	graph, err := json.Marshal(campaign.Graph)
	if err != nil {
		return persistence.NewCampaignError("Save", campaign.ID, err)
	}

	query := `
		INSERT INTO campaigns (id, name, status, graph, connection_id, scheduled_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
		  , status = EXCLUDED.status
		  , graph = EXCLUDED.graph
		  , connection_id = EXCLUDED.connection_id
		  , scheduled_date = EXCLUDED.scheduled_date
		  , updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		campaign.ID,
		campaign.Name,
		campaign.Status,
		graph,
		nullString(campaign.ConnectionID),
		campaign.ScheduledDate,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	)
	if err != nil {
		return persistence.NewCampaignError("Save", campaign.ID, err)
	}

	return nil
}

// Delete removes a campaign; sessions cascade at the schema level.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return persistence.NewCampaignError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewCampaignError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewCampaignError("Delete", id, persistence.ErrCampaignNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*models.Campaign, error) {
	var (
		campaign      models.Campaign
		graph         []byte
		connectionID  sql.NullString
		scheduledDate sql.NullTime
	)

	err := row.Scan(
		&campaign.ID,
		&campaign.Name,
		&campaign.Status,
		&graph,
		&connectionID,
		&scheduledDate,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	campaign.Graph = models.NewFlowGraph()
	if len(graph) > 0 {
		if err := json.Unmarshal(graph, campaign.Graph); err != nil {
			return nil, fmt.Errorf("failed to decode campaign graph: %w", err)
		}
	}

	if connectionID.Valid {
		campaign.ConnectionID = connectionID.String
	}

	if scheduledDate.Valid {
		date := scheduledDate.Time

		campaign.ScheduledDate = &date
	}

	return &campaign, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
