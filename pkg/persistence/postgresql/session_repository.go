package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapflow/zapflow/pkg/models"
)

// SessionRepository handles session-related database operations.
type SessionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sql.DB, logger *slog.Logger) *SessionRepository {
	return &SessionRepository{db: db, logger: logger}
}

// ListByCampaign returns every session for a campaign, oldest first.
func (r *SessionRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*models.Session, error) {
	query := `
		SELECT
			id
		  , campaign_id
		  , contact_name
		  , contact_phone
		  , status
		  , visited_nodes
		  , started_at
		  , updated_at
		FROM sessions
		WHERE campaign_id = $1
		ORDER BY started_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	sessions := make([]*models.Session, 0)

	for rows.Next() {
		var (
			session models.Session
			visited []byte
		)

		err := rows.Scan(
			&session.ID,
			&session.CampaignID,
			&session.ContactName,
			&session.ContactPhone,
			&session.Status,
			&visited,
			&session.StartedAt,
			&session.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		session.VisitedNodes = make(map[string]models.NodeVisit)
		if len(visited) > 0 {
			if err := json.Unmarshal(visited, &session.VisitedNodes); err != nil {
				return nil, fmt.Errorf("failed to decode visited nodes: %w", err)
			}
		}

		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// Save upserts a session record.
func (r *SessionRepository) Save(ctx context.Context, session *models.Session) error {
	now := time.Now().UTC()

	if session.StartedAt.IsZero() {
		session.StartedAt = now
	}

	session.UpdatedAt = now

	visited, err := json.Marshal(session.VisitedNodes)
	if err != nil {
		return fmt.Errorf("failed to encode visited nodes for session %s: %w", session.ID, err)
	}

	query := `
		INSERT INTO sessions (id, campaign_id, contact_name, contact_phone, status, visited_nodes, started_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (campaign_id, id) DO UPDATE SET
			contact_name = EXCLUDED.contact_name
		  , contact_phone = EXCLUDED.contact_phone
		  , status = EXCLUDED.status
		  , visited_nodes = EXCLUDED.visited_nodes
		  , updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		session.ID,
		session.CampaignID,
		session.ContactName,
		session.ContactPhone,
		session.Status,
		visited,
		session.StartedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}

	return nil
}
