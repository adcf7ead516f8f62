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
)

// SessionRepository stores each session as sessions/{campaignID}/{id}.json.
type SessionRepository struct {
	root string
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(root string) *SessionRepository {
	return &SessionRepository{root: root}
}

func (sr *SessionRepository) dir(campaignID string) string {
	return filepath.Join(sr.root, "sessions", campaignID)
}

// ListByCampaign returns every session for a campaign, oldest first.
func (sr *SessionRepository) ListByCampaign(_ context.Context, campaignID string) ([]*models.Session, error) {
	entries, err := fs.Glob(os.DirFS(sr.dir(campaignID)), "*.json")
	if err != nil || len(entries) == 0 {
		return []*models.Session{}, nil
	}

	sessions := make([]*models.Session, 0, len(entries))

	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(sr.dir(campaignID), entry))
		if err != nil {
			return nil, fmt.Errorf("failed to read session file %s: %w", entry, err)
		}

		var session models.Session
		if err := json.Unmarshal(data, &session); err != nil {
			return nil, fmt.Errorf("failed to decode session file %s: %w", entry, err)
		}

		sessions = append(sessions, &session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})

	return sessions, nil
}

// Save writes a session record.
func (sr *SessionRepository) Save(_ context.Context, session *models.Session) error {
	if err := os.MkdirAll(sr.dir(session.CampaignID), 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	path := filepath.Join(sr.dir(session.CampaignID), session.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session %s: %w", session.ID, err)
	}

	return nil
}
