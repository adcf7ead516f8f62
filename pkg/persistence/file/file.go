// Package file provides file-based persistence for campaigns and sessions,
// storing each aggregate as a JSON document under a root directory.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/zapflow/zapflow/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root          string
	campaignRepo  *CampaignRepository
	sessionRepo   *SessionRepository
	referenceRepo *ReferenceRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// Accepts plain paths and file:// URLs.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:          cleanRoot,
		campaignRepo:  NewCampaignRepository(cleanRoot),
		sessionRepo:   NewSessionRepository(cleanRoot),
		referenceRepo: NewReferenceRepository(cleanRoot),
	}
}

// CampaignRepository returns the campaign repository.
func (fp *Persistence) CampaignRepository() persistence.CampaignRepository {
	return fp.campaignRepo
}

// SessionRepository returns the session repository.
func (fp *Persistence) SessionRepository() persistence.SessionRepository {
	return fp.sessionRepo
}

// ReferenceRepository returns the reference data repository.
func (fp *Persistence) ReferenceRepository() persistence.ReferenceRepository {
	return fp.referenceRepo
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. Nothing to release for files.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
