// Package persistence provides the data storage abstraction for campaigns,
// sessions, and reference data.
package persistence

import (
	"context"

	"github.com/zapflow/zapflow/pkg/models"
)

// Persistence is the storage entry point. Implementations bundle the
// per-aggregate repositories plus lifecycle management.
type Persistence interface {
	CampaignRepository() CampaignRepository
	SessionRepository() SessionRepository
	ReferenceRepository() ReferenceRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// CampaignRepository stores campaigns with their embedded flow graphs.
type CampaignRepository interface {
	List(ctx context.Context) ([]*models.Campaign, error)
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	Save(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id string) error
}

// SessionRepository reads and writes per-contact session records. Sessions
// are written by the execution runtime; the editor side only reads them for
// reporting, but Save is part of the contract so runtimes and tests share
// one interface.
type SessionRepository interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
}

// ReferenceRepository serves read-only picker data for trigger configuration.
type ReferenceRepository interface {
	Connections(ctx context.Context) ([]*models.Connection, error)
	Categories(ctx context.Context) ([]*models.Category, error)
}
