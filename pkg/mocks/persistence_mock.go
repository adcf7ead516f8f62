package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zapflow/zapflow/pkg/models"
	"github.com/zapflow/zapflow/pkg/persistence"
)

// MockPersistence is a mock implementation of persistence.Persistence.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) CampaignRepository() persistence.CampaignRepository {
	args := m.Called()

	repo, _ := args.Get(0).(persistence.CampaignRepository)

	return repo
}

func (m *MockPersistence) SessionRepository() persistence.SessionRepository {
	args := m.Called()

	repo, _ := args.Get(0).(persistence.SessionRepository)

	return repo
}

func (m *MockPersistence) ReferenceRepository() persistence.ReferenceRepository {
	args := m.Called()

	repo, _ := args.Get(0).(persistence.ReferenceRepository)

	return repo
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockCampaignRepository is a mock implementation of persistence.CampaignRepository.
type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) List(ctx context.Context) ([]*models.Campaign, error) {
	args := m.Called(ctx)

	campaigns, _ := args.Get(0).([]*models.Campaign)

	return campaigns, args.Error(1)
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	args := m.Called(ctx, id)

	campaign, _ := args.Get(0).(*models.Campaign)

	return campaign, args.Error(1)
}

func (m *MockCampaignRepository) Save(ctx context.Context, campaign *models.Campaign) error {
	args := m.Called(ctx, campaign)

	return args.Error(0)
}

func (m *MockCampaignRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockSessionRepository is a mock implementation of persistence.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*models.Session, error) {
	args := m.Called(ctx, campaignID)

	sessions, _ := args.Get(0).([]*models.Session)

	return sessions, args.Error(1)
}

func (m *MockSessionRepository) Save(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)

	return args.Error(0)
}

// MockReferenceRepository is a mock implementation of persistence.ReferenceRepository.
type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) Connections(ctx context.Context) ([]*models.Connection, error) {
	args := m.Called(ctx)

	connections, _ := args.Get(0).([]*models.Connection)

	return connections, args.Error(1)
}

func (m *MockReferenceRepository) Categories(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)

	categories, _ := args.Get(0).([]*models.Category)

	return categories, args.Error(1)
}
