package service

import (
	"context"
	"time"

	"campaign-engine/internal/eligibility"
	"campaign-engine/internal/model"
	"campaign-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCampaignRepository mocks repository.CampaignRepository.
type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) List(ctx context.Context, limit, offset int) ([]model.Campaign, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) ListActive(ctx context.Context, asOf time.Time) ([]model.Campaign, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCampaignRepository) CustomerUsage(ctx context.Context, campaignID uuid.UUID, customerID string, day time.Time) (eligibility.Usage, error) {
	args := m.Called(ctx, campaignID, customerID, day)
	return args.Get(0).(eligibility.Usage), args.Error(1)
}

func (m *MockCampaignRepository) RedeemAtomically(ctx context.Context, campaignID uuid.UUID, cart model.CartSnapshot, now time.Time, decide repository.DecideFunc) (*model.RedemptionRecord, error) {
	args := m.Called(ctx, campaignID, cart, now, decide)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RedemptionRecord), args.Error(1)
}

// MockRedemptionRepository mocks repository.RedemptionRepository.
type MockRedemptionRepository struct {
	mock.Mock
}

func (m *MockRedemptionRepository) ListByCampaign(ctx context.Context, campaignID uuid.UUID, limit int) ([]model.RedemptionRecord, error) {
	args := m.Called(ctx, campaignID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RedemptionRecord), args.Error(1)
}
