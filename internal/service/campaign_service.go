package service

import (
	"context"
	"fmt"
	"time"

	"campaign-engine/internal/model"
	"campaign-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// campaignService implements CampaignService. It is a thin persistence
// wrapper; all rule evaluation lives in the eligibility and redemption paths.
type campaignService struct {
	campaignRepo   repository.CampaignRepository
	redemptionRepo repository.RedemptionRepository
	logger         zerolog.Logger
}

// NewCampaignService creates a new campaign CRUD service.
func NewCampaignService(campaignRepo repository.CampaignRepository, redemptionRepo repository.RedemptionRepository, logger zerolog.Logger) CampaignService {
	return &campaignService{
		campaignRepo:   campaignRepo,
		redemptionRepo: redemptionRepo,
		logger:         logger.With().Str("service", "campaign").Logger(),
	}
}

// Create validates and persists a new campaign definition.
func (s *campaignService) Create(ctx context.Context, c *model.Campaign) (*model.Campaign, error) {
	if c == nil {
		return nil, model.ErrInvalidCampaignConfig
	}

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.MaxTxnPerCustomerPerDay == 0 {
		c.MaxTxnPerCustomerPerDay = model.DefaultMaxTxnPerCustomerPerDay
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := c.Validate(); err != nil {
		s.logger.Warn().Err(err).Str("name", c.Name).Msg("rejected invalid campaign definition")
		return nil, err
	}

	if err := s.campaignRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	s.logger.Info().Str("campaign_id", c.ID.String()).Str("name", c.Name).Msg("campaign created")
	return c, nil
}

// GetByID retrieves a campaign, or nil when it does not exist.
func (s *campaignService) GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	c, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return c, nil
}

// List retrieves campaigns, newest first.
func (s *campaignService) List(ctx context.Context, limit, offset int) ([]model.Campaign, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	campaigns, err := s.campaignRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// Delete removes a campaign definition. Redemption records survive as the
// audit trail.
func (s *campaignService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.campaignRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("campaign_id", id.String()).Msg("campaign deleted")
	return nil
}

// Redemptions retrieves the most recent audit records for a campaign. The
// campaign itself may already be deleted; the audit trail outlives it.
func (s *campaignService) Redemptions(ctx context.Context, campaignID uuid.UUID, limit int) ([]model.RedemptionRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	records, err := s.redemptionRepo.ListByCampaign(ctx, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}
	return records, nil
}
