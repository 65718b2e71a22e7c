package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campaign-engine/internal/discount"
	"campaign-engine/internal/eligibility"
	"campaign-engine/internal/model"
	"campaign-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// redemptionService implements RedemptionService.
type redemptionService struct {
	campaignRepo repository.CampaignRepository
	logger       zerolog.Logger
	now          func() time.Time
	maxRetries   int
	retryDelay   time.Duration
}

// NewRedemptionService creates a new redemption service.
func NewRedemptionService(campaignRepo repository.CampaignRepository, logger zerolog.Logger) RedemptionService {
	return &redemptionService{
		campaignRepo: campaignRepo,
		logger:       logger.With().Str("service", "redemption").Logger(),
		now:          time.Now,
		maxRetries:   3,
		retryDelay:   25 * time.Millisecond,
	}
}

// Redeem commits a campaign discount against the cart. Eligibility is
// re-validated against current persisted state inside the store's atomic
// unit; an earlier FindAvailable result is advisory only.
func (s *redemptionService) Redeem(ctx context.Context, campaignID uuid.UUID, cart model.CartSnapshot) (*model.RedemptionRecord, error) {
	if err := cart.Validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.retryDelay):
			}
			s.logger.Debug().
				Str("campaign_id", campaignID.String()).
				Int("attempt", attempt+1).
				Msg("retrying redemption after conflict")
		}

		rec, err := s.attempt(ctx, campaignID, cart)
		if err == nil {
			s.logger.Info().
				Str("campaign_id", campaignID.String()).
				Str("customer_id", cart.CustomerID).
				Str("discount", rec.DiscountAmount.String()).
				Msg("redemption committed")
			return rec, nil
		}
		if !errors.Is(err, model.ErrRedemptionConflict) {
			return nil, err
		}
		lastErr = err
	}

	s.logger.Warn().
		Str("campaign_id", campaignID.String()).
		Int("attempts", s.maxRetries).
		Msg("redemption conflict retries exhausted")
	return nil, lastErr
}

// attempt runs one VALIDATING pass inside the store's atomic unit.
func (s *redemptionService) attempt(ctx context.Context, campaignID uuid.UUID, cart model.CartSnapshot) (*model.RedemptionRecord, error) {
	now := s.now()

	return s.campaignRepo.RedeemAtomically(ctx, campaignID, cart, now,
		func(c *model.Campaign, usage eligibility.Usage) (decimal.Decimal, error) {
			if err := eligibility.Check(c, cart, usage, now); err != nil {
				return decimal.Zero, err
			}

			// Recompute on the validated state, never trust a stale quote.
			disc, err := discount.Compute(c, cart)
			if err != nil {
				return decimal.Zero, fmt.Errorf("failed to compute discount: %w", err)
			}

			disc = eligibility.ClampToBudget(c, disc)
			if disc.LessThanOrEqual(decimal.Zero) {
				return decimal.Zero, model.ErrRuleNotSatisfied
			}
			return disc, nil
		})
}
