package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"campaign-engine/internal/discount"
	"campaign-engine/internal/eligibility"
	"campaign-engine/internal/model"
	"campaign-engine/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// eligibilityService implements EligibilityService.
type eligibilityService struct {
	campaignRepo repository.CampaignRepository
	logger       zerolog.Logger
	now          func() time.Time
}

// NewEligibilityService creates a new eligibility service.
func NewEligibilityService(campaignRepo repository.CampaignRepository, logger zerolog.Logger) EligibilityService {
	return &eligibilityService{
		campaignRepo: campaignRepo,
		logger:       logger.With().Str("service", "eligibility").Logger(),
		now:          time.Now,
	}
}

// FindAvailable returns every campaign whose rules currently match the cart.
func (s *eligibilityService) FindAvailable(ctx context.Context, cart model.CartSnapshot) ([]model.EligibilityResult, error) {
	if err := cart.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	campaigns, err := s.campaignRepo.ListActive(ctx, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list active campaigns")
		return nil, fmt.Errorf("failed to list active campaigns: %w", err)
	}

	var results []model.EligibilityResult
	for i := range campaigns {
		c := &campaigns[i]

		usage, err := s.campaignRepo.CustomerUsage(ctx, c.ID, cart.CustomerID, now)
		if err != nil {
			s.logger.Error().Err(err).
				Str("campaign_id", c.ID.String()).
				Msg("failed to load customer usage")
			return nil, fmt.Errorf("failed to load customer usage: %w", err)
		}

		if checkErr := eligibility.Check(c, cart, usage, now); checkErr != nil {
			s.logger.Debug().
				Str("campaign_id", c.ID.String()).
				Str("customer_id", cart.CustomerID).
				Str("reason", checkErr.Error()).
				Msg("campaign not applicable")
			continue
		}

		disc, err := discount.Compute(c, cart)
		if err != nil {
			// Misconfigured campaigns are skipped, not surfaced to the caller.
			s.logger.Warn().Err(err).
				Str("campaign_id", c.ID.String()).
				Msg("skipping campaign with invalid discount config")
			continue
		}

		disc = eligibility.ClampToBudget(c, disc)
		if disc.LessThanOrEqual(decimal.Zero) {
			continue
		}

		results = append(results, model.EligibilityResult{
			CampaignID:     c.ID,
			CampaignName:   c.Name,
			AppliesTo:      c.AppliesTo,
			DiscountType:   c.DiscountType,
			DiscountValue:  c.DiscountValue,
			DiscountAmount: disc,
			Reason:         describeDiscount(c),
		})
	}

	// Deterministic ordering: best discount first, ties by campaign ID.
	sort.Slice(results, func(i, j int) bool {
		cmp := results[i].DiscountAmount.Cmp(results[j].DiscountAmount)
		if cmp != 0 {
			return cmp > 0
		}
		return results[i].CampaignID.String() < results[j].CampaignID.String()
	})

	s.logger.Debug().
		Str("customer_id", cart.CustomerID).
		Int("candidates", len(campaigns)).
		Int("matches", len(results)).
		Msg("availability evaluated")

	return results, nil
}

// describeDiscount renders a short human-readable description of the offer.
func describeDiscount(c *model.Campaign) string {
	target := "cart subtotal"
	if c.AppliesTo == model.AppliesToDelivery {
		target = "delivery fee"
	}
	if c.DiscountType == model.DiscountPercent {
		return fmt.Sprintf("%s%% off %s", c.DiscountValue.String(), target)
	}
	return fmt.Sprintf("flat %s off %s", c.DiscountValue.String(), target)
}
