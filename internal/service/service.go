package service

import (
	"context"

	"campaign-engine/internal/model"

	"github.com/google/uuid"
)

// EligibilityService answers which campaigns currently apply to a cart.
type EligibilityService interface {
	// FindAvailable returns every campaign whose rules match the cart,
	// ordered by discount amount descending (ties by campaign ID). It is a
	// pure read: no counter is touched and nothing is reserved.
	FindAvailable(ctx context.Context, cart model.CartSnapshot) ([]model.EligibilityResult, error)
}

// RedemptionService commits campaign discounts against carts.
type RedemptionService interface {
	// Redeem re-validates eligibility against current persisted state and,
	// inside a single atomic unit, consumes one usage slot and appends the
	// audit record. Transient store conflicts are retried a bounded number
	// of times before surfacing model.ErrRedemptionConflict.
	Redeem(ctx context.Context, campaignID uuid.UUID, cart model.CartSnapshot) (*model.RedemptionRecord, error)
}

// CampaignService is the thin CRUD wrapper around the campaign store.
type CampaignService interface {
	// Create validates and persists a new campaign definition.
	Create(ctx context.Context, c *model.Campaign) (*model.Campaign, error)

	// GetByID retrieves a campaign, or nil when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error)

	// List retrieves campaigns, newest first.
	List(ctx context.Context, limit, offset int) ([]model.Campaign, error)

	// Delete removes a campaign definition. Redemption records survive.
	Delete(ctx context.Context, id uuid.UUID) error

	// Redemptions retrieves the most recent audit records for a campaign.
	Redemptions(ctx context.Context, campaignID uuid.UUID, limit int) ([]model.RedemptionRecord, error)
}
