package repository

import (
	"context"
	"time"

	"campaign-engine/internal/eligibility"
	"campaign-engine/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DecideFunc is called by the store inside the redemption's atomic unit.
// It receives the campaign and customer usage as currently persisted, under
// the store's serialization guarantee, and returns the discount to commit.
// A non-nil error rejects the redemption and no state is mutated.
type DecideFunc func(c *model.Campaign, usage eligibility.Usage) (decimal.Decimal, error)

// CampaignRepository defines the interface for campaign data access.
type CampaignRepository interface {
	// Create persists a new campaign definition.
	Create(ctx context.Context, c *model.Campaign) error

	// GetByID retrieves a single campaign, or nil when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error)

	// List retrieves campaigns ordered by creation time, newest first.
	List(ctx context.Context, limit, offset int) ([]model.Campaign, error)

	// ListActive retrieves active campaigns whose validity window contains asOf.
	ListActive(ctx context.Context, asOf time.Time) ([]model.Campaign, error)

	// Delete removes a campaign definition.
	Delete(ctx context.Context, id uuid.UUID) error

	// CustomerUsage returns the customer's redemption counters for a campaign
	// without mutating anything. day selects which calendar day counts as
	// "today" for the per-day counter.
	CustomerUsage(ctx context.Context, campaignID uuid.UUID, customerID string, day time.Time) (eligibility.Usage, error)

	// RedeemAtomically runs one redemption attempt as a single atomic unit:
	// it locks the campaign (and the customer's usage row), calls decide with
	// the current state, and on success increments the usage counters and
	// budget and appends a RedemptionRecord. Two concurrent calls against the
	// same campaign are serialized; store-level contention surfaces as
	// model.ErrRedemptionConflict.
	RedeemAtomically(ctx context.Context, campaignID uuid.UUID, cart model.CartSnapshot, now time.Time, decide DecideFunc) (*model.RedemptionRecord, error)
}

// RedemptionRepository defines read access to the append-only audit trail.
type RedemptionRepository interface {
	// ListByCampaign retrieves the most recent redemption records for a campaign.
	ListByCampaign(ctx context.Context, campaignID uuid.UUID, limit int) ([]model.RedemptionRecord, error)
}
