package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"campaign-engine/internal/eligibility"
	"campaign-engine/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory campaign store implementing both
// CampaignRepository and RedemptionRepository. It backs the service when no
// database is configured and gives tests a store with real serialization
// semantics: redemptions against one campaign are serialized by a
// per-campaign mutex, matching the row lock the Postgres store takes.
type MemoryStore struct {
	mu          sync.RWMutex
	campaigns   map[uuid.UUID]*model.Campaign
	locks       map[uuid.UUID]*sync.Mutex
	usage       map[usageKey]int
	redemptions []model.RedemptionRecord
	logger      zerolog.Logger
}

type usageKey struct {
	campaignID uuid.UUID
	customerID string
	day        time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger zerolog.Logger) *MemoryStore {
	return &MemoryStore{
		campaigns: make(map[uuid.UUID]*model.Campaign),
		locks:     make(map[uuid.UUID]*sync.Mutex),
		usage:     make(map[usageKey]int),
		logger:    logger.With().Str("repository", "memory").Logger(),
	}
}

// Create persists a new campaign definition.
func (s *MemoryStore) Create(_ context.Context, c *model.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneCampaign(c)
	s.campaigns[c.ID] = cp
	s.locks[c.ID] = &sync.Mutex{}
	return nil
}

// GetByID retrieves a single campaign, or nil when it does not exist.
func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*model.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.campaigns[id]
	if !ok {
		return nil, nil
	}
	return cloneCampaign(c), nil
}

// List retrieves campaigns ordered by creation time, newest first.
func (s *MemoryStore) List(_ context.Context, limit, offset int) ([]model.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]model.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		all = append(all, *cloneCampaign(c))
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// ListActive retrieves active campaigns whose validity window contains asOf.
func (s *MemoryStore) ListActive(_ context.Context, asOf time.Time) ([]model.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Campaign
	for _, c := range s.campaigns {
		if c.Active && !asOf.Before(c.StartAt) && !asOf.After(c.EndAt) {
			out = append(out, *cloneCampaign(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

// Delete removes a campaign definition. Redemption records are kept.
func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.campaigns[id]; !ok {
		return model.ErrCampaignNotFound
	}
	delete(s.campaigns, id)
	delete(s.locks, id)
	return nil
}

// CustomerUsage returns the customer's redemption counters for a campaign.
func (s *MemoryStore) CustomerUsage(_ context.Context, campaignID uuid.UUID, customerID string, day time.Time) (eligibility.Usage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.usageLocked(campaignID, customerID, day), nil
}

func (s *MemoryStore) usageLocked(campaignID uuid.UUID, customerID string, day time.Time) eligibility.Usage {
	var u eligibility.Usage
	today := usageDate(day)
	for k, n := range s.usage {
		if k.campaignID != campaignID || k.customerID != customerID {
			continue
		}
		u.CustomerTotal += n
		if k.day.Equal(today) {
			u.CustomerToday += n
		}
	}
	return u
}

// RedeemAtomically runs one redemption attempt under the campaign's mutex so
// two concurrent attempts against the same campaign can never both observe
// the last remaining usage slot.
func (s *MemoryStore) RedeemAtomically(_ context.Context, campaignID uuid.UUID, cart model.CartSnapshot, now time.Time, decide DecideFunc) (*model.RedemptionRecord, error) {
	s.mu.RLock()
	lock, ok := s.locks[campaignID]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrCampaignNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[campaignID]
	if !ok {
		return nil, model.ErrCampaignNotFound
	}

	usage := s.usageLocked(campaignID, cart.CustomerID, now)

	disc, err := decide(cloneCampaign(c), usage)
	if err != nil {
		// Rejected: zero mutation.
		return nil, err
	}

	c.UsageCount++
	c.BudgetUsed = c.BudgetUsed.Add(disc)
	c.UpdatedAt = now
	s.usage[usageKey{campaignID, cart.CustomerID, usageDate(now)}]++

	rec := model.RedemptionRecord{
		ID:             uuid.New(),
		CampaignID:     campaignID,
		CustomerID:     cart.CustomerID,
		Subtotal:       cart.Subtotal,
		DeliveryFee:    cart.DeliveryFee,
		DiscountAmount: disc,
		AppliesTo:      c.AppliesTo,
		RedeemedAt:     now,
	}
	s.redemptions = append(s.redemptions, rec)

	s.logger.Debug().
		Str("campaign_id", campaignID.String()).
		Str("customer_id", cart.CustomerID).
		Str("discount", disc.String()).
		Msg("redemption committed")

	return &rec, nil
}

// ListByCampaign retrieves the most recent redemption records for a campaign.
func (s *MemoryStore) ListByCampaign(_ context.Context, campaignID uuid.UUID, limit int) ([]model.RedemptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.RedemptionRecord
	for i := len(s.redemptions) - 1; i >= 0; i-- {
		if s.redemptions[i].CampaignID != campaignID {
			continue
		}
		out = append(out, s.redemptions[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// cloneCampaign deep-copies a campaign so callers cannot mutate stored state.
func cloneCampaign(c *model.Campaign) *model.Campaign {
	cp := *c
	if c.CustomerIDs != nil {
		cp.CustomerIDs = append([]string(nil), c.CustomerIDs...)
	}
	cp.MaxDiscountAmount = cloneDecimal(c.MaxDiscountAmount)
	cp.MinSubtotal = cloneDecimal(c.MinSubtotal)
	cp.MinDeliveryFee = cloneDecimal(c.MinDeliveryFee)
	cp.TotalBudgetLimit = cloneDecimal(c.TotalBudgetLimit)
	cp.RunDaysLimit = cloneInt(c.RunDaysLimit)
	cp.UsageLimit = cloneInt(c.UsageLimit)
	cp.PerCustomerLimit = cloneInt(c.PerCustomerLimit)
	return &cp
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
