package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppliesTo selects which part of the cart a campaign discounts.
type AppliesTo string

const (
	AppliesToCart     AppliesTo = "CART"
	AppliesToDelivery AppliesTo = "DELIVERY"
)

// DiscountType determines how DiscountValue is interpreted.
type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountFlat    DiscountType = "FLAT"
)

// DefaultMaxTxnPerCustomerPerDay effectively disables the per-day cap.
const DefaultMaxTxnPerCustomerPerDay = 999

// Campaign represents a discount campaign definition.
type Campaign struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`

	AppliesTo         AppliesTo        `json:"appliesTo" db:"applies_to"`
	DiscountType      DiscountType     `json:"discountType" db:"discount_type"`
	DiscountValue     decimal.Decimal  `json:"discountValue" db:"discount_value"`
	MaxDiscountAmount *decimal.Decimal `json:"maxDiscountAmount,omitempty" db:"max_discount_amount"`

	// Rule predicate thresholds; nil means no threshold.
	MinSubtotal    *decimal.Decimal `json:"minSubtotal,omitempty" db:"min_subtotal"`
	MinDeliveryFee *decimal.Decimal `json:"minDeliveryFee,omitempty" db:"min_delivery_fee"`

	// Targeting. CustomerIDs must be non-empty when AllowAllCustomers is false.
	AllowAllCustomers bool     `json:"allowAllCustomers" db:"allow_all_customers"`
	CustomerIDs       []string `json:"customerIds,omitempty" db:"customer_ids"`

	StartAt      time.Time `json:"startAt" db:"start_at"`
	EndAt        time.Time `json:"endAt" db:"end_at"`
	RunDaysLimit *int      `json:"runDaysLimit,omitempty" db:"run_days_limit"`

	// Budget and usage limits; nil means unlimited.
	TotalBudgetLimit        *decimal.Decimal `json:"totalBudgetLimit,omitempty" db:"total_budget_limit"`
	BudgetUsed              decimal.Decimal  `json:"budgetUsed" db:"budget_used"`
	UsageLimit              *int             `json:"usageLimit,omitempty" db:"usage_limit"`
	UsageCount              int              `json:"usageCount" db:"usage_count"`
	PerCustomerLimit        *int             `json:"perCustomerLimit,omitempty" db:"per_customer_limit"`
	MaxTxnPerCustomerPerDay int              `json:"maxTxnPerCustomerPerDay" db:"max_txn_per_customer_per_day"`

	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsTargeted reports whether the campaign may be used by the given customer.
func (c *Campaign) IsTargeted(customerID string) bool {
	if c.AllowAllCustomers {
		return true
	}
	for _, id := range c.CustomerIDs {
		if id == customerID {
			return true
		}
	}
	return false
}

// DaysExhausted reports whether the campaign's run-days limit has elapsed.
// A campaign with RunDaysLimit n stops at the end of the n-th day counted
// from StartAt, even when EndAt is still in the future.
func (c *Campaign) DaysExhausted(now time.Time) bool {
	if c.RunDaysLimit == nil || *c.RunDaysLimit <= 0 {
		return false
	}
	cutoff := c.StartAt.AddDate(0, 0, *c.RunDaysLimit)
	return !now.Before(cutoff)
}

// RemainingBudget returns the budget left for the campaign, or nil if the
// budget is unlimited.
func (c *Campaign) RemainingBudget() *decimal.Decimal {
	if c.TotalBudgetLimit == nil {
		return nil
	}
	remaining := c.TotalBudgetLimit.Sub(c.BudgetUsed)
	return &remaining
}

// Base returns the cart amount the campaign's discount applies to.
func (c *Campaign) Base(cart CartSnapshot) decimal.Decimal {
	if c.AppliesTo == AppliesToDelivery {
		return cart.DeliveryFee
	}
	return cart.Subtotal
}

// Validate checks structural invariants of a campaign definition.
func (c *Campaign) Validate() error {
	if c.Name == "" {
		return ErrInvalidCampaignConfig
	}
	switch c.AppliesTo {
	case AppliesToCart, AppliesToDelivery:
	default:
		return ErrInvalidCampaignConfig
	}
	switch c.DiscountType {
	case DiscountPercent:
		if c.DiscountValue.LessThanOrEqual(decimal.Zero) || c.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return ErrInvalidCampaignConfig
		}
	case DiscountFlat:
		if c.DiscountValue.IsNegative() {
			return ErrInvalidCampaignConfig
		}
	default:
		return ErrInvalidCampaignConfig
	}
	if c.EndAt.Before(c.StartAt) {
		return ErrInvalidCampaignConfig
	}
	if !c.AllowAllCustomers && len(c.CustomerIDs) == 0 {
		return ErrInvalidCampaignConfig
	}
	if c.UsageLimit != nil && *c.UsageLimit < 0 {
		return ErrInvalidCampaignConfig
	}
	if c.PerCustomerLimit != nil && *c.PerCustomerLimit < 0 {
		return ErrInvalidCampaignConfig
	}
	return nil
}
