// Package eligibility holds the rule checks shared by the availability
// query and the redemption path. Checks are pure and never touch counters;
// callers supply the usage numbers they want evaluated.
package eligibility

import (
	"time"

	"campaign-engine/internal/model"

	"github.com/shopspring/decimal"
)

// Usage captures the per-customer counters consulted during checks.
type Usage struct {
	// CustomerTotal is the customer's lifetime redemption count for the campaign.
	CustomerTotal int

	// CustomerToday is the customer's redemption count for the campaign today.
	CustomerToday int
}

// Check evaluates every eligibility rule for a campaign against a cart.
// It returns nil when the campaign currently applies, otherwise the domain
// error naming the first rule that failed. Checks run in a fixed order so
// rejections are deterministic.
func Check(c *model.Campaign, cart model.CartSnapshot, usage Usage, now time.Time) error {
	if !c.Active {
		return model.ErrCampaignInactive
	}
	if now.After(c.EndAt) {
		return model.ErrCampaignExpired
	}
	if now.Before(c.StartAt) || c.DaysExhausted(now) {
		return model.ErrCampaignInactive
	}
	if !c.IsTargeted(cart.CustomerID) {
		return model.ErrCustomerNotTargeted
	}
	if err := checkRule(c, cart); err != nil {
		return err
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return model.ErrUsageLimitExceeded
	}
	if c.PerCustomerLimit != nil && usage.CustomerTotal >= *c.PerCustomerLimit {
		return model.ErrCustomerUsageLimit
	}
	if c.MaxTxnPerCustomerPerDay > 0 && usage.CustomerToday >= c.MaxTxnPerCustomerPerDay {
		return model.ErrCustomerUsageLimit
	}
	if remaining := c.RemainingBudget(); remaining != nil && remaining.LessThanOrEqual(decimal.Zero) {
		return model.ErrBudgetExhausted
	}
	return nil
}

// checkRule evaluates the campaign's cart predicate: minimum thresholds and
// a non-zero discount base.
func checkRule(c *model.Campaign, cart model.CartSnapshot) error {
	if c.MinSubtotal != nil && cart.Subtotal.LessThan(*c.MinSubtotal) {
		return model.ErrRuleNotSatisfied
	}
	if c.MinDeliveryFee != nil && cart.DeliveryFee.LessThan(*c.MinDeliveryFee) {
		return model.ErrRuleNotSatisfied
	}
	if c.Base(cart).LessThanOrEqual(decimal.Zero) {
		return model.ErrRuleNotSatisfied
	}
	return nil
}

// ClampToBudget caps a computed discount to the campaign's remaining budget.
func ClampToBudget(c *model.Campaign, disc decimal.Decimal) decimal.Decimal {
	remaining := c.RemainingBudget()
	if remaining == nil {
		return disc
	}
	if disc.GreaterThan(*remaining) {
		return *remaining
	}
	return disc
}
