// Package discount computes campaign discount amounts.
//
// All arithmetic uses fixed-point decimals; results are rounded half-up to
// two decimal places (currency minor units). A computed discount never
// exceeds the amount it applies to and is never negative.
package discount

import (
	"campaign-engine/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Compute returns the discount a campaign grants on the given cart.
// The base amount is the cart subtotal for CART campaigns and the delivery
// fee for DELIVERY campaigns.
func Compute(c *model.Campaign, cart model.CartSnapshot) (decimal.Decimal, error) {
	base := c.Base(cart)
	if base.IsNegative() {
		return decimal.Zero, model.ErrInvalidInput
	}

	var disc decimal.Decimal
	switch c.DiscountType {
	case model.DiscountPercent:
		if c.DiscountValue.LessThanOrEqual(decimal.Zero) || c.DiscountValue.GreaterThan(hundred) {
			return decimal.Zero, model.ErrInvalidCampaignConfig
		}
		disc = base.Mul(c.DiscountValue).Div(hundred)
	case model.DiscountFlat:
		if c.DiscountValue.IsNegative() {
			return decimal.Zero, model.ErrInvalidCampaignConfig
		}
		disc = c.DiscountValue
	default:
		return decimal.Zero, model.ErrInvalidCampaignConfig
	}

	if c.MaxDiscountAmount != nil && disc.GreaterThan(*c.MaxDiscountAmount) {
		disc = *c.MaxDiscountAmount
	}
	// Never discount more than the amount being discounted.
	if disc.GreaterThan(base) {
		disc = base
	}
	if disc.IsNegative() {
		disc = decimal.Zero
	}

	// Round half-up to currency precision.
	return disc.Round(2), nil
}
