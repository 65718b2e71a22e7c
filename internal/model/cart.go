package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartSnapshot captures the cart state a discount is evaluated against.
// It is a value type and never mutated after construction.
type CartSnapshot struct {
	CustomerID  string          `json:"customerId"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
}

// Validate checks that the snapshot is well-formed.
func (s CartSnapshot) Validate() error {
	if s.CustomerID == "" {
		return ErrInvalidInput
	}
	if s.Subtotal.IsNegative() || s.DeliveryFee.IsNegative() {
		return ErrInvalidInput
	}
	return nil
}

// EligibilityResult describes one campaign that currently applies to a cart.
// It is advisory only and reserves nothing.
type EligibilityResult struct {
	CampaignID     uuid.UUID       `json:"campaignId"`
	CampaignName   string          `json:"campaignName"`
	AppliesTo      AppliesTo       `json:"appliesTo"`
	DiscountType   DiscountType    `json:"discountType"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Reason         string          `json:"reason,omitempty"`
}
