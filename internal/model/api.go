package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AvailabilityRequest is the payload for availability queries.
type AvailabilityRequest struct {
	CustomerID string          `json:"customerId"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Delivery   decimal.Decimal `json:"delivery"`
}

// Cart builds the immutable snapshot evaluated by the eligibility path.
func (r AvailabilityRequest) Cart() CartSnapshot {
	return CartSnapshot{
		CustomerID:  r.CustomerID,
		Subtotal:    r.Subtotal,
		DeliveryFee: r.Delivery,
	}
}

// RedeemRequest is the payload for redemption attempts.
type RedeemRequest struct {
	CampaignID uuid.UUID       `json:"campaignId"`
	CustomerID string          `json:"customerId"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Delivery   decimal.Decimal `json:"delivery"`
}

// Cart builds the immutable snapshot committed by the redemption path.
func (r RedeemRequest) Cart() CartSnapshot {
	return CartSnapshot{
		CustomerID:  r.CustomerID,
		Subtotal:    r.Subtotal,
		DeliveryFee: r.Delivery,
	}
}

// AvailableCampaignsResponse wraps the availability query result.
type AvailableCampaignsResponse struct {
	AvailableCampaigns []EligibilityResult `json:"availableCampaigns"`
}
