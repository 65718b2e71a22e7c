package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RedemptionRecord is the audit row written for every committed redemption.
// Records are append-only: never updated, never deleted.
type RedemptionRecord struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	CampaignID     uuid.UUID       `json:"campaignId" db:"campaign_id"`
	CustomerID     string          `json:"customerId" db:"customer_id"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee" db:"delivery_fee"`
	DiscountAmount decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	AppliesTo      AppliesTo       `json:"appliesTo" db:"applies_to"`
	RedeemedAt     time.Time       `json:"redeemedAt" db:"redeemed_at"`
}
