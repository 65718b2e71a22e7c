package repository

import (
	"context"
	"fmt"

	"campaign-engine/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// redemptionRepository implements RedemptionRepository using PostgreSQL.
// Records are only ever written by RedeemAtomically; this type is read-only.
type redemptionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRedemptionRepository creates a new PostgreSQL-backed redemption repository.
func NewRedemptionRepository(pool *pgxpool.Pool, logger zerolog.Logger) RedemptionRepository {
	return &redemptionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "redemption").Logger(),
	}
}

// ListByCampaign retrieves the most recent redemption records for a campaign.
func (r *redemptionRepository) ListByCampaign(ctx context.Context, campaignID uuid.UUID, limit int) ([]model.RedemptionRecord, error) {
	query := `
		SELECT id, campaign_id, customer_id,
		       subtotal::text, delivery_fee::text, discount_amount::text,
		       applies_to, redeemed_at
		FROM redemptions
		WHERE campaign_id = $1
		ORDER BY redeemed_at DESC, id
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, campaignID, limit)
	if err != nil {
		r.logger.Error().Err(err).Str("campaign_id", campaignID.String()).Msg("failed to query redemptions")
		return nil, fmt.Errorf("failed to query redemptions: %w", err)
	}
	defer rows.Close()

	var out []model.RedemptionRecord
	for rows.Next() {
		var (
			rec                            model.RedemptionRecord
			subtotal, deliveryFee, amount string
		)
		err := rows.Scan(
			&rec.ID, &rec.CampaignID, &rec.CustomerID,
			&subtotal, &deliveryFee, &amount,
			&rec.AppliesTo, &rec.RedeemedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan redemption: %w", err)
		}
		if rec.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, fmt.Errorf("invalid subtotal: %w", err)
		}
		if rec.DeliveryFee, err = decimal.NewFromString(deliveryFee); err != nil {
			return nil, fmt.Errorf("invalid delivery_fee: %w", err)
		}
		if rec.DiscountAmount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid discount_amount: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating redemptions: %w", err)
	}
	return out, nil
}
