package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campaign-engine/internal/eligibility"
	"campaign-engine/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// campaignRepository implements CampaignRepository using PostgreSQL.
type campaignRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCampaignRepository creates a new PostgreSQL-backed campaign repository.
func NewCampaignRepository(pool *pgxpool.Pool, logger zerolog.Logger) CampaignRepository {
	return &campaignRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "campaign").Logger(),
	}
}

const campaignColumns = `
	id, name, description, applies_to, discount_type,
	discount_value::text, max_discount_amount::text,
	min_subtotal::text, min_delivery_fee::text,
	allow_all_customers, customer_ids,
	start_at, end_at, run_days_limit,
	total_budget_limit::text, budget_used::text,
	usage_limit, usage_count, per_customer_limit, max_txn_per_customer_per_day,
	active, created_at, updated_at
`

// Create persists a new campaign definition.
func (r *campaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	query := `
		INSERT INTO campaigns (
			id, name, description, applies_to, discount_type,
			discount_value, max_discount_amount, min_subtotal, min_delivery_fee,
			allow_all_customers, customer_ids,
			start_at, end_at, run_days_limit,
			total_budget_limit, budget_used,
			usage_limit, usage_count, per_customer_limit, max_txn_per_customer_per_day,
			active, created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5,
			$6::numeric, $7::numeric, $8::numeric, $9::numeric,
			$10, $11,
			$12, $13, $14,
			$15::numeric, $16::numeric,
			$17, $18, $19, $20,
			$21, $22, $23
		)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Description, c.AppliesTo, c.DiscountType,
		c.DiscountValue.String(), decimalArg(c.MaxDiscountAmount),
		decimalArg(c.MinSubtotal), decimalArg(c.MinDeliveryFee),
		c.AllowAllCustomers, c.CustomerIDs,
		c.StartAt, c.EndAt, c.RunDaysLimit,
		decimalArg(c.TotalBudgetLimit), c.BudgetUsed.String(),
		c.UsageLimit, c.UsageCount, c.PerCustomerLimit, c.MaxTxnPerCustomerPerDay,
		c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("campaign_id", c.ID.String()).Msg("failed to create campaign")
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	r.logger.Debug().Str("campaign_id", c.ID.String()).Msg("campaign created")
	return nil
}

// GetByID retrieves a single campaign, or nil when it does not exist.
func (r *campaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	c, err := scanCampaign(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("campaign_id", id.String()).Msg("failed to query campaign")
		return nil, fmt.Errorf("failed to query campaign: %w", err)
	}
	return c, nil
}

// List retrieves campaigns ordered by creation time, newest first.
func (r *campaignRepository) List(ctx context.Context, limit, offset int) ([]model.Campaign, error) {
	query := `SELECT ` + campaignColumns + `
		FROM campaigns
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query campaigns")
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	return collectCampaigns(rows)
}

// ListActive retrieves active campaigns whose validity window contains asOf.
func (r *campaignRepository) ListActive(ctx context.Context, asOf time.Time) ([]model.Campaign, error) {
	query := `SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE active = TRUE AND start_at <= $1 AND end_at >= $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query active campaigns")
		return nil, fmt.Errorf("failed to query active campaigns: %w", err)
	}
	defer rows.Close()

	return collectCampaigns(rows)
}

// Delete removes a campaign definition. Redemption records are kept.
func (r *campaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("campaign_id", id.String()).Msg("failed to delete campaign")
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCampaignNotFound
	}

	r.logger.Debug().Str("campaign_id", id.String()).Msg("campaign deleted")
	return nil
}

// CustomerUsage returns the customer's redemption counters for a campaign.
// This is a pure read used by the availability path.
func (r *campaignRepository) CustomerUsage(ctx context.Context, campaignID uuid.UUID, customerID string, day time.Time) (eligibility.Usage, error) {
	query := `
		SELECT
			COALESCE(SUM(txn_count), 0),
			COALESCE(SUM(txn_count) FILTER (WHERE usage_date = $3), 0)
		FROM campaign_usage
		WHERE campaign_id = $1 AND customer_id = $2
	`

	var usage eligibility.Usage
	err := r.pool.QueryRow(ctx, query, campaignID, customerID, usageDate(day)).
		Scan(&usage.CustomerTotal, &usage.CustomerToday)
	if err != nil {
		r.logger.Error().Err(err).
			Str("campaign_id", campaignID.String()).
			Str("customer_id", customerID).
			Msg("failed to query customer usage")
		return eligibility.Usage{}, fmt.Errorf("failed to query customer usage: %w", err)
	}
	return usage, nil
}

// RedeemAtomically runs one redemption attempt inside a transaction. The
// campaign row lock is the per-campaign serialization point; the usage row
// lock covers the (campaign, customer) pair.
func (r *campaignRepository) RedeemAtomically(ctx context.Context, campaignID uuid.UUID, cart model.CartSnapshot, now time.Time, decide DecideFunc) (rec *model.RedemptionRecord, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
			err = mapConflict(err)
		}
	}()

	c, err := r.getForUpdate(ctx, tx, campaignID)
	if err != nil {
		return nil, err
	}

	usage, err := r.lockCustomerUsage(ctx, tx, campaignID, cart.CustomerID, now)
	if err != nil {
		return nil, err
	}

	disc, err := decide(c, usage)
	if err != nil {
		// Rejected: roll back with zero mutation.
		return nil, err
	}

	updateCampaign := `
		UPDATE campaigns
		SET usage_count = usage_count + 1,
		    budget_used = budget_used + $2::numeric,
		    updated_at = $3
		WHERE id = $1
	`
	if _, err = tx.Exec(ctx, updateCampaign, campaignID, disc.String(), now); err != nil {
		return nil, fmt.Errorf("failed to update campaign counters: %w", err)
	}

	updateUsage := `
		UPDATE campaign_usage
		SET txn_count = txn_count + 1, updated_at = $4
		WHERE campaign_id = $1 AND customer_id = $2 AND usage_date = $3
	`
	if _, err = tx.Exec(ctx, updateUsage, campaignID, cart.CustomerID, usageDate(now), now); err != nil {
		return nil, fmt.Errorf("failed to update usage counters: %w", err)
	}

	rec = &model.RedemptionRecord{
		ID:             uuid.New(),
		CampaignID:     campaignID,
		CustomerID:     cart.CustomerID,
		Subtotal:       cart.Subtotal,
		DeliveryFee:    cart.DeliveryFee,
		DiscountAmount: disc,
		AppliesTo:      c.AppliesTo,
		RedeemedAt:     now,
	}

	insertRecord := `
		INSERT INTO redemptions (
			id, campaign_id, customer_id, subtotal, delivery_fee,
			discount_amount, applies_to, redeemed_at
		)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7, $8)
	`
	if _, err = tx.Exec(ctx, insertRecord,
		rec.ID, rec.CampaignID, rec.CustomerID,
		rec.Subtotal.String(), rec.DeliveryFee.String(), rec.DiscountAmount.String(),
		rec.AppliesTo, rec.RedeemedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to save redemption record: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit redemption: %w", err)
	}

	r.logger.Debug().
		Str("campaign_id", campaignID.String()).
		Str("customer_id", cart.CustomerID).
		Str("discount", disc.String()).
		Msg("redemption committed")

	return rec, nil
}

// getForUpdate loads and locks the campaign row.
func (r *campaignRepository) getForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1 FOR UPDATE`

	c, err := scanCampaign(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to lock campaign: %w", err)
	}
	return c, nil
}

// lockCustomerUsage gets or creates the customer's usage row for today and
// locks it, then aggregates the customer's counters under the lock.
func (r *campaignRepository) lockCustomerUsage(ctx context.Context, tx pgx.Tx, campaignID uuid.UUID, customerID string, now time.Time) (eligibility.Usage, error) {
	day := usageDate(now)

	var txnCount int
	lock := `
		SELECT txn_count FROM campaign_usage
		WHERE campaign_id = $1 AND customer_id = $2 AND usage_date = $3
		FOR UPDATE
	`
	err := tx.QueryRow(ctx, lock, campaignID, customerID, day).Scan(&txnCount)
	if errors.Is(err, pgx.ErrNoRows) {
		insert := `
			INSERT INTO campaign_usage (campaign_id, customer_id, usage_date, txn_count, created_at, updated_at)
			VALUES ($1, $2, $3, 0, $4, $4)
			RETURNING txn_count
		`
		err = tx.QueryRow(ctx, insert, campaignID, customerID, day, now).Scan(&txnCount)
	}
	if err != nil {
		return eligibility.Usage{}, fmt.Errorf("failed to lock usage row: %w", err)
	}

	var total int
	sum := `
		SELECT COALESCE(SUM(txn_count), 0)
		FROM campaign_usage
		WHERE campaign_id = $1 AND customer_id = $2
	`
	if err := tx.QueryRow(ctx, sum, campaignID, customerID).Scan(&total); err != nil {
		return eligibility.Usage{}, fmt.Errorf("failed to aggregate usage: %w", err)
	}

	return eligibility.Usage{CustomerTotal: total, CustomerToday: txnCount}, nil
}

// usageDate truncates a timestamp to the calendar day used for per-day caps.
func usageDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// mapConflict translates store-level contention into the retryable domain error.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03": // serialization failure, deadlock, lock not available
			return model.ErrRedemptionConflict
		}
	}
	return err
}

// decimalArg converts an optional decimal into a nullable query argument.
func decimalArg(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// scanCampaign scans one campaign row. Numeric columns are transferred as
// text to keep exact decimal values.
func scanCampaign(row pgx.Row) (*model.Campaign, error) {
	var (
		c                model.Campaign
		discountValue    string
		budgetUsed       string
		maxDiscount      *string
		minSubtotal      *string
		minDeliveryFee   *string
		totalBudgetLimit *string
	)

	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.AppliesTo, &c.DiscountType,
		&discountValue, &maxDiscount,
		&minSubtotal, &minDeliveryFee,
		&c.AllowAllCustomers, &c.CustomerIDs,
		&c.StartAt, &c.EndAt, &c.RunDaysLimit,
		&totalBudgetLimit, &budgetUsed,
		&c.UsageLimit, &c.UsageCount, &c.PerCustomerLimit, &c.MaxTxnPerCustomerPerDay,
		&c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if c.DiscountValue, err = decimal.NewFromString(discountValue); err != nil {
		return nil, fmt.Errorf("invalid discount_value: %w", err)
	}
	if c.BudgetUsed, err = decimal.NewFromString(budgetUsed); err != nil {
		return nil, fmt.Errorf("invalid budget_used: %w", err)
	}
	if c.MaxDiscountAmount, err = parseOptionalDecimal(maxDiscount); err != nil {
		return nil, fmt.Errorf("invalid max_discount_amount: %w", err)
	}
	if c.MinSubtotal, err = parseOptionalDecimal(minSubtotal); err != nil {
		return nil, fmt.Errorf("invalid min_subtotal: %w", err)
	}
	if c.MinDeliveryFee, err = parseOptionalDecimal(minDeliveryFee); err != nil {
		return nil, fmt.Errorf("invalid min_delivery_fee: %w", err)
	}
	if c.TotalBudgetLimit, err = parseOptionalDecimal(totalBudgetLimit); err != nil {
		return nil, fmt.Errorf("invalid total_budget_limit: %w", err)
	}

	return &c, nil
}

func parseOptionalDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// collectCampaigns drains rows into a slice.
func collectCampaigns(rows pgx.Rows) ([]model.Campaign, error) {
	var out []model.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaigns: %w", err)
	}
	return out, nil
}
