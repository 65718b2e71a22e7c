package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is the campaign store DDL. Statements are idempotent so startup
// against an existing database is safe.
const schema = `
	CREATE TABLE IF NOT EXISTS campaigns (
		id UUID PRIMARY KEY,
		name VARCHAR(120) NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		applies_to VARCHAR(16) NOT NULL CHECK (applies_to IN ('CART', 'DELIVERY')),
		discount_type VARCHAR(16) NOT NULL CHECK (discount_type IN ('PERCENT', 'FLAT')),
		discount_value DECIMAL(10, 2) NOT NULL,
		max_discount_amount DECIMAL(10, 2),
		min_subtotal DECIMAL(12, 2),
		min_delivery_fee DECIMAL(12, 2),
		allow_all_customers BOOLEAN NOT NULL DEFAULT TRUE,
		customer_ids TEXT[] NOT NULL DEFAULT '{}',
		start_at TIMESTAMPTZ NOT NULL,
		end_at TIMESTAMPTZ NOT NULL,
		run_days_limit INTEGER,
		total_budget_limit DECIMAL(12, 2),
		budget_used DECIMAL(12, 2) NOT NULL DEFAULT 0,
		usage_limit INTEGER,
		usage_count INTEGER NOT NULL DEFAULT 0,
		per_customer_limit INTEGER,
		max_txn_per_customer_per_day INTEGER NOT NULL DEFAULT 999,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT campaign_window_valid CHECK (end_at >= start_at),
		CONSTRAINT campaign_counters_within_limits CHECK (
			(usage_limit IS NULL OR usage_count <= usage_limit)
			AND (total_budget_limit IS NULL OR budget_used <= total_budget_limit)
		)
	);

	CREATE INDEX IF NOT EXISTS idx_campaigns_active_window ON campaigns(active, start_at, end_at);

	CREATE TABLE IF NOT EXISTS campaign_usage (
		campaign_id UUID NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		customer_id VARCHAR(64) NOT NULL,
		usage_date DATE NOT NULL,
		txn_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (campaign_id, customer_id, usage_date)
	);

	CREATE TABLE IF NOT EXISTS redemptions (
		id UUID PRIMARY KEY,
		campaign_id UUID NOT NULL,
		customer_id VARCHAR(64) NOT NULL,
		subtotal DECIMAL(12, 2) NOT NULL,
		delivery_fee DECIMAL(12, 2) NOT NULL,
		discount_amount DECIMAL(12, 2) NOT NULL,
		applies_to VARCHAR(16) NOT NULL,
		redeemed_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_redemptions_campaign ON redemptions(campaign_id, redeemed_at);
`

// EnsureSchema creates the campaign store tables when they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
