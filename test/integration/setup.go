package integration

import (
	"context"
	"testing"
	"time"

	"campaign-engine/internal/database"
	"campaign-engine/internal/model"
	"campaign-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the
// campaign store schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// NewCampaignRepo builds a repository against the test database.
func (db *TestDB) NewCampaignRepo() repository.CampaignRepository {
	return repository.NewCampaignRepository(db.Pool, zerolog.Nop())
}

// NewRedemptionRepo builds an audit-trail reader against the test database.
func (db *TestDB) NewRedemptionRepo() repository.RedemptionRepository {
	return repository.NewRedemptionRepository(db.Pool, zerolog.Nop())
}

// Cleanup removes all data from the campaign store tables.
func (db *TestDB) Cleanup(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	for _, table := range []string{"campaign_usage", "redemptions", "campaigns"} {
		if _, err := db.Pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// NewCampaign returns a campaign that is live for the next week and open to
// all customers. Tests mutate it before seeding as needed.
func NewCampaign(name string) *model.Campaign {
	now := time.Now().UTC()
	return &model.Campaign{
		ID:                      uuid.New(),
		Name:                    name,
		AppliesTo:               model.AppliesToCart,
		DiscountType:            model.DiscountPercent,
		DiscountValue:           decimal.NewFromInt(10),
		AllowAllCustomers:       true,
		StartAt:                 now.AddDate(0, 0, -1),
		EndAt:                   now.AddDate(0, 0, 7),
		MaxTxnPerCustomerPerDay: model.DefaultMaxTxnPerCustomerPerDay,
		Active:                  true,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

// SeedCampaign persists a campaign through the repository.
func SeedCampaign(t *testing.T, repo repository.CampaignRepository, c *model.Campaign) {
	t.Helper()

	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("failed to seed campaign %s: %v", c.Name, err)
	}
}

// NewCart returns a cart snapshot for the given customer.
func NewCart(customerID string, subtotal, delivery int64) model.CartSnapshot {
	return model.CartSnapshot{
		CustomerID:  customerID,
		Subtotal:    decimal.NewFromInt(subtotal),
		DeliveryFee: decimal.NewFromInt(delivery),
	}
}
