package eligibility

import (
	"testing"
	"time"

	"campaign-engine/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(n int) *int {
	return &n
}

// activeCampaign returns a campaign that passes every check for customer1.
func activeCampaign() model.Campaign {
	return model.Campaign{
		Name:                    "Cart 10% OFF",
		AppliesTo:               model.AppliesToCart,
		DiscountType:            model.DiscountPercent,
		DiscountValue:           dec("10"),
		AllowAllCustomers:       true,
		StartAt:                 now.AddDate(0, 0, -7),
		EndAt:                   now.AddDate(0, 0, 7),
		MaxTxnPerCustomerPerDay: model.DefaultMaxTxnPerCustomerPerDay,
		Active:                  true,
	}
}

func okCart() model.CartSnapshot {
	return model.CartSnapshot{
		CustomerID:  "customer1",
		Subtotal:    dec("500.00"),
		DeliveryFee: dec("50.00"),
	}
}

func TestCheck_Passes(t *testing.T) {
	c := activeCampaign()

	err := Check(&c, okCart(), Usage{}, now)

	require.NoError(t, err)
}

func TestCheck_Schedule(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *model.Campaign)
		wantErr error
	}{
		{
			name:    "deactivated",
			mutate:  func(c *model.Campaign) { c.Active = false },
			wantErr: model.ErrCampaignInactive,
		},
		{
			name:    "window ended",
			mutate:  func(c *model.Campaign) { c.EndAt = now.Add(-time.Hour) },
			wantErr: model.ErrCampaignExpired,
		},
		{
			name:    "not yet started",
			mutate:  func(c *model.Campaign) { c.StartAt = now.Add(time.Hour) },
			wantErr: model.ErrCampaignInactive,
		},
		{
			name: "run days exhausted",
			mutate: func(c *model.Campaign) {
				c.StartAt = now.AddDate(0, 0, -5)
				c.RunDaysLimit = intPtr(3)
			},
			wantErr: model.ErrCampaignInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := activeCampaign()
			tt.mutate(&c)

			err := Check(&c, okCart(), Usage{}, now)

			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestCheck_RunDaysBoundary(t *testing.T) {
	c := activeCampaign()
	c.StartAt = now.AddDate(0, 0, -3)
	c.RunDaysLimit = intPtr(3)

	// The limit elapses exactly RunDaysLimit days after StartAt.
	assert.Equal(t, model.ErrCampaignInactive, Check(&c, okCart(), Usage{}, now))

	c.RunDaysLimit = intPtr(4)
	assert.NoError(t, Check(&c, okCart(), Usage{}, now))
}

func TestCheck_Targeting(t *testing.T) {
	c := activeCampaign()
	c.AllowAllCustomers = false
	c.CustomerIDs = []string{"customer1", "customer2"}

	cart := okCart()
	assert.NoError(t, Check(&c, cart, Usage{}, now))

	cart.CustomerID = "customer3"
	assert.Equal(t, model.ErrCustomerNotTargeted, Check(&c, cart, Usage{}, now))
}

func TestCheck_Rule(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *model.Campaign)
		cart    model.CartSnapshot
		wantErr error
	}{
		{
			name:    "subtotal below minimum",
			mutate:  func(c *model.Campaign) { c.MinSubtotal = decPtr("500") },
			cart:    model.CartSnapshot{CustomerID: "customer1", Subtotal: dec("400"), DeliveryFee: dec("50")},
			wantErr: model.ErrRuleNotSatisfied,
		},
		{
			name:    "subtotal exactly at minimum",
			mutate:  func(c *model.Campaign) { c.MinSubtotal = decPtr("500") },
			cart:    model.CartSnapshot{CustomerID: "customer1", Subtotal: dec("500"), DeliveryFee: dec("50")},
			wantErr: nil,
		},
		{
			name:    "delivery fee below minimum",
			mutate:  func(c *model.Campaign) { c.MinDeliveryFee = decPtr("30") },
			cart:    model.CartSnapshot{CustomerID: "customer1", Subtotal: dec("500"), DeliveryFee: dec("20")},
			wantErr: model.ErrRuleNotSatisfied,
		},
		{
			name:    "zero base for cart campaign",
			mutate:  func(c *model.Campaign) {},
			cart:    model.CartSnapshot{CustomerID: "customer1", Subtotal: dec("0"), DeliveryFee: dec("50")},
			wantErr: model.ErrRuleNotSatisfied,
		},
		{
			name:    "zero base for delivery campaign",
			mutate:  func(c *model.Campaign) { c.AppliesTo = model.AppliesToDelivery },
			cart:    model.CartSnapshot{CustomerID: "customer1", Subtotal: dec("500"), DeliveryFee: dec("0")},
			wantErr: model.ErrRuleNotSatisfied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := activeCampaign()
			tt.mutate(&c)

			err := Check(&c, tt.cart, Usage{}, now)

			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestCheck_UsageLimits(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *model.Campaign)
		usage   Usage
		wantErr error
	}{
		{
			name: "global usage limit reached",
			mutate: func(c *model.Campaign) {
				c.UsageLimit = intPtr(100)
				c.UsageCount = 100
			},
			wantErr: model.ErrUsageLimitExceeded,
		},
		{
			name: "global usage limit not yet reached",
			mutate: func(c *model.Campaign) {
				c.UsageLimit = intPtr(100)
				c.UsageCount = 99
			},
			wantErr: nil,
		},
		{
			name:    "per customer lifetime limit reached",
			mutate:  func(c *model.Campaign) { c.PerCustomerLimit = intPtr(2) },
			usage:   Usage{CustomerTotal: 2},
			wantErr: model.ErrCustomerUsageLimit,
		},
		{
			name:    "per customer per day limit reached",
			mutate:  func(c *model.Campaign) { c.MaxTxnPerCustomerPerDay = 1 },
			usage:   Usage{CustomerTotal: 5, CustomerToday: 1},
			wantErr: model.ErrCustomerUsageLimit,
		},
		{
			name:    "per day limit resets across days",
			mutate:  func(c *model.Campaign) { c.MaxTxnPerCustomerPerDay = 1 },
			usage:   Usage{CustomerTotal: 5, CustomerToday: 0},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := activeCampaign()
			tt.mutate(&c)

			err := Check(&c, okCart(), tt.usage, now)

			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestCheck_Budget(t *testing.T) {
	c := activeCampaign()
	c.TotalBudgetLimit = decPtr("1000")
	c.BudgetUsed = dec("1000")

	assert.Equal(t, model.ErrBudgetExhausted, Check(&c, okCart(), Usage{}, now))

	c.BudgetUsed = dec("999.99")
	assert.NoError(t, Check(&c, okCart(), Usage{}, now))
}

func TestClampToBudget(t *testing.T) {
	c := activeCampaign()

	// No budget limit leaves the discount untouched.
	got := ClampToBudget(&c, dec("75"))
	assert.True(t, got.Equal(dec("75")))

	c.TotalBudgetLimit = decPtr("1000")
	c.BudgetUsed = dec("950")

	got = ClampToBudget(&c, dec("75"))
	assert.True(t, got.Equal(dec("50")), "got %s", got)

	got = ClampToBudget(&c, dec("25"))
	assert.True(t, got.Equal(dec("25")))
}
