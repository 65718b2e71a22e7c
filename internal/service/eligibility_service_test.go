package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"campaign-engine/internal/eligibility"
	"campaign-engine/internal/model"
	"campaign-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	d := dec(t, s)
	return &d
}

func intPtr(n int) *int {
	return &n
}

func serviceCampaign(t *testing.T, name string) model.Campaign {
	return model.Campaign{
		ID:                      uuid.New(),
		Name:                    name,
		AppliesTo:               model.AppliesToCart,
		DiscountType:            model.DiscountPercent,
		DiscountValue:           dec(t, "10"),
		AllowAllCustomers:       true,
		StartAt:                 testNow.AddDate(0, 0, -7),
		EndAt:                   testNow.AddDate(0, 0, 7),
		MaxTxnPerCustomerPerDay: model.DefaultMaxTxnPerCustomerPerDay,
		Active:                  true,
		CreatedAt:               testNow,
		UpdatedAt:               testNow,
	}
}

func serviceCart(t *testing.T, subtotal, delivery string) model.CartSnapshot {
	return model.CartSnapshot{
		CustomerID:  "customer1",
		Subtotal:    dec(t, subtotal),
		DeliveryFee: dec(t, delivery),
	}
}

func newEligibilityService(repo repository.CampaignRepository) *eligibilityService {
	return &eligibilityService{
		campaignRepo: repo,
		logger:       zerolog.Nop(),
		now:          func() time.Time { return testNow },
	}
}

func TestFindAvailable_OrdersByDiscountDescending(t *testing.T) {
	small := serviceCampaign(t, "Cart 5% OFF")
	small.DiscountValue = dec(t, "5")
	big := serviceCampaign(t, "Cart 20% OFF")
	big.DiscountValue = dec(t, "20")
	delivery := serviceCampaign(t, "Free delivery")
	delivery.AppliesTo = model.AppliesToDelivery
	delivery.DiscountType = model.DiscountFlat
	delivery.DiscountValue = dec(t, "50")

	mockRepo := new(MockCampaignRepository)
	mockRepo.On("ListActive", mock.Anything, testNow).
		Return([]model.Campaign{small, big, delivery}, nil)
	mockRepo.On("CustomerUsage", mock.Anything, mock.Anything, "customer1", testNow).
		Return(eligibility.Usage{}, nil)

	svc := newEligibilityService(mockRepo)
	results, err := svc.FindAvailable(context.Background(), serviceCart(t, "500.00", "40.00"))

	require.NoError(t, err)
	require.Len(t, results, 3)
	// 20% of 500 = 100, flat 50 clamped to the 40 delivery fee, 5% of 500 = 25.
	assert.Equal(t, big.ID, results[0].CampaignID)
	assert.True(t, results[0].DiscountAmount.Equal(dec(t, "100")))
	assert.Equal(t, delivery.ID, results[1].CampaignID)
	assert.True(t, results[1].DiscountAmount.Equal(dec(t, "40")))
	assert.Equal(t, small.ID, results[2].CampaignID)
	assert.True(t, results[2].DiscountAmount.Equal(dec(t, "25")))
	mockRepo.AssertExpectations(t)
}

func TestFindAvailable_TiesBreakOnCampaignID(t *testing.T) {
	a := serviceCampaign(t, "A")
	b := serviceCampaign(t, "B")

	mockRepo := new(MockCampaignRepository)
	mockRepo.On("ListActive", mock.Anything, testNow).
		Return([]model.Campaign{b, a}, nil)
	mockRepo.On("CustomerUsage", mock.Anything, mock.Anything, "customer1", testNow).
		Return(eligibility.Usage{}, nil)

	svc := newEligibilityService(mockRepo)
	results, err := svc.FindAvailable(context.Background(), serviceCart(t, "500.00", "0"))

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].CampaignID.String() < results[1].CampaignID.String())
}

func TestFindAvailable_SkipsIneligibleCampaigns(t *testing.T) {
	eligible := serviceCampaign(t, "Cart 10% OFF")
	tooSmall := serviceCampaign(t, "Big carts only")
	tooSmall.MinSubtotal = decPtr(t, "1000")
	targeted := serviceCampaign(t, "VIP only")
	targeted.AllowAllCustomers = false
	targeted.CustomerIDs = []string{"customer99"}
	exhausted := serviceCampaign(t, "Limited")
	exhausted.UsageLimit = intPtr(10)
	exhausted.UsageCount = 10

	mockRepo := new(MockCampaignRepository)
	mockRepo.On("ListActive", mock.Anything, testNow).
		Return([]model.Campaign{eligible, tooSmall, targeted, exhausted}, nil)
	mockRepo.On("CustomerUsage", mock.Anything, mock.Anything, "customer1", testNow).
		Return(eligibility.Usage{}, nil)

	svc := newEligibilityService(mockRepo)
	results, err := svc.FindAvailable(context.Background(), serviceCart(t, "500.00", "50.00"))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, eligible.ID, results[0].CampaignID)
	assert.Equal(t, "10% off cart subtotal", results[0].Reason)
}

func TestFindAvailable_SkipsWhenBudgetLeavesNothing(t *testing.T) {
	c := serviceCampaign(t, "Nearly spent")
	c.TotalBudgetLimit = decPtr(t, "1000")
	c.BudgetUsed = dec(t, "1000")

	mockRepo := new(MockCampaignRepository)
	mockRepo.On("ListActive", mock.Anything, testNow).
		Return([]model.Campaign{c}, nil)
	mockRepo.On("CustomerUsage", mock.Anything, mock.Anything, "customer1", testNow).
		Return(eligibility.Usage{}, nil)

	svc := newEligibilityService(mockRepo)
	results, err := svc.FindAvailable(context.Background(), serviceCart(t, "500.00", "0"))

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindAvailable_InvalidCart(t *testing.T) {
	mockRepo := new(MockCampaignRepository)
	svc := newEligibilityService(mockRepo)

	cart := model.CartSnapshot{CustomerID: "customer1", Subtotal: dec(t, "-1")}
	_, err := svc.FindAvailable(context.Background(), cart)

	assert.Equal(t, model.ErrInvalidInput, err)
	mockRepo.AssertNotCalled(t, "ListActive", mock.Anything, mock.Anything)
}

func TestFindAvailable_RepositoryError(t *testing.T) {
	mockRepo := new(MockCampaignRepository)
	mockRepo.On("ListActive", mock.Anything, testNow).
		Return(nil, errors.New("connection lost"))

	svc := newEligibilityService(mockRepo)
	_, err := svc.FindAvailable(context.Background(), serviceCart(t, "500.00", "0"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list active campaigns")
}

func TestFindAvailable_DoesNotConsumeState(t *testing.T) {
	c := serviceCampaign(t, "Cart 10% OFF")
	c.UsageLimit = intPtr(5)
	c.PerCustomerLimit = intPtr(2)
	c.TotalBudgetLimit = decPtr(t, "500")

	store := repository.NewMemoryStore(zerolog.Nop())
	require.NoError(t, store.Create(context.Background(), &c))

	svc := newEligibilityService(store)
	cart := serviceCart(t, "500.00", "40.00")

	first, err := svc.FindAvailable(context.Background(), cart)
	require.NoError(t, err)
	second, err := svc.FindAvailable(context.Background(), cart)
	require.NoError(t, err)

	require.Len(t, first, 1)
	assert.Equal(t, first, second)

	stored, err := store.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.UsageCount)
	assert.True(t, stored.BudgetUsed.IsZero())

	usage, err := store.CustomerUsage(context.Background(), c.ID, "customer1", testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.CustomerTotal)
	assert.Equal(t, 0, usage.CustomerToday)
}

func TestFindAvailable_UsesCustomerUsageCounters(t *testing.T) {
	c := serviceCampaign(t, "Once per customer")
	c.PerCustomerLimit = intPtr(1)

	mockRepo := new(MockCampaignRepository)
	mockRepo.On("ListActive", mock.Anything, testNow).
		Return([]model.Campaign{c}, nil)
	mockRepo.On("CustomerUsage", mock.Anything, c.ID, "customer1", testNow).
		Return(eligibility.Usage{CustomerTotal: 1, CustomerToday: 0}, nil)

	svc := newEligibilityService(mockRepo)
	results, err := svc.FindAvailable(context.Background(), serviceCart(t, "500.00", "0"))

	require.NoError(t, err)
	assert.Empty(t, results)
	mockRepo.AssertExpectations(t)
}
