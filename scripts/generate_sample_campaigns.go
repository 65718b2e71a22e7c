package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"campaign-engine/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// generateSampleCampaigns writes a development fixture with three
// deterministic campaigns plus a batch of randomised ones, for use with
// SEED_ENABLED=true.
func main() {
	outPath := "data/campaigns.json"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	now := time.Now()
	campaigns := []model.Campaign{
		{
			ID:                      uuid.New(),
			Name:                    "Cart 10% OFF",
			Description:             "10% discount on cart subtotal for all customers.",
			AppliesTo:               model.AppliesToCart,
			DiscountType:            model.DiscountPercent,
			DiscountValue:           decimal.NewFromInt(10),
			MaxDiscountAmount:       decimalPtr(200),
			AllowAllCustomers:       true,
			StartAt:                 now.AddDate(0, 0, -1),
			EndAt:                   now.AddDate(0, 0, 30),
			RunDaysLimit:            intPtr(15),
			TotalBudgetLimit:        decimalPtr(1000),
			MaxTxnPerCustomerPerDay: 2,
			Active:                  true,
		},
		{
			ID:                      uuid.New(),
			Name:                    "Delivery FLAT 50",
			Description:             "Flat 50 discount on delivery charges.",
			AppliesTo:               model.AppliesToDelivery,
			DiscountType:            model.DiscountFlat,
			DiscountValue:           decimal.NewFromInt(50),
			MaxDiscountAmount:       decimalPtr(50),
			AllowAllCustomers:       true,
			StartAt:                 now.AddDate(0, 0, -1),
			EndAt:                   now.AddDate(0, 0, 30),
			TotalBudgetLimit:        decimalPtr(500),
			MaxTxnPerCustomerPerDay: 3,
			Active:                  true,
		},
		{
			ID:                      uuid.New(),
			Name:                    "Targeted Cart 20%",
			Description:             "20% discount only for customer1.",
			AppliesTo:               model.AppliesToCart,
			DiscountType:            model.DiscountPercent,
			DiscountValue:           decimal.NewFromInt(20),
			MaxDiscountAmount:       decimalPtr(300),
			AllowAllCustomers:       false,
			CustomerIDs:             []string{"customer1"},
			StartAt:                 now.AddDate(0, 0, -1),
			EndAt:                   now.AddDate(0, 0, 10),
			RunDaysLimit:            intPtr(5),
			TotalBudgetLimit:        decimalPtr(800),
			MaxTxnPerCustomerPerDay: 1,
			Active:                  true,
		},
	}

	nameChunks := []string{"Mega", "Super", "Deal", "Fest", "Saver", "Prime", "Ultra", "Smart"}
	for i := 0; i < 47; i++ {
		appliesTo := model.AppliesToCart
		if rand.Intn(2) == 1 {
			appliesTo = model.AppliesToDelivery
		}
		discountType := model.DiscountPercent
		value := decimal.NewFromInt(int64(5 + rand.Intn(36))) // 5%-40%
		if rand.Intn(2) == 1 {
			discountType = model.DiscountFlat
			value = decimal.NewFromInt(int64(20 + rand.Intn(181))) // flat 20-200
		}

		campaigns = append(campaigns, model.Campaign{
			ID:                      uuid.New(),
			Name:                    fmt.Sprintf("%s Campaign %d", nameChunks[rand.Intn(len(nameChunks))], i+1),
			Description:             "Auto-generated sample campaign",
			AppliesTo:               appliesTo,
			DiscountType:            discountType,
			DiscountValue:           value,
			MaxDiscountAmount:       decimalPtr([]int64{100, 150, 200, 300}[rand.Intn(4)]),
			AllowAllCustomers:       true,
			StartAt:                 now.AddDate(0, 0, -rand.Intn(4)),
			EndAt:                   now.AddDate(0, 0, 10+rand.Intn(31)),
			TotalBudgetLimit:        decimalPtr([]int64{500, 1000, 2000, 5000}[rand.Intn(4)]),
			MaxTxnPerCustomerPerDay: 1 + rand.Intn(3),
			Active:                  true,
		})
	}

	data, err := json.MarshalIndent(campaigns, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal campaigns: %v", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		log.Fatalf("Failed to write fixture: %v", err)
	}

	fmt.Printf("Wrote %d campaigns to %s\n", len(campaigns), outPath)
}

func decimalPtr(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

func intPtr(n int) *int {
	return &n
}
