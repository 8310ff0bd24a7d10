package service

import (
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateDiscountPercentage(t *testing.T) {
	discount := &models.Discount{Type: models.DiscountTypePercentage, Value: 10}

	// Scenario: 10% off a $200 subtotal.
	result := evaluateDiscount(discount, time.Now(), 20000)

	assert.True(t, result.Valid)
	assert.Equal(t, int64(2000), result.Amount)
}

func TestEvaluateDiscountFixed(t *testing.T) {
	discount := &models.Discount{Type: models.DiscountTypeFixed, Value: 500}

	result := evaluateDiscount(discount, time.Now(), 10000)

	assert.True(t, result.Valid)
	assert.Equal(t, int64(500), result.Amount)
}

func TestEvaluateDiscountClampedToSubtotal(t *testing.T) {
	tests := []struct {
		name     string
		discount *models.Discount
		subtotal int64
		want     int64
	}{
		{
			name:     "fixed larger than subtotal",
			discount: &models.Discount{Type: models.DiscountTypeFixed, Value: 5000},
			subtotal: 2000,
			want:     2000,
		},
		{
			name:     "hundred percent",
			discount: &models.Discount{Type: models.DiscountTypePercentage, Value: 100},
			subtotal: 2000,
			want:     2000,
		},
		{
			name:     "over a hundred percent",
			discount: &models.Discount{Type: models.DiscountTypePercentage, Value: 150},
			subtotal: 2000,
			want:     2000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := evaluateDiscount(tt.discount, time.Now(), tt.subtotal)
			assert.True(t, result.Valid)
			assert.Equal(t, tt.want, result.Amount)
			assert.LessOrEqual(t, result.Amount, tt.subtotal)
		})
	}
}

func TestEvaluateDiscountRoundsToCent(t *testing.T) {
	discount := &models.Discount{Type: models.DiscountTypePercentage, Value: 7.5}

	// 7.5% of $0.99 is 7.425 cents, rounds to 7.
	result := evaluateDiscount(discount, time.Now(), 99)

	assert.True(t, result.Valid)
	assert.Equal(t, int64(7), result.Amount)
}

func TestEvaluateDiscountExpired(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	discount := &models.Discount{
		Type:      models.DiscountTypePercentage,
		Value:     10,
		ExpiresAt: &expired,
	}

	result := evaluateDiscount(discount, time.Now(), 10000)

	assert.False(t, result.Valid)
	assert.Equal(t, "Coupon expired", result.Message)
	assert.Zero(t, result.Amount)
}

func TestEvaluateDiscountNotYetExpired(t *testing.T) {
	future := time.Now().Add(time.Hour)
	discount := &models.Discount{
		Type:      models.DiscountTypeFixed,
		Value:     100,
		ExpiresAt: &future,
	}

	result := evaluateDiscount(discount, time.Now(), 10000)

	assert.True(t, result.Valid)
}

func TestEvaluateDiscountUsageLimitReached(t *testing.T) {
	limit := 5
	discount := &models.Discount{
		Type:       models.DiscountTypeFixed,
		Value:      100,
		UsageLimit: &limit,
		UsedCount:  5,
	}

	result := evaluateDiscount(discount, time.Now(), 10000)

	assert.False(t, result.Valid)
	assert.Equal(t, "Coupon usage limit reached", result.Message)
}

func TestEvaluateDiscountUnderUsageLimit(t *testing.T) {
	limit := 5
	discount := &models.Discount{
		Type:       models.DiscountTypeFixed,
		Value:      100,
		UsageLimit: &limit,
		UsedCount:  4,
	}

	result := evaluateDiscount(discount, time.Now(), 10000)

	assert.True(t, result.Valid)
}
