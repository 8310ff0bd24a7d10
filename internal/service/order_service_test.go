package service

import (
	"errors"
	"strings"
	"testing"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestLineSnapshot(t *testing.T) {
	variant := &models.VariantDetail{
		ProductVariant: models.ProductVariant{
			ID:           7,
			Price:        1000,
			Option1Name:  strPtr("Size"),
			Option1Value: strPtr("XL"),
			Option2Name:  strPtr("Color"),
			Option2Value: strPtr("Black"),
		},
		ProductTitle: "Classic Tee",
	}

	item := lineSnapshot(variant, 2)

	assert.Equal(t, int64(7), item.ProductVariantID)
	assert.Equal(t, "Classic Tee", item.ProductName)
	assert.Equal(t, "XL Black", item.VariantName)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, int64(1000), item.Price)
	assert.Equal(t, int64(2000), item.Total)
}

func TestLineSnapshotNoOptions(t *testing.T) {
	variant := &models.VariantDetail{
		ProductVariant: models.ProductVariant{ID: 1, Price: 500},
		ProductTitle:   "Gift Card",
	}

	item := lineSnapshot(variant, 1)

	assert.Equal(t, "", item.VariantName)
	assert.Equal(t, int64(500), item.Total)
}

func TestOrderTotal(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		tax      int64
		shipping int64
		discount int64
		want     int64
	}{
		{"no adjustments", 2000, 0, 0, 0, 2000},
		{"flat shipping no tax", 2000, 0, 1000, 0, 3000},
		{"discounted free shipping", 20000, 1500, 0, 2000, 19500},
		{"discount equals subtotal", 2000, 0, 0, 2000, 0},
		{"clamped at zero", 2000, 0, 0, 5000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orderTotal(tt.subtotal, tt.tax, tt.shipping, tt.discount)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, int64(0))
		})
	}
}

func TestNewOrderNumber(t *testing.T) {
	number := newOrderNumber()

	assert.True(t, strings.HasPrefix(number, "ORD-"))
	assert.Len(t, number, 12)
	assert.NotEqual(t, number, newOrderNumber())
}

func TestFailReason(t *testing.T) {
	assert.Equal(t, "variant_not_found", failReason(&models.VariantNotFoundError{VariantID: 9}))
	assert.Equal(t, "insufficient_stock", failReason(&models.InsufficientStockError{VariantID: 9}))
	assert.Equal(t, "db_error", failReason(errors.New("connection reset")))
}

func TestShippingAddressRecord(t *testing.T) {
	req := &ShippingAddressRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Address1:  "1 Analytical Way",
		City:      "London",
		Country:   "GB",
		Zip:       "SW1A 1AA",
		Phone:     "+44 20 0000 0000",
	}

	addr := shippingAddressRecord(42, req)

	assert.Equal(t, int64(42), addr.OrderID)
	assert.Equal(t, "Ada", addr.FirstName)
	assert.Nil(t, addr.Company)
	assert.Nil(t, addr.Address2)
	assert.NotNil(t, addr.Phone)
	assert.Equal(t, "+44 20 0000 0000", *addr.Phone)
}
