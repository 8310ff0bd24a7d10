package service

import (
	"testing"

	"storefront/config"

	"github.com/stretchr/testify/assert"
)

func newTestPricing() *PricingService {
	return NewPricingService(nil, config.BusinessConfig{
		FlatShippingFee:       1000,
		FreeShippingThreshold: 10000,
	})
}

func TestTaxAmount(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		rate     float64
		want     int64
	}{
		{"zero rate", 20000, 0, 0},
		{"whole percentage", 20000, 10, 2000},
		{"fractional rate rounds", 999, 7.5, 75}, // 74.925 rounds up
		{"zero subtotal", 0, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, taxAmount(tt.subtotal, tt.rate))
		})
	}
}

func TestShippingForFlatFee(t *testing.T) {
	ps := newTestPricing()

	// $20 subtotal pays the flat $10 fee.
	assert.Equal(t, int64(1000), ps.ShippingFor(2000))
}

func TestShippingForThresholdBoundary(t *testing.T) {
	ps := newTestPricing()

	// Free shipping starts strictly above the threshold.
	assert.Equal(t, int64(1000), ps.ShippingFor(10000))
	assert.Equal(t, int64(0), ps.ShippingFor(10001))
	assert.Equal(t, int64(0), ps.ShippingFor(20000))
}
