package service

import (
	"context"
	"math"

	"storefront/config"
	"storefront/internal/store"

	"github.com/jmoiron/sqlx"
)

// PricingService derives tax and shipping amounts for a cart.
type PricingService struct {
	store    *store.Store
	business config.BusinessConfig
}

// NewPricingService creates a new pricing service
func NewPricingService(store *store.Store, business config.BusinessConfig) *PricingService {
	return &PricingService{
		store:    store,
		business: business,
	}
}

// TaxFor computes the tax amount for a subtotal shipped to a country.
// Only the single highest-priority rate applies; a country with no
// configured rate is taxed at zero.
func (ps *PricingService) TaxFor(ctx context.Context, q sqlx.ExtContext, countryCode string, subtotal int64) (int64, error) {
	rate, err := ps.store.GetTaxRateForCountry(ctx, q, countryCode)
	if err != nil {
		return 0, err
	}
	if rate == nil {
		return 0, nil
	}
	return taxAmount(subtotal, rate.Rate), nil
}

// ShippingFor applies the flat threshold rule: free above the
// free-shipping threshold, flat fee otherwise.
func (ps *PricingService) ShippingFor(subtotal int64) int64 {
	if subtotal > ps.business.FreeShippingThreshold {
		return 0
	}
	return ps.business.FlatShippingFee
}

// taxAmount is subtotal * rate%, rounded to the cent.
func taxAmount(subtotal int64, rate float64) int64 {
	return int64(math.Round(float64(subtotal) * rate / 100))
}
