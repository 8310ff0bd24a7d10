package service

import (
	"context"
	"math"
	"time"

	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// DiscountService validates coupon codes and computes discount amounts.
type DiscountService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewDiscountService creates a new discount service
func NewDiscountService(store *store.Store) *DiscountService {
	return &DiscountService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// DiscountResult is the outcome of resolving a code against a subtotal.
// An invalid code is not an error: checkout proceeds without the benefit.
type DiscountResult struct {
	Valid    bool
	Amount   int64
	Message  string
	Discount *models.Discount
}

// Resolve looks up a code inside the caller's transaction and evaluates
// it against the cart subtotal. The caller is responsible for bumping
// used_count once the discount is actually applied to a persisted order.
func (ds *DiscountService) Resolve(ctx context.Context, q sqlx.ExtContext, code string, subtotal int64) (*DiscountResult, error) {
	ctx, span := util.StartSpan(ctx, "DiscountService.Resolve")
	defer span.End()

	discount, err := ds.store.GetDiscountByCode(ctx, q, code)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		util.DiscountsRejectedTotal.WithLabelValues("unknown").Inc()
		return &DiscountResult{Valid: false, Message: "Invalid coupon code"}, nil
	}

	result := evaluateDiscount(discount, time.Now(), subtotal)
	if !result.Valid {
		util.DiscountsRejectedTotal.WithLabelValues(rejectReason(result.Message)).Inc()
		ds.logger.Info("Discount rejected",
			zap.String("code", code),
			zap.String("message", result.Message))
	}
	return result, nil
}

// evaluateDiscount applies the expiry, usage-limit, type and clamp rules.
// The discount amount never exceeds the subtotal.
func evaluateDiscount(discount *models.Discount, now time.Time, subtotal int64) *DiscountResult {
	if discount.ExpiresAt != nil && discount.ExpiresAt.Before(now) {
		return &DiscountResult{Valid: false, Message: "Coupon expired"}
	}

	if discount.UsageLimit != nil && discount.UsedCount >= *discount.UsageLimit {
		return &DiscountResult{Valid: false, Message: "Coupon usage limit reached"}
	}

	var amount int64
	if discount.Type == models.DiscountTypePercentage {
		amount = int64(math.Round(float64(subtotal) * discount.Value / 100))
	} else {
		amount = int64(math.Round(discount.Value))
	}

	if amount > subtotal {
		amount = subtotal
	}

	return &DiscountResult{Valid: true, Amount: amount, Discount: discount}
}

func rejectReason(message string) string {
	switch message {
	case "Coupon expired":
		return "expired"
	case "Coupon usage limit reached":
		return "limit_reached"
	default:
		return "unknown"
	}
}
