package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/redisclient"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// orderPlacementReason is the audit-log reason for checkout deductions.
const orderPlacementReason = "Order Placement"

// OrderService assembles orders: one transaction that snapshots line
// items, deducts stock, applies a discount, computes tax and shipping,
// and persists the order with its address and pending payment.
type OrderService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	inventory      *InventoryService
	discounts      *DiscountService
	pricing        *PricingService
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	inventory *InventoryService,
	discounts *DiscountService,
	pricing *PricingService,
	idempotencyTTL time.Duration,
) *OrderService {
	return &OrderService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		inventory:      inventory,
		discounts:      discounts,
		pricing:        pricing,
		idempotencyTTL: idempotencyTTL,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a validated checkout payload.
type CreateOrderRequest struct {
	UserID          *int64                 `json:"user_id,omitempty"`
	Items           []CartItemRequest      `json:"items" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address" binding:"required"`
	DiscountCode    string                 `json:"discount_code,omitempty"`
	PaymentMethod   string                 `json:"payment_method,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	IdempotencyKey  string                 `json:"idempotency_key,omitempty"`
}

// CartItemRequest represents one cart line.
type CartItemRequest struct {
	VariantID int64 `json:"variant_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// ShippingAddressRequest carries the cart-submitted postal fields.
type ShippingAddressRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address1" binding:"required"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city" binding:"required"`
	Province  string `json:"province,omitempty"`
	Country   string `json:"country" binding:"required"`
	Zip       string `json:"zip" binding:"required"`
	Phone     string `json:"phone,omitempty"`
}

// stockLevel is a post-commit snapshot used to refresh the Redis cache.
type stockLevel struct {
	variantID int64
	quantity  int
}

// CreateOrder places an order as one all-or-nothing transaction. On a
// row-lock loss (serialization failure or deadlock) the transaction is
// retried once before the error is surfaced.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderPlacementLatency.Observe(time.Since(start).Seconds())
	}()

	if req.IdempotencyKey != "" {
		if existing, err := s.findExistingOrder(ctx, req.IdempotencyKey); err != nil {
			return nil, err
		} else if existing != nil {
			s.logger.Info("Duplicate order request detected",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Int64("order_id", existing.ID))
			return existing, nil
		}
	}

	order, levels, err := s.placeOrder(ctx, req)
	if err != nil && store.IsRetryableTxError(err) {
		util.TxRetriesTotal.Inc()
		s.logger.Warn("Order transaction lost a lock race, retrying once", zap.Error(err))
		order, levels, err = s.placeOrder(ctx, req)
	}
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues(failReason(err)).Inc()
		return nil, err
	}

	util.OrdersPlacedTotal.Inc()
	util.OrderTotalCents.Observe(float64(order.Total))
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total", order.Total))

	s.afterCommit(ctx, req, order, levels)
	return order, nil
}

// placeOrder runs the placement sequence inside one transaction:
// validate and snapshot every line, deduct stock, price the order,
// then persist order, address, items and pending payment.
func (s *OrderService) placeOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, []stockLevel, error) {
	tx, err := s.store.BeginTxx(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Resolve variants, snapshot names and prices, accumulate subtotal.
	var subtotal int64
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		variant, err := s.store.GetVariantDetail(ctx, tx, line.VariantID)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, lineSnapshot(variant, line.Quantity))
		subtotal += variant.Price * int64(line.Quantity)
	}

	// 2. Deduct stock, in submitted order, before any order row exists.
	levels := make([]stockLevel, 0, len(req.Items))
	for _, line := range req.Items {
		inv, err := s.inventory.Adjust(ctx, tx, line.VariantID, -line.Quantity, orderPlacementReason, req.UserID)
		if err != nil {
			return nil, nil, err
		}
		levels = append(levels, stockLevel{variantID: line.VariantID, quantity: inv.Quantity})
	}

	// 3. Tax and shipping from the destination country and subtotal.
	taxAmount, err := s.pricing.TaxFor(ctx, tx, req.ShippingAddress.Country, subtotal)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute tax: %w", err)
	}
	shippingAmount := s.pricing.ShippingFor(subtotal)

	// 4. Discount: an invalid code costs the shopper the benefit, never
	// the checkout. used_count is bumped inside this transaction so it
	// only sticks if the order commits.
	var discountAmount int64
	var discountCode *string
	if req.DiscountCode != "" {
		result, err := s.discounts.Resolve(ctx, tx, req.DiscountCode, subtotal)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve discount: %w", err)
		}
		if result.Valid {
			applied, err := s.store.IncrementDiscountUsage(ctx, tx, result.Discount.ID)
			if err != nil {
				return nil, nil, err
			}
			if applied {
				discountAmount = result.Amount
				code := req.DiscountCode
				discountCode = &code
				util.DiscountsAppliedTotal.Inc()
			} else {
				util.DiscountsRejectedTotal.WithLabelValues("limit_reached").Inc()
			}
		}
	}

	// 5-6. Totals and persistence.
	order := &models.Order{
		OrderNumber:       newOrderNumber(),
		UserID:            req.UserID,
		Subtotal:          subtotal,
		DiscountCode:      discountCode,
		DiscountAmount:    discountAmount,
		TaxAmount:         taxAmount,
		ShippingAmount:    shippingAmount,
		Total:             orderTotal(subtotal, taxAmount, shippingAmount, discountAmount),
		Status:            models.OrderStatusPending,
		PaymentStatus:     models.PaymentStatusPending,
		FulfillmentStatus: models.FulfillmentStatusUnfulfilled,
	}
	if req.Notes != "" {
		order.Notes = &req.Notes
	}
	if req.IdempotencyKey != "" {
		order.IdempotencyKey = &req.IdempotencyKey
	}

	if err := s.store.CreateOrder(ctx, tx, order); err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	addr := shippingAddressRecord(order.ID, &req.ShippingAddress)
	if err := s.store.CreateShippingAddress(ctx, tx, addr); err != nil {
		return nil, nil, fmt.Errorf("failed to create shipping address: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		if err := s.store.CreateOrderItem(ctx, tx, &items[i]); err != nil {
			return nil, nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if req.PaymentMethod != "" {
		payment := &models.Payment{
			OrderID: order.ID,
			Method:  req.PaymentMethod,
			Amount:  order.Total,
			Status:  models.PaymentStatusPending,
		}
		if err := s.store.CreatePayment(ctx, tx, payment); err != nil {
			return nil, nil, fmt.Errorf("failed to create payment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return order, levels, nil
}

// afterCommit handles the non-transactional tail of a placed order:
// event publication, stock cache refresh and idempotency bookkeeping.
// Failures here are logged, never surfaced; the order already exists.
func (s *OrderService) afterCommit(ctx context.Context, req *CreateOrderRequest, order *models.Order, levels []stockLevel) {
	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Subtotal:    order.Subtotal,
		Total:       order.Total,
	}
	for _, line := range req.Items {
		event.Items = append(event.Items, models.OrderItemData{
			ProductVariantID: line.VariantID,
			Quantity:         line.Quantity,
		})
	}
	if err := s.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	for _, level := range levels {
		if err := s.redis.SetStockQuantity(ctx, level.variantID, level.quantity); err != nil {
			s.logger.Warn("Failed to refresh stock cache",
				zap.Int64("variant_id", level.variantID),
				zap.Error(err))
		}
	}

	if req.IdempotencyKey != "" {
		if err := s.redis.SetIdempotentOrder(ctx, req.IdempotencyKey, order.ID, s.idempotencyTTL); err != nil {
			s.logger.Warn("Failed to cache idempotency key", zap.Error(err))
		}
	}
}

// findExistingOrder checks the Redis idempotency cache first and falls
// back to the unique column in Postgres.
func (s *OrderService) findExistingOrder(ctx context.Context, key string) (*models.Order, error) {
	if orderID, ok, err := s.redis.GetIdempotentOrder(ctx, key); err == nil && ok {
		order, err := s.store.GetOrderByID(ctx, orderID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, models.ErrOrderNotFound) {
			return nil, err
		}
	}

	order, err := s.store.GetOrderByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	return order, nil
}

// GetOrder retrieves the order read model: items, payments and address.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, []models.OrderItem, []models.Payment, *models.ShippingAddress, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	payments, err := s.store.GetPaymentsByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	addr, err := s.store.GetShippingAddressByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return order, items, payments, addr, nil
}

// ListOrders returns a user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.store.GetOrdersByUserID(ctx, userID)
}

// lineSnapshot copies product and variant identity plus the current unit
// price into an order item, decoupled from later catalog edits.
func lineSnapshot(variant *models.VariantDetail, quantity int) models.OrderItem {
	return models.OrderItem{
		ProductVariantID: variant.ID,
		ProductName:      variant.ProductTitle,
		VariantName:      variant.DisplayName(),
		Quantity:         quantity,
		Price:            variant.Price,
		Total:            variant.Price * int64(quantity),
	}
}

// orderTotal is max(0, subtotal + tax + shipping - discount).
func orderTotal(subtotal, tax, shipping, discount int64) int64 {
	total := subtotal + tax + shipping - discount
	if total < 0 {
		return 0
	}
	return total
}

func shippingAddressRecord(orderID int64, req *ShippingAddressRequest) *models.ShippingAddress {
	addr := &models.ShippingAddress{
		OrderID:   orderID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address1:  req.Address1,
		City:      req.City,
		Country:   req.Country,
		Zip:       req.Zip,
	}
	if req.Company != "" {
		addr.Company = &req.Company
	}
	if req.Address2 != "" {
		addr.Address2 = &req.Address2
	}
	if req.Province != "" {
		addr.Province = &req.Province
	}
	if req.Phone != "" {
		addr.Phone = &req.Phone
	}
	return addr
}

// failReason maps a placement error to a metric label.
func failReason(err error) string {
	var notFound *models.VariantNotFoundError
	var noStock *models.InsufficientStockError
	switch {
	case errors.As(err, &notFound):
		return "variant_not_found"
	case errors.As(err, &noStock):
		return "insufficient_stock"
	default:
		return "db_error"
	}
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.New().String()[:8])
}
