package store

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateOrder inserts a new order inside the placement transaction.
func (s *Store) CreateOrder(ctx context.Context, tx *sqlx.Tx, order *models.Order) error {
	query := `
		INSERT INTO orders (order_number, user_id, subtotal, discount_code, discount_amount,
			tax_amount, shipping_amount, total, status, payment_status, fulfillment_status,
			notes, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	return tx.GetContext(ctx, order, query,
		order.OrderNumber, order.UserID, order.Subtotal, order.DiscountCode, order.DiscountAmount,
		order.TaxAmount, order.ShippingAmount, order.Total, order.Status, order.PaymentStatus,
		order.FulfillmentStatus, order.Notes, order.IdempotencyKey)
}

// CreateOrderItem inserts a line item snapshot.
func (s *Store) CreateOrderItem(ctx context.Context, tx *sqlx.Tx, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_variant_id, product_name, variant_name, quantity, price, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	return tx.GetContext(ctx, &item.ID, query,
		item.OrderID, item.ProductVariantID, item.ProductName, item.VariantName,
		item.Quantity, item.Price, item.Total)
}

// CreateShippingAddress inserts the order's shipping address.
func (s *Store) CreateShippingAddress(ctx context.Context, tx *sqlx.Tx, addr *models.ShippingAddress) error {
	query := `
		INSERT INTO shipping_addresses (order_id, first_name, last_name, company, address1, address2,
			city, province, country, zip, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	return tx.GetContext(ctx, &addr.ID, query,
		addr.OrderID, addr.FirstName, addr.LastName, addr.Company, addr.Address1, addr.Address2,
		addr.City, addr.Province, addr.Country, addr.Zip, addr.Phone)
}

// CreatePayment inserts a pending payment record.
func (s *Store) CreatePayment(ctx context.Context, tx *sqlx.Tx, payment *models.Payment) error {
	query := `
		INSERT INTO payments (order_id, method, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return tx.GetContext(ctx, payment, query,
		payment.OrderID, payment.Method, payment.Amount, payment.Status)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if isNoRows(err) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByIdempotencyKey retrieves an order by idempotency key
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE idempotency_key = $1", key)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves orders for a user, newest first
func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// GetShippingAddressByOrderID retrieves the shipping address for an order.
func (s *Store) GetShippingAddressByOrderID(ctx context.Context, orderID int64) (*models.ShippingAddress, error) {
	var addr models.ShippingAddress
	err := s.db.GetContext(ctx, &addr,
		"SELECT * FROM shipping_addresses WHERE order_id = $1", orderID)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// GetPaymentsByOrderID retrieves payments for an order
func (s *Store) GetPaymentsByOrderID(ctx context.Context, orderID int64) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.SelectContext(ctx, &payments,
		"SELECT * FROM payments WHERE order_id = $1 ORDER BY created_at DESC", orderID)
	return payments, err
}

// GetDiscountByCode loads a discount inside the placement transaction,
// or nil for an unknown code.
func (s *Store) GetDiscountByCode(ctx context.Context, q sqlx.ExtContext, code string) (*models.Discount, error) {
	var discount models.Discount
	err := sqlx.GetContext(ctx, q, &discount,
		"SELECT * FROM discounts WHERE code = $1", code)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

// IncrementDiscountUsage bumps used_count with the usage limit re-checked
// in the same statement, so two concurrent orders cannot jointly redeem
// past the limit. Returns false when the limit was already reached.
func (s *Store) IncrementDiscountUsage(ctx context.Context, tx *sqlx.Tx, discountID int64) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE discounts
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1 AND (usage_limit IS NULL OR used_count < usage_limit)`,
		discountID)
	if err != nil {
		return false, fmt.Errorf("failed to increment discount usage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
