package models

import "time"

// Event types
const (
	EventTypeOrderPlaced   = "ORDER_PLACED"
	EventTypeStockAdjusted = "STOCK_ADJUSTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent is published after an order transaction commits.
type OrderPlacedEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      *int64          `json:"user_id,omitempty"`
	Subtotal    int64           `json:"subtotal"`
	Total       int64           `json:"total"`
	Items       []OrderItemData `json:"items"`
}

// StockAdjustedEvent is published after a manual inventory adjustment.
type StockAdjustedEvent struct {
	BaseEvent
	ProductVariantID int64  `json:"product_variant_id"`
	Adjustment       int    `json:"adjustment"`
	Quantity         int    `json:"quantity"`
	Reason           string `json:"reason"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductVariantID int64 `json:"product_variant_id"`
	Quantity         int   `json:"quantity"`
	UnitPrice        int64 `json:"unit_price"`
}
