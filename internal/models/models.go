package models

import (
	"strings"
	"time"
)

// Product represents a catalog product
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ProductVariant identifies a purchasable SKU. Up to three named option
// slots (e.g. Size/Color/Material) instead of fixed size/color columns.
type ProductVariant struct {
	ID             int64     `db:"id" json:"id"`
	ProductID      int64     `db:"product_id" json:"product_id"`
	SKU            string    `db:"sku" json:"sku"`
	Price          int64     `db:"price" json:"price"`
	CompareAtPrice *int64    `db:"compare_at_price" json:"compare_at_price,omitempty"`
	CostPerItem    *int64    `db:"cost_per_item" json:"cost_per_item,omitempty"`
	Barcode        *string   `db:"barcode" json:"barcode,omitempty"`
	Option1Name    *string   `db:"option1_name" json:"option1_name,omitempty"`
	Option1Value   *string   `db:"option1_value" json:"option1_value,omitempty"`
	Option2Name    *string   `db:"option2_name" json:"option2_name,omitempty"`
	Option2Value   *string   `db:"option2_value" json:"option2_value,omitempty"`
	Option3Name    *string   `db:"option3_name" json:"option3_name,omitempty"`
	Option3Value   *string   `db:"option3_value" json:"option3_value,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName joins the populated option values, e.g. "XL Black".
func (v *ProductVariant) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, val := range []*string{v.Option1Value, v.Option2Value, v.Option3Value} {
		if val != nil && *val != "" {
			parts = append(parts, *val)
		}
	}
	return strings.Join(parts, " ")
}

// VariantDetail is a variant joined with its owning product, used when
// snapshotting line items at order time.
type VariantDetail struct {
	ProductVariant
	ProductTitle string `db:"product_title" json:"product_title"`
}

// Inventory is the stock record backing one variant. Quantity may reach
// exactly zero but never goes negative. SafetyStock is an informational
// alert threshold, not a sales floor.
type Inventory struct {
	ID               int64     `db:"id" json:"id"`
	ProductVariantID int64     `db:"product_variant_id" json:"product_variant_id"`
	Quantity         int       `db:"quantity" json:"quantity"`
	SafetyStock      int       `db:"safety_stock" json:"safety_stock"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// InventoryLog is an append-only audit row, one per adjustment.
type InventoryLog struct {
	ID          int64     `db:"id" json:"id"`
	InventoryID int64     `db:"inventory_id" json:"inventory_id"`
	Adjustment  int       `db:"adjustment" json:"adjustment"`
	Reason      string    `db:"reason" json:"reason"`
	UserID      *int64    `db:"user_id" json:"user_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Discount types
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Discount is a coupon definition. For fixed discounts Value is an amount
// in cents; for percentage discounts it is the percentage (10 = 10%).
type Discount struct {
	ID         int64      `db:"id" json:"id"`
	Code       string     `db:"code" json:"code"`
	Type       string     `db:"type" json:"type"`
	Value      float64    `db:"value" json:"value"`
	UsageLimit *int       `db:"usage_limit" json:"usage_limit,omitempty"`
	UsedCount  int        `db:"used_count" json:"used_count"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// TaxRate maps a shipping country to a percentage rate. IsCompound and
// Priority exist in the data model but only the highest-priority rate is
// applied; compounding is unsupported.
type TaxRate struct {
	ID            int64   `db:"id" json:"id"`
	Name          string  `db:"name" json:"name"`
	Rate          float64 `db:"rate" json:"rate"`
	CountryCode   string  `db:"country_code" json:"country_code"`
	RegionCode    *string `db:"region_code" json:"region_code,omitempty"`
	IsCompound    bool    `db:"is_compound" json:"is_compound"`
	IsShippingTax bool    `db:"is_shipping_tax" json:"is_shipping_tax"`
	Priority      int     `db:"priority" json:"priority"`
}

// ShippingRate is zone rate data; checkout uses the flat threshold rule
// and leaves these tables as a future extension point.
type ShippingRate struct {
	ID             int64  `db:"id" json:"id"`
	ShippingZoneID int64  `db:"shipping_zone_id" json:"shipping_zone_id"`
	Name           string `db:"name" json:"name"`
	Type           string `db:"type" json:"type"`
	Price          int64  `db:"price" json:"price"`
	MinLimit       *int64 `db:"min_limit" json:"min_limit,omitempty"`
	MaxLimit       *int64 `db:"max_limit" json:"max_limit,omitempty"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Payment statuses
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Fulfillment statuses
const (
	FulfillmentStatusUnfulfilled = "unfulfilled"
	FulfillmentStatusFulfilled   = "fulfilled"
)

// Order is the aggregate root of a purchase. All monetary fields are in
// cents and total is always derivable from the stored fields:
// total = max(0, subtotal + tax_amount + shipping_amount - discount_amount).
type Order struct {
	ID                int64     `db:"id" json:"id"`
	OrderNumber       string    `db:"order_number" json:"order_number"`
	UserID            *int64    `db:"user_id" json:"user_id,omitempty"`
	Subtotal          int64     `db:"subtotal" json:"subtotal"`
	DiscountCode      *string   `db:"discount_code" json:"discount_code,omitempty"`
	DiscountAmount    int64     `db:"discount_amount" json:"discount_amount"`
	TaxAmount         int64     `db:"tax_amount" json:"tax_amount"`
	ShippingAmount    int64     `db:"shipping_amount" json:"shipping_amount"`
	Total             int64     `db:"total" json:"total"`
	Status            string    `db:"status" json:"status"`
	PaymentStatus     string    `db:"payment_status" json:"payment_status"`
	FulfillmentStatus string    `db:"fulfillment_status" json:"fulfillment_status"`
	Notes             *string   `db:"notes" json:"notes,omitempty"`
	IdempotencyKey    *string   `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// OrderItem is a line item snapshot: product and variant names plus the
// unit price are copied at order time so later catalog edits never alter
// historical orders.
type OrderItem struct {
	ID               int64  `db:"id" json:"id"`
	OrderID          int64  `db:"order_id" json:"order_id"`
	ProductVariantID int64  `db:"product_variant_id" json:"product_variant_id"`
	ProductName      string `db:"product_name" json:"product_name"`
	VariantName      string `db:"variant_name" json:"variant_name"`
	Quantity         int    `db:"quantity" json:"quantity"`
	Price            int64  `db:"price" json:"price"`
	Total            int64  `db:"total" json:"total"`
}

// ShippingAddress is the postal destination captured once at order time.
type ShippingAddress struct {
	ID        int64   `db:"id" json:"id"`
	OrderID   int64   `db:"order_id" json:"order_id"`
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	Company   *string `db:"company" json:"company,omitempty"`
	Address1  string  `db:"address1" json:"address1"`
	Address2  *string `db:"address2" json:"address2,omitempty"`
	City      string  `db:"city" json:"city"`
	Province  *string `db:"province" json:"province,omitempty"`
	Country   string  `db:"country" json:"country"`
	Zip       string  `db:"zip" json:"zip"`
	Phone     *string `db:"phone" json:"phone,omitempty"`
}

// Payment is a pending payment record; capture happens out of process.
type Payment struct {
	ID        int64     `db:"id" json:"id"`
	OrderID   int64     `db:"order_id" json:"order_id"`
	Method    string    `db:"method" json:"method"`
	Amount    int64     `db:"amount" json:"amount"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
