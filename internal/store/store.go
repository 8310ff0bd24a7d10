package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// BeginTxx opens a transaction for a multi-step write such as order
// placement. Callers must Commit or Rollback.
func (s *Store) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return s.db.BeginTxx(ctx, nil)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsRetryableTxError reports whether err is a serialization failure or
// deadlock, i.e. a transaction that lost a row-lock race and can be retried.
func IsRetryableTxError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves all active products
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE status = 'active' ORDER BY id")
	return products, err
}

// GetVariantsByProductID retrieves all variants of a product
func (s *Store) GetVariantsByProductID(ctx context.Context, productID int64) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	err := s.db.SelectContext(ctx, &variants,
		"SELECT * FROM product_variants WHERE product_id = $1 ORDER BY id", productID)
	return variants, err
}

// GetVariantDetail loads a variant joined with its product title inside
// the caller's transaction. Returns VariantNotFoundError for missing rows.
func (s *Store) GetVariantDetail(ctx context.Context, q sqlx.ExtContext, variantID int64) (*models.VariantDetail, error) {
	var detail models.VariantDetail
	err := sqlx.GetContext(ctx, q, &detail, `
		SELECT v.*, p.title AS product_title
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = $1`, variantID)
	if err == sql.ErrNoRows {
		return nil, &models.VariantNotFoundError{VariantID: variantID}
	}
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetTaxRateForCountry returns the single applicable tax rate for a
// country, highest priority first, or nil when no rate is configured.
func (s *Store) GetTaxRateForCountry(ctx context.Context, q sqlx.ExtContext, countryCode string) (*models.TaxRate, error) {
	var rate models.TaxRate
	err := sqlx.GetContext(ctx, q, &rate, `
		SELECT id, name, rate, country_code, region_code, is_compound, is_shipping_tax, priority
		FROM tax_rates
		WHERE country_code = $1
		ORDER BY priority DESC, id
		LIMIT 1`, countryCode)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// GetShippingRates lists configured zone rates. Read-only data: checkout
// itself uses the flat threshold rule.
func (s *Store) GetShippingRates(ctx context.Context) ([]models.ShippingRate, error) {
	var rates []models.ShippingRate
	err := s.db.SelectContext(ctx, &rates,
		"SELECT * FROM shipping_rates ORDER BY shipping_zone_id, id")
	return rates, err
}
