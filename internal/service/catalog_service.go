package service

import (
	"context"

	"storefront/internal/models"
	"storefront/internal/redisclient"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// CatalogService serves the storefront read model: products, their
// variants and current stock levels.
type CatalogService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, redis *redisclient.Client) *CatalogService {
	return &CatalogService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// VariantView is a variant with its stock quantity for display.
type VariantView struct {
	models.ProductVariant
	InStock int `json:"in_stock"`
}

// ProductView is a product with its variants for display.
type ProductView struct {
	models.Product
	Variants []VariantView `json:"variants"`
}

// ListProducts returns all active products with variants and stock.
func (cs *CatalogService) ListProducts(ctx context.Context) ([]ProductView, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	products, err := cs.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		view, err := cs.productView(ctx, p)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// GetProduct returns one product with variants and stock.
func (cs *CatalogService) GetProduct(ctx context.Context, productID int64) (*ProductView, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct")
	defer span.End()

	product, err := cs.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	view, err := cs.productView(ctx, *product)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListShippingRates lists the configured zone rates.
func (cs *CatalogService) ListShippingRates(ctx context.Context) ([]models.ShippingRate, error) {
	return cs.store.GetShippingRates(ctx)
}

func (cs *CatalogService) productView(ctx context.Context, product models.Product) (ProductView, error) {
	variants, err := cs.store.GetVariantsByProductID(ctx, product.ID)
	if err != nil {
		return ProductView{}, err
	}

	view := ProductView{Product: product, Variants: make([]VariantView, 0, len(variants))}
	for _, v := range variants {
		view.Variants = append(view.Variants, VariantView{
			ProductVariant: v,
			InStock:        cs.stockFor(ctx, v.ID),
		})
	}
	return view, nil
}

// stockFor reads the cached quantity, falling back to the DB and warming
// the cache on a miss. A variant with no inventory row reads as zero.
func (cs *CatalogService) stockFor(ctx context.Context, variantID int64) int {
	if quantity, ok, err := cs.redis.GetStockQuantity(ctx, variantID); err == nil && ok {
		return quantity
	}

	inv, err := cs.store.GetInventoryByVariant(ctx, variantID)
	if err != nil {
		cs.logger.Warn("Failed to read inventory",
			zap.Int64("variant_id", variantID),
			zap.Error(err))
		return 0
	}
	if inv == nil {
		return 0
	}

	if err := cs.redis.SetStockQuantity(ctx, variantID, inv.Quantity); err != nil {
		cs.logger.Warn("Failed to warm stock cache",
			zap.Int64("variant_id", variantID),
			zap.Error(err))
	}
	return inv.Quantity
}
