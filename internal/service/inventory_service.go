package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// InventoryService is the stock ledger: every quantity change goes
// through Adjust so the audit log and the guard stay consistent.
type InventoryService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(store *store.Store, eventPublisher *broker.EventPublisher) *InventoryService {
	return &InventoryService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// Adjust applies a signed delta to a variant's stock inside the caller's
// transaction, creating the inventory row on first use. Deductions that
// would drive quantity negative fail with InsufficientStockError and
// leave nothing written; the enclosing transaction is expected to roll
// back. The audit log row is written in the same transaction as the
// quantity change.
func (is *InventoryService) Adjust(ctx context.Context, tx *sqlx.Tx, variantID int64, delta int, reason string, userID *int64) (*models.Inventory, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.Adjust")
	defer span.End()

	inv, err := is.store.LockInventory(ctx, tx, variantID)
	if err != nil {
		return nil, err
	}

	if delta < 0 && inv.Quantity+delta < 0 {
		util.StockAdjustmentsBlocked.Inc()
		return nil, &models.InsufficientStockError{
			VariantID: variantID,
			Available: inv.Quantity,
			Requested: -delta,
		}
	}

	if err := is.store.AddInventoryQuantity(ctx, tx, inv.ID, delta); err != nil {
		return nil, fmt.Errorf("failed to adjust inventory: %w", err)
	}

	logRow := &models.InventoryLog{
		InventoryID: inv.ID,
		Adjustment:  delta,
		Reason:      reason,
		UserID:      userID,
	}
	if err := is.store.InsertInventoryLog(ctx, tx, logRow); err != nil {
		return nil, fmt.Errorf("failed to write inventory log: %w", err)
	}

	inv.Quantity += delta
	if delta < 0 {
		util.StockAdjustmentsTotal.WithLabelValues("deduct").Inc()
	} else {
		util.StockAdjustmentsTotal.WithLabelValues("add").Inc()
	}
	return inv, nil
}

// AdjustStock runs a standalone adjustment in its own transaction, for
// admin restocks and manual corrections.
func (is *InventoryService) AdjustStock(ctx context.Context, variantID int64, delta int, reason string, userID *int64) (*models.Inventory, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.AdjustStock")
	defer span.End()

	tx, err := is.store.BeginTxx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inv, err := is.Adjust(ctx, tx, variantID, delta, reason, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit adjustment: %w", err)
	}

	is.logger.Info("Stock adjusted",
		zap.Int64("variant_id", variantID),
		zap.Int("delta", delta),
		zap.Int("quantity", inv.Quantity),
		zap.String("reason", reason))

	event := &models.StockAdjustedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeStockAdjusted,
			Timestamp: time.Now(),
		},
		ProductVariantID: variantID,
		Adjustment:       delta,
		Quantity:         inv.Quantity,
		Reason:           reason,
	}
	if err := is.eventPublisher.PublishStockAdjusted(ctx, event); err != nil {
		is.logger.Error("Failed to publish StockAdjusted event", zap.Error(err))
	}

	return inv, nil
}

// GetInventory returns the inventory record and recent audit rows for a
// variant. A variant with no inventory row yet reads as zero stock.
func (is *InventoryService) GetInventory(ctx context.Context, variantID int64) (*models.Inventory, []models.InventoryLog, error) {
	inv, err := is.store.GetInventoryByVariant(ctx, variantID)
	if err != nil {
		return nil, nil, err
	}
	if inv == nil {
		return &models.Inventory{ProductVariantID: variantID}, nil, nil
	}

	logs, err := is.store.GetInventoryLogs(ctx, inv.ID, 50)
	if err != nil {
		return nil, nil, err
	}
	return inv, logs, nil
}
