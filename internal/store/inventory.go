package store

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"github.com/jmoiron/sqlx"
)

// LockInventory returns the inventory row for a variant with a row-level
// lock held for the rest of the transaction, creating a zero-quantity row
// on first use. The lock is what keeps two concurrent checkouts from both
// passing the stock guard.
func (s *Store) LockInventory(ctx context.Context, tx *sqlx.Tx, variantID int64) (*models.Inventory, error) {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO inventories (product_variant_id, quantity, safety_stock)
		VALUES ($1, 0, 0)
		ON CONFLICT (product_variant_id) DO NOTHING`, variantID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure inventory row: %w", err)
	}

	var inv models.Inventory
	err = tx.GetContext(ctx, &inv,
		"SELECT * FROM inventories WHERE product_variant_id = $1 FOR UPDATE", variantID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock inventory: %w", err)
	}
	return &inv, nil
}

// AddInventoryQuantity applies a signed delta to a locked inventory row.
func (s *Store) AddInventoryQuantity(ctx context.Context, tx *sqlx.Tx, inventoryID int64, delta int) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE inventories SET quantity = quantity + $1, updated_at = NOW() WHERE id = $2",
		delta, inventoryID)
	return err
}

// InsertInventoryLog appends the audit row paired with a quantity change.
func (s *Store) InsertInventoryLog(ctx context.Context, tx *sqlx.Tx, log *models.InventoryLog) error {
	query := `
		INSERT INTO inventory_logs (inventory_id, adjustment, reason, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return tx.GetContext(ctx, log, query,
		log.InventoryID, log.Adjustment, log.Reason, log.UserID)
}

// GetInventoryByVariant retrieves the inventory record for a variant,
// or nil if none has been created yet.
func (s *Store) GetInventoryByVariant(ctx context.Context, variantID int64) (*models.Inventory, error) {
	var inv models.Inventory
	err := s.db.GetContext(ctx, &inv,
		"SELECT * FROM inventories WHERE product_variant_id = $1", variantID)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInventoryLogs lists recent audit rows for an inventory record.
func (s *Store) GetInventoryLogs(ctx context.Context, inventoryID int64, limit int) ([]models.InventoryLog, error) {
	var logs []models.InventoryLog
	err := s.db.SelectContext(ctx, &logs,
		"SELECT * FROM inventory_logs WHERE inventory_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2",
		inventoryID, limit)
	return logs, err
}
