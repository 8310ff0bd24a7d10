package worker

import (
	"context"
	"log"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// StockAlertWorker watches OrderPlaced events and flags variants whose
// quantity has fallen to or below their safety stock. Safety stock is an
// alert threshold only; it never blocks a sale.
type StockAlertWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	logger       *zap.Logger
}

// NewStockAlertWorker creates a new stock alert worker
func NewStockAlertWorker(consumer *broker.Consumer, store *store.Store) *StockAlertWorker {
	w := &StockAlertWorker{
		consumer: consumer,
		store:    store,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *StockAlertWorker) Start(ctx context.Context) error {
	log.Println("Starting stock alert worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *StockAlertWorker) Stop() error {
	log.Println("Stopping stock alert worker...")
	return w.consumer.Close()
}

func (w *StockAlertWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	for _, item := range event.Items {
		inv, err := w.store.GetInventoryByVariant(ctx, item.ProductVariantID)
		if err != nil {
			w.logger.Error("Failed to read inventory for alert check",
				zap.Int64("variant_id", item.ProductVariantID),
				zap.Error(err))
			continue
		}
		if inv == nil {
			continue
		}

		if inv.Quantity <= inv.SafetyStock {
			util.LowStockAlertsTotal.Inc()
			w.logger.Warn("Variant at or below safety stock",
				zap.Int64("variant_id", item.ProductVariantID),
				zap.Int("quantity", inv.Quantity),
				zap.Int("safety_stock", inv.SafetyStock),
				zap.Int64("order_id", event.OrderID))
		}
	}

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}
