package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders placed successfully",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order placements",
	}, []string{"reason"})

	OrderPlacementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_placement_latency_seconds",
		Help:    "Latency of the order placement transaction",
		Buckets: prometheus.DefBuckets,
	})

	OrderTotalCents = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_total_cents",
		Help:    "Distribution of order totals in cents",
		Buckets: prometheus.ExponentialBuckets(100, 4, 10),
	})

	StockAdjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Total number of inventory adjustments",
	}, []string{"direction"})

	StockAdjustmentsBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_adjustments_blocked_total",
		Help: "Total number of deductions blocked by the out-of-stock guard",
	})

	DiscountsAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discounts_applied_total",
		Help: "Total number of discount codes applied to orders",
	})

	DiscountsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discounts_rejected_total",
		Help: "Total number of discount codes rejected",
	}, []string{"reason"})

	LowStockAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_alerts_total",
		Help: "Total number of variants observed at or below safety stock",
	})

	TxRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_tx_retries_total",
		Help: "Total number of order transactions retried after lock contention",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
