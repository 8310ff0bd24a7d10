package redisclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client wraps Redis for the storefront's two cache concerns: checkout
// idempotency keys and a read-side stock quantity cache. Postgres is the
// source of truth for both; a cache miss always falls back to the DB.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SetIdempotentOrder maps an idempotency key to a placed order ID.
func (c *Client) SetIdempotentOrder(ctx context.Context, key string, orderID int64, ttl time.Duration) error {
	return c.rdb.Set(ctx, idempotencyKey(key), orderID, ttl).Err()
}

// GetIdempotentOrder returns the order ID previously stored for an
// idempotency key, with ok=false on a miss.
func (c *Client) GetIdempotentOrder(ctx context.Context, key string) (int64, bool, error) {
	val, err := c.rdb.Get(ctx, idempotencyKey(key)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	orderID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt idempotency value: %w", err)
	}
	return orderID, true, nil
}

// SetStockQuantity refreshes the cached quantity for a variant after a
// committed adjustment.
func (c *Client) SetStockQuantity(ctx context.Context, variantID int64, quantity int) error {
	return c.rdb.Set(ctx, stockKey(variantID), quantity, 0).Err()
}

// GetStockQuantity reads the cached quantity for a variant, with
// ok=false on a miss.
func (c *Client) GetStockQuantity(ctx context.Context, variantID int64) (int, bool, error) {
	val, err := c.rdb.Get(ctx, stockKey(variantID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	quantity, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt stock value: %w", err)
	}
	return quantity, true, nil
}

func idempotencyKey(key string) string {
	return "idempotency:" + key
}

func stockKey(variantID int64) string {
	return fmt.Sprintf("stock:%d", variantID)
}
