package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// InventoryRepository owns the stock counter key. All mutation goes through
// single Redis commands or server-side scripts; the repository itself holds
// no locks and no in-process state.
type InventoryRepository struct {
	client redis.Cmdable
}

// NewInventoryRepository creates a new InventoryRepository on the given client.
func NewInventoryRepository(client redis.Cmdable) *InventoryRepository {
	return &InventoryRepository{client: client}
}

// Initialize sets the counter to totalStock only when the counter key is
// absent. Reports whether this call created the counter, so callers can log
// first-boot versus restart. Idempotent across process restarts.
func (r *InventoryRepository) Initialize(ctx context.Context, totalStock int) (bool, error) {
	created, err := r.client.SetNX(ctx, stockKey, totalStock, 0).Result()
	if err != nil {
		return false, fmt.Errorf("initialize stock: %w", err)
	}
	return created, nil
}

// GetStock returns the remaining stock, 0 when the counter key is absent.
func (r *InventoryRepository) GetStock(ctx context.Context) (int64, error) {
	stock, err := r.client.Get(ctx, stockKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get stock: %w", err)
	}
	return stock, nil
}

// DecrementResult reports the outcome of a guarded decrement.
type DecrementResult struct {
	Success   bool
	Remaining int64 // -1 when the counter key does not exist
}

// DecrementStock decrements the counter only while it is positive.
// Administrative and test use; purchases commit through PurchaseRepository.
func (r *InventoryRepository) DecrementStock(ctx context.Context) (*DecrementResult, error) {
	res, err := decrementLua.Run(ctx, r.client, []string{stockKey}).Result()
	if err != nil {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return nil, fmt.Errorf("decrement script reply has unexpected shape: %v", res)
	}
	flag, okFlag := vals[0].(int64)
	remaining, okRemaining := vals[1].(int64)
	if !okFlag || !okRemaining {
		return nil, fmt.Errorf("decrement script reply is not numeric: %v", res)
	}

	return &DecrementResult{Success: flag == 1, Remaining: remaining}, nil
}

// SetStock unconditionally writes the counter.
func (r *InventoryRepository) SetStock(ctx context.Context, n int) error {
	if err := r.client.Set(ctx, stockKey, n, 0).Err(); err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	return nil
}

// ResetStock rewrites the counter back to totalStock regardless of its
// current value.
func (r *InventoryRepository) ResetStock(ctx context.Context, totalStock int) error {
	if err := r.SetStock(ctx, totalStock); err != nil {
		return fmt.Errorf("reset stock: %w", err)
	}
	return nil
}
