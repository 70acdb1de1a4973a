package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// LedgerRepository owns the purchase ledger: a hash from normalized user id
// to the RFC 3339 UTC instant the purchase committed. Callers normalize the
// user id before it reaches this layer.
type LedgerRepository struct {
	client redis.Cmdable
}

// NewLedgerRepository creates a new LedgerRepository on the given client.
func NewLedgerRepository(client redis.Cmdable) *LedgerRepository {
	return &LedgerRepository{client: client}
}

// HasPurchased looks up the user's purchase timestamp. The boolean is false
// when the user holds no entry.
func (r *LedgerRepository) HasPurchased(ctx context.Context, userID string) (string, bool, error) {
	ts, err := r.client.HGet(ctx, ledgerKey, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup purchase for %s: %w", userID, err)
	}
	return ts, true, nil
}

// RecordResult reports the outcome of an insert-if-absent on the ledger.
type RecordResult struct {
	Inserted    bool
	PurchasedAt string // the new timestamp on insert, the original on conflict
}

// RecordPurchase inserts the user's ledger entry only if none exists. Kept
// off the hot path as a fallback; purchases normally commit through
// PurchaseRepository so the stock decrement rides the same script.
func (r *LedgerRepository) RecordPurchase(ctx context.Context, userID, purchasedAt string) (*RecordResult, error) {
	res, err := recordLua.Run(ctx, r.client, []string{ledgerKey}, userID, purchasedAt).Result()
	if err != nil {
		return nil, fmt.Errorf("record purchase for %s: %w", userID, err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return nil, fmt.Errorf("record script reply has unexpected shape: %v", res)
	}
	flag, okFlag := vals[0].(int64)
	stored, okStored := vals[1].(string)
	if !okFlag || !okStored {
		return nil, fmt.Errorf("record script reply has unexpected types: %v", res)
	}

	return &RecordResult{Inserted: flag == 1, PurchasedAt: stored}, nil
}

// GetAllPurchases returns the full ledger. Admin and debug use only; the hot
// path never scans the hash.
func (r *LedgerRepository) GetAllPurchases(ctx context.Context) (map[string]string, error) {
	purchases, err := r.client.HGetAll(ctx, ledgerKey).Result()
	if err != nil {
		return nil, fmt.Errorf("get all purchases: %w", err)
	}
	return purchases, nil
}

// GetPurchaseCount returns the number of committed purchases.
func (r *LedgerRepository) GetPurchaseCount(ctx context.Context) (int64, error) {
	count, err := r.client.HLen(ctx, ledgerKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count purchases: %w", err)
	}
	return count, nil
}

// ClearPurchases drops the whole ledger.
func (r *LedgerRepository) ClearPurchases(ctx context.Context) error {
	if err := r.client.Del(ctx, ledgerKey).Err(); err != nil {
		return fmt.Errorf("clear purchases: %w", err)
	}
	return nil
}
