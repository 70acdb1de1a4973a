package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PurchaseRepository executes the combined atomic purchase script. This is
// the hot path: one round trip, one script invocation, no in-process
// coordination.
type PurchaseRepository struct {
	client redis.Cmdable
}

// NewPurchaseRepository creates a new PurchaseRepository on the given client.
func NewPurchaseRepository(client redis.Cmdable) *PurchaseRepository {
	return &PurchaseRepository{client: client}
}

// AttemptResult is the decoded reply of the purchase script.
type AttemptResult struct {
	Code      int64  // CodeAlreadyPurchased, CodeSuccess or CodeOutOfStock
	Remaining int64  // stock left after the commit; valid when Code == CodeSuccess
	PriorAt   string // original purchase timestamp; valid when Code == CodeAlreadyPurchased
}

// Attempt runs the atomic purchase script for an already-normalized user id.
// purchasedAt is stored verbatim as the ledger timestamp when the purchase
// commits. Codes outside the known set are returned undecoded for the caller
// to reject; the decrement-then-insert sequence is indivisible either way.
func (r *PurchaseRepository) Attempt(ctx context.Context, userID, purchasedAt string) (*AttemptResult, error) {
	res, err := purchaseLua.Run(ctx, r.client, []string{stockKey, ledgerKey}, userID, purchasedAt).Result()
	if err != nil {
		return nil, fmt.Errorf("run purchase script: %w", err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return nil, fmt.Errorf("purchase script reply has unexpected shape: %v", res)
	}
	code, ok := vals[0].(int64)
	if !ok {
		return nil, fmt.Errorf("purchase script status is not an integer: %v", vals[0])
	}

	out := &AttemptResult{Code: code}
	switch v := vals[1].(type) {
	case int64:
		out.Remaining = v
	case string:
		out.PriorAt = v
	default:
		return nil, fmt.Errorf("purchase script payload has unexpected type %T", vals[1])
	}
	return out, nil
}
