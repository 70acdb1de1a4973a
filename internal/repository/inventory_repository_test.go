package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient spins up an in-process Redis and a client bound to it. The
// server supports the Lua subset our scripts use, so script semantics are
// exercised for real instead of being mocked.
func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestInventoryRepository_Initialize_SetsStockWhenAbsent(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewInventoryRepository(client)

	created, err := repo.Initialize(context.Background(), 100)

	require.NoError(t, err)
	assert.True(t, created, "first initialize should create the counter")

	stock, err := repo.GetStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), stock)
}

func TestInventoryRepository_Initialize_DoesNotOverwrite(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewInventoryRepository(client)

	require.NoError(t, repo.SetStock(context.Background(), 40))

	created, err := repo.Initialize(context.Background(), 100)

	require.NoError(t, err)
	assert.False(t, created, "initialize must be a no-op when the counter exists")

	stock, err := repo.GetStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(40), stock, "existing counter value must survive initialize")
}

func TestInventoryRepository_Initialize_Idempotent(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewInventoryRepository(client)

	created, err := repo.Initialize(context.Background(), 100)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Initialize(context.Background(), 100)
	require.NoError(t, err)
	assert.False(t, created)

	stock, err := repo.GetStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), stock)
}

func TestInventoryRepository_GetStock_AbsentKey(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewInventoryRepository(client)

	stock, err := repo.GetStock(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(0), stock, "absent counter reads as zero")
}

func TestInventoryRepository_GetStock_NonNumericValue(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewInventoryRepository(client)

	require.NoError(t, client.Set(context.Background(), stockKey, "garbage", 0).Err())

	_, err := repo.GetStock(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "get stock")
}

func TestInventoryRepository_DecrementStock_CountsDownToZero(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewInventoryRepository(client)

	require.NoError(t, repo.SetStock(context.Background(), 2))

	res, err := repo.DecrementStock(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(1), res.Remaining)

	res, err = repo.DecrementStock(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(0), res.Remaining)

	// Exhausted: the guard refuses to go below zero.
	res, err = repo.DecrementStock(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, int64(0), res.Remaining)

	stock, err := repo.GetStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stock, "counter must never go negative")
}

func TestInventoryRepository_DecrementStock_AbsentKey(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewInventoryRepository(client)

	res, err := repo.DecrementStock(context.Background())

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, int64(-1), res.Remaining, "absent counter is reported distinctly from an exhausted one")
}

func TestInventoryRepository_SetStock_Overwrites(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewInventoryRepository(client)

	require.NoError(t, repo.SetStock(context.Background(), 5))
	require.NoError(t, repo.SetStock(context.Background(), 17))

	stock, err := repo.GetStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(17), stock)
}

func TestInventoryRepository_ResetStock_RestoresTotal(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewInventoryRepository(client)

	require.NoError(t, repo.SetStock(context.Background(), 3))
	require.NoError(t, repo.ResetStock(context.Background(), 100))

	stock, err := repo.GetStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), stock)
}
