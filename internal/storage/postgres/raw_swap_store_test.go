package postgres_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage"
	"solana-wallet-pnl/internal/storage/postgres"
)

func testRawSwap(wallet, tx string, ts int64, ix int) *domain.RawSwapRecord {
	return &domain.RawSwapRecord{
		TxID:             tx,
		InstructionIndex: ix,
		Timestamp:        ts,
		Source:           "raydium",
		Owner:            wallet,
		DeclaredNotional: decimal.RequireFromString("100.5"),
		LegA: domain.AssetLeg{
			AssetID:       "So11111111111111111111111111111111111111112",
			Symbol:        "SOL",
			Decimals:      9,
			RawAmount:     "1000000000",
			UIAmount:      decimal.NewFromInt(1),
			NetChange:     decimal.NewFromInt(-1),
			UnitPrice:     decimal.RequireFromString("100.5"),
			NearestPrice:  decimal.RequireFromString("100.4"),
			DirectionHint: domain.DirectionHintFrom,
		},
		LegB: domain.AssetLeg{
			AssetID:       "TOKmint",
			Symbol:        "TOK",
			Decimals:      6,
			RawAmount:     "123456789012345678901234567890",
			UIAmount:      decimal.RequireFromString("123456789012345678901234.56789"),
			NetChange:     decimal.RequireFromString("123456789012345678901234.56789"),
			DirectionHint: domain.DirectionHintTo,
		},
	}
}

func TestRawSwapStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewRawSwapStore(pool)

	record := testRawSwap("wallet1", "tx1", 1000, 0)
	require.NoError(t, store.Insert(ctx, record))

	got, err := store.GetByWallet(ctx, "wallet1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	r := got[0]
	assert.Equal(t, record.TxID, r.TxID)
	assert.Equal(t, record.Owner, r.Owner)
	assert.Equal(t, record.LegA.DirectionHint, r.LegA.DirectionHint)
	assert.Equal(t, record.LegB.RawAmount, r.LegB.RawAmount)
	assert.True(t, record.LegA.UnitPrice.Equal(r.LegA.UnitPrice))
	assert.True(t, record.LegB.NetChange.Equal(r.LegB.NetChange), "large decimals survive the round trip")
	assert.True(t, record.DeclaredNotional.Equal(r.DeclaredNotional))
}

func TestRawSwapStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewRawSwapStore(pool)

	require.NoError(t, store.Insert(ctx, testRawSwap("wallet1", "tx1", 1000, 0)))

	err := store.Insert(ctx, testRawSwap("wallet1", "tx1", 1000, 0))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestRawSwapStore_InsertBulkAtomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewRawSwapStore(pool)

	require.NoError(t, store.Insert(ctx, testRawSwap("wallet1", "tx2", 2000, 0)))

	err := store.InsertBulk(ctx, []*domain.RawSwapRecord{
		testRawSwap("wallet1", "tx1", 1000, 0),
		testRawSwap("wallet1", "tx2", 2000, 0),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetByWallet(ctx, "wallet1")
	require.NoError(t, err)
	assert.Len(t, got, 1, "failed batch must not leave partial rows")
}

func TestRawSwapStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewRawSwapStore(pool)

	require.NoError(t, store.InsertBulk(ctx, []*domain.RawSwapRecord{
		testRawSwap("wallet1", "tx3", 3000, 0),
		testRawSwap("wallet1", "tx1", 1000, 1),
		testRawSwap("wallet1", "tx1", 1000, 0),
		testRawSwap("wallet2", "tx9", 1500, 0),
	}))

	got, err := store.GetByTimeRange(ctx, "wallet1", 1000, 2000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].InstructionIndex)
	assert.Equal(t, 1, got[1].InstructionIndex)

	all, err := store.GetByWallet(ctx, "wallet1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "tx3", all[2].TxID)
}

func TestRawSwapStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewRawSwapStore(pool)

	assert.ErrorIs(t, store.Insert(ctx, testRawSwap("", "tx1", 1000, 0)), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.InsertBulk(ctx, []*domain.RawSwapRecord{nil}), storage.ErrInvalidInput)
}
