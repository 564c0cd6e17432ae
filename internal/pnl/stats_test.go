package pnl

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"solana-wallet-pnl/internal/domain"
)

func match(pnl string, acquired, disposed int64) domain.MatchedTrade {
	return domain.MatchedTrade{
		AssetID:     "A",
		SellTxID:    "s",
		RealizedPnL: decimal.RequireFromString(pnl),
		AcquiredAt:  acquired,
		DisposedAt:  disposed,
	}
}

func TestComputeStats(t *testing.T) {
	matched := []domain.MatchedTrade{
		match("5", 0, 100),
		match("3", 50, 200),
		match("-1", 100, 300),
		match("-2", 100, 400),
		match("-4", 100, 500),
		match("0", 500, 600),
		match("7", 600, 700),
		{AssetID: "Z", Unmatched: true, RealizedPnL: decimal.NewFromInt(50), DisposedAt: 800},
	}

	stats := ComputeStats(matched, decimal.NewFromInt(25), decimal.NewFromInt(200))

	assert.Equal(t, 7, stats.MatchedTrades)
	assert.Equal(t, 3, stats.WinningTrades)
	assert.Equal(t, 3, stats.LosingTrades)
	assert.True(t, stats.WinRatePct.Equal(decimal.RequireFromString("42.86")), "win rate %s", stats.WinRatePct)
	assert.Equal(t, int64(100), stats.MinHoldSeconds)
	assert.Equal(t, int64(400), stats.MaxHoldSeconds)
	// holds: 100,150,200,300,400,100,100
	assert.Equal(t, int64(1350/7), stats.AvgHoldSeconds)
	assert.Equal(t, 2, stats.LongestWinningStreak)
	assert.Equal(t, 3, stats.LongestLosingStreak)
	assert.True(t, stats.ProfitPct.Equal(decimal.RequireFromString("12.5")))
}

func TestComputeStats_UnpricedOnlyCounted(t *testing.T) {
	unpriced := match("-1000", 0, 100)
	unpriced.ValueUnknown = true
	shortfall := domain.MatchedTrade{AssetID: "Z", Unmatched: true, ValueUnknown: true, DisposedAt: 150}
	matched := []domain.MatchedTrade{unpriced, match("4", 0, 200), shortfall}

	stats := ComputeStats(matched, decimal.NewFromInt(4), decimal.NewFromInt(100))

	assert.Equal(t, 2, stats.UnpricedTrades)
	assert.Equal(t, 1, stats.MatchedTrades)
	assert.Equal(t, 1, stats.WinningTrades)
	assert.Equal(t, 0, stats.LosingTrades)
	assert.True(t, stats.WinRatePct.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int64(200), stats.MinHoldSeconds)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil, decimal.Zero, decimal.Zero)

	assert.Equal(t, 0, stats.MatchedTrades)
	assert.True(t, stats.WinRatePct.IsZero())
	assert.True(t, stats.ProfitPct.IsZero())
}

func TestComputeStats_OrderIndependent(t *testing.T) {
	a := []domain.MatchedTrade{match("1", 0, 10), match("1", 0, 20), match("-1", 0, 30)}
	b := []domain.MatchedTrade{a[2], a[0], a[1]}

	assert.Equal(t, ComputeStats(a, decimal.Zero, decimal.Zero), ComputeStats(b, decimal.Zero, decimal.Zero))
}
