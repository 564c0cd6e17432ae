package pnl

import (
	"sort"

	"github.com/shopspring/decimal"

	"solana-wallet-pnl/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ComputeStats summarises matched lot consumptions in disposal order.
// Shortfall fractions without a buy lot are ignored, and unpriced fractions
// are only counted. A zero-P&L match breaks both streaks without counting as
// a win or a loss.
func ComputeStats(matched []domain.MatchedTrade, totalPnL, invested decimal.Decimal) domain.TradeStats {
	trades := make([]domain.MatchedTrade, 0, len(matched))
	unpriced := 0
	for _, m := range matched {
		switch {
		case m.ValueUnknown:
			unpriced++
		case !m.Unmatched:
			trades = append(trades, m)
		}
	}
	sort.SliceStable(trades, func(i, j int) bool {
		a, b := trades[i], trades[j]
		if a.DisposedAt != b.DisposedAt {
			return a.DisposedAt < b.DisposedAt
		}
		if a.SellTxID != b.SellTxID {
			return a.SellTxID < b.SellTxID
		}
		if a.AssetID != b.AssetID {
			return a.AssetID < b.AssetID
		}
		return a.AcquiredAt < b.AcquiredAt
	})

	stats := domain.TradeStats{
		MatchedTrades:  len(trades),
		UnpricedTrades: unpriced,
		WinRatePct:     decimal.Zero,
		ProfitPct:      decimal.Zero,
	}
	if invested.IsPositive() {
		stats.ProfitPct = totalPnL.Div(invested).Mul(hundred).Round(2)
	}
	if len(trades) == 0 {
		return stats
	}

	var holdSum int64
	var winStreak, lossStreak int
	stats.MinHoldSeconds = trades[0].HoldSeconds()
	for i := range trades {
		m := &trades[i]

		hold := m.HoldSeconds()
		holdSum += hold
		if hold < stats.MinHoldSeconds {
			stats.MinHoldSeconds = hold
		}
		if hold > stats.MaxHoldSeconds {
			stats.MaxHoldSeconds = hold
		}

		switch m.RealizedPnL.Sign() {
		case 1:
			stats.WinningTrades++
			winStreak++
			lossStreak = 0
		case -1:
			stats.LosingTrades++
			lossStreak++
			winStreak = 0
		default:
			winStreak, lossStreak = 0, 0
		}
		stats.LongestWinningStreak = max(stats.LongestWinningStreak, winStreak)
		stats.LongestLosingStreak = max(stats.LongestLosingStreak, lossStreak)
	}

	stats.AvgHoldSeconds = holdSum / int64(len(trades))
	stats.WinRatePct = decimal.NewFromInt(int64(stats.WinningTrades)).
		Div(decimal.NewFromInt(int64(len(trades)))).
		Mul(hundred).
		Round(2)
	return stats
}
