package qualify

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-wallet-pnl/internal/config"
	"solana-wallet-pnl/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strictFilter() config.TraderFilter {
	f := config.DefaultTraderFilter()
	f.Enabled = true
	f.MinRealizedPnL = d("100")
	f.MinTrades = 5
	f.MinWinningTrades = 3
	f.MinWinRatePct = d("50")
	f.MinROIPct = d("20")
	f.MinInvested = d("1000")
	f.ExcludeHoldersOnly = true
	f.ExcludeZeroPnL = true
	return f
}

func report(wallet, realized string, trades, wins int, winRate, roi, invested string, avgHold time.Duration) *domain.PnLReport {
	return &domain.PnLReport{
		Wallet:             wallet,
		RealizedPnL:        d(realized),
		RealizedComplete:   true,
		UnrealizedPnL:      decimal.Zero,
		UnrealizedComplete: true,
		TotalInvested:      d(invested),
		TotalWithdrawn:     decimal.Zero,
		TotalsComplete:     true,
		Stats: domain.TradeStats{
			MatchedTrades:  trades,
			WinningTrades:  wins,
			LosingTrades:   trades - wins,
			WinRatePct:     d(winRate),
			ProfitPct:      d(roi),
			AvgHoldSeconds: int64(avgHold / time.Second),
		},
	}
}

func TestEvaluate_QualifiedDayTrader(t *testing.T) {
	f := NewFilter(strictFilter(), nil)

	a := f.Evaluate(report("w1", "500", 12, 9, "75", "60", "2000", 3*time.Hour))

	assert.Equal(t, "w1", a.Wallet)
	assert.True(t, a.Qualified)
	assert.Equal(t, 100, a.Score)
	assert.Equal(t, StyleDayTrader, a.Style)
	assert.Equal(t, RiskLow, a.Risk)
	assert.True(t, a.CopyTradeRecommended)
	assert.Empty(t, a.Concerns)
}

func TestEvaluate_GatingCheckFails(t *testing.T) {
	f := NewFilter(strictFilter(), nil)

	// everything but the trade count passes
	a := f.Evaluate(report("w1", "500", 4, 4, "100", "60", "2000", 3*time.Hour))

	assert.False(t, a.Qualified)
	assert.Equal(t, 85, a.Score)
	assert.Contains(t, a.Concerns, "4 trades below 5")
	assert.False(t, a.CopyTradeRecommended)
}

func TestEvaluate_ROIAndInvestedOnlyScore(t *testing.T) {
	f := NewFilter(strictFilter(), nil)

	a := f.Evaluate(report("w1", "500", 12, 9, "75", "5", "10", 3*time.Hour))

	assert.True(t, a.Qualified)
	assert.Equal(t, 75, a.Score)
	assert.Len(t, a.Concerns, 2)
	assert.Equal(t, RiskHigh, a.Risk)
	assert.False(t, a.CopyTradeRecommended)
}

func TestEvaluate_ScoreBelowThreshold(t *testing.T) {
	cfg := config.DefaultTraderFilter()
	cfg.MinROIPct = d("1000")
	cfg.MinInvested = d("1000000")
	f := NewFilter(cfg, nil)

	// realized and trade gates pass but two scored checks fail and no style bonus
	a := f.Evaluate(report("w1", "0", 0, 0, "0", "0", "0", 0))

	assert.Equal(t, StyleUnknown, a.Style)
	assert.Equal(t, 70, a.Score)
	assert.True(t, a.Qualified)

	cfg.MinWinRatePct = d("10")
	cfg.MinRealizedPnL = d("1")
	a = NewFilter(cfg, nil).Evaluate(report("w1", "0", 0, 0, "0", "0", "0", 0))
	assert.Equal(t, 30, a.Score)
	assert.False(t, a.Qualified)
}

func TestEvaluate_Exclusions(t *testing.T) {
	cfg := config.DefaultTraderFilter()
	cfg.ExcludeHoldersOnly = true
	cfg.ExcludeZeroPnL = true
	f := NewFilter(cfg, nil)

	a := f.Evaluate(report("w1", "0", 0, 0, "0", "0", "0", 0))

	assert.False(t, a.Qualified)
	assert.Contains(t, a.Concerns, "no realized wins or losses")
	assert.Contains(t, a.Concerns, "zero P&L")
}

func TestEvaluate_HoldBounds(t *testing.T) {
	cfg := config.DefaultTraderFilter()
	cfg.MinAvgHold = 5 * time.Minute
	cfg.MaxAvgHold = 96 * time.Hour
	f := NewFilter(cfg, nil)

	tooFast := f.Evaluate(report("w1", "10", 20, 15, "75", "60", "100", time.Minute))
	assert.False(t, tooFast.Qualified)
	assert.Equal(t, StyleScalper, tooFast.Style)

	tooSlow := f.Evaluate(report("w2", "10", 20, 15, "75", "60", "100", 30*24*time.Hour))
	assert.False(t, tooSlow.Qualified)
	assert.Equal(t, StyleHolder, tooSlow.Style)
	assert.Contains(t, tooSlow.Concerns, "long-term holder")

	inRange := f.Evaluate(report("w3", "10", 20, 15, "75", "60", "100", 3*24*time.Hour))
	assert.True(t, inRange.Qualified)
	assert.Equal(t, StyleSwingTrader, inRange.Style)
	assert.Equal(t, 98, inRange.Score)
}

func TestEvaluate_IncompleteRealizedIsAConcern(t *testing.T) {
	f := NewFilter(config.DefaultTraderFilter(), nil)
	r := report("w1", "10", 2, 2, "100", "10", "100", 3*time.Hour)
	r.RealizedComplete = false

	a := f.Evaluate(r)

	assert.True(t, a.Qualified)
	assert.Contains(t, a.Concerns, "realized P&L excludes unpriced trades")
}

func TestClassifyStyle(t *testing.T) {
	tests := []struct {
		trades int
		hold   time.Duration
		want   TradingStyle
	}{
		{0, time.Hour, StyleUnknown},
		{1, 59 * time.Minute, StyleScalper},
		{1, time.Hour, StyleDayTrader},
		{1, 24 * time.Hour, StyleSwingTrader},
		{1, 7 * 24 * time.Hour, StyleHolder},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyStyle(tt.trades, tt.hold), "%d trades, %s", tt.trades, tt.hold)
	}
}

func TestAssessRisk(t *testing.T) {
	tests := []struct {
		winRate, roi string
		want         RiskLevel
	}{
		{"70", "50", RiskLow},
		{"90", "49", RiskMedium},
		{"50", "25", RiskMedium},
		{"50", "24", RiskHigh},
		{"30", "500", RiskHigh},
		{"29.99", "500", RiskVeryHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, assessRisk(d(tt.winRate), d(tt.roi)), "win rate %s, roi %s", tt.winRate, tt.roi)
	}
}

func TestFilterReports_SortedByScore(t *testing.T) {
	f := NewFilter(strictFilter(), nil)

	swing := report("swing", "500", 12, 9, "75", "60", "2000", 3*24*time.Hour)
	day := report("day", "500", 12, 9, "75", "60", "2000", 3*time.Hour)
	weak := report("weak", "5", 12, 9, "75", "60", "2000", 3*time.Hour)

	out := f.FilterReports([]*domain.PnLReport{swing, nil, weak, day})

	require.Len(t, out, 2)
	assert.Equal(t, "day", out[0].Assessment.Wallet)
	assert.Same(t, day, out[0].Report)
	assert.Equal(t, "swing", out[1].Assessment.Wallet)
	assert.Greater(t, out[0].Assessment.Score, out[1].Assessment.Score)
}
