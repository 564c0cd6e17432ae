package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TraderFilter holds the thresholds a wallet report must meet to count as a
// qualified trader. Zero thresholds accept everything; zero hold bounds are
// disabled.
type TraderFilter struct {
	Enabled            bool
	MinRealizedPnL     decimal.Decimal // settlement currency
	MinTrades          int             // matched lot consumptions
	MinWinningTrades   int
	MinWinRatePct      decimal.Decimal
	MinROIPct          decimal.Decimal // scored, not gating
	MinInvested        decimal.Decimal // scored, not gating
	MinAvgHold         time.Duration
	MaxAvgHold         time.Duration
	ExcludeHoldersOnly bool // no winning or losing trade at all
	ExcludeZeroPnL     bool // realized and total P&L both zero
}

// DefaultTraderFilter returns a disabled filter with zero thresholds.
func DefaultTraderFilter() TraderFilter {
	return TraderFilter{
		MinRealizedPnL: decimal.Zero,
		MinWinRatePct:  decimal.Zero,
		MinROIPct:      decimal.Zero,
		MinInvested:    decimal.Zero,
	}
}

// Validate checks threshold ranges.
func (f TraderFilter) Validate() error {
	if f.MinTrades < 0 || f.MinWinningTrades < 0 {
		return fmt.Errorf("trader filter trade counts must not be negative")
	}
	if f.MinWinRatePct.IsNegative() || f.MinWinRatePct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("trader filter win rate must be within 0-100")
	}
	if f.MinInvested.IsNegative() {
		return fmt.Errorf("trader filter min invested must not be negative")
	}
	if f.MinAvgHold < 0 || f.MaxAvgHold < 0 {
		return fmt.Errorf("trader filter hold bounds must not be negative")
	}
	if f.MaxAvgHold > 0 && f.MaxAvgHold < f.MinAvgHold {
		return fmt.Errorf("trader filter max avg hold %s below min %s", f.MaxAvgHold, f.MinAvgHold)
	}
	return nil
}
