package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PnLReport is the immutable wallet-level result of one full pass.
type PnLReport struct {
	ReportID           string           `json:"report_id"`
	Wallet             string           `json:"wallet"`
	SettlementCurrency string           `json:"settlement_currency"`
	RealizedPnL        decimal.Decimal  `json:"realized_pnl"`        // sum over priced disposals only
	RealizedComplete   bool             `json:"realized_complete"`   // false if any disposal had unpriced proceeds or cost
	UnrealizedPnL      decimal.Decimal  `json:"unrealized_pnl"`      // sum of known contributions only
	UnrealizedComplete bool             `json:"unrealized_complete"` // false if any open asset lacks a live price or a known cost
	TotalInvested      decimal.Decimal  `json:"total_invested"`      // sum of priced BUY values
	TotalWithdrawn     decimal.Decimal  `json:"total_withdrawn"`     // sum of priced SELL values
	TotalsComplete     bool             `json:"totals_complete"`     // false if any event was unpriced
	Assets             []AssetPnL       `json:"assets"`              // sorted by asset_id
	Positions          []Position       `json:"positions"`           // open positions, sorted by asset_id
	Counts             ProcessingCounts `json:"counts"`
	Stats              TradeStats       `json:"stats"`
	Diagnostics        Diagnostics      `json:"diagnostics"`
	GeneratedAt        time.Time        `json:"generated_at"`
}

// TotalPnL returns realized plus unrealized P&L over known values only.
func (r *PnLReport) TotalPnL() decimal.Decimal {
	return r.RealizedPnL.Add(r.UnrealizedPnL)
}

// AssetPnL is the per-asset breakdown.
type AssetPnL struct {
	AssetID          string           `json:"asset_id"`
	Symbol           string           `json:"symbol"`
	RealizedPnL      decimal.Decimal  `json:"realized_pnl"`      // priced disposals only
	RealizedComplete bool             `json:"realized_complete"` // false if some disposal was unpriced
	UnrealizedPnL    *decimal.Decimal `json:"unrealized_pnl"`    // nil = unknown (no live price or unknown cost)
	CurrentPrice     *decimal.Decimal `json:"current_price"`     // nil = unknown
	Invested         decimal.Decimal  `json:"invested"`
	Withdrawn        decimal.Decimal  `json:"withdrawn"`
	QuantityBought   decimal.Decimal  `json:"quantity_bought"`
	QuantitySold     decimal.Decimal  `json:"quantity_sold"`
	BuyCount         int              `json:"buy_count"`
	SellCount        int              `json:"sell_count"`
	Halted           bool             `json:"halted"`           // ledger stopped on non-chronological input
	PriceIncomplete  bool             `json:"price_incomplete"` // some event or open lot of this asset was unpriced
}

// ProcessingCounts makes a run auditable.
type ProcessingCounts struct {
	RecordsIn         int `json:"records_in"`
	RecordsFiltered   int `json:"records_filtered"` // outside the configured timeframe
	DuplicatesRemoved int `json:"duplicates_removed"`
	TradesAggregated  int `json:"trades_aggregated"`
	TradesDropped     int `json:"trades_dropped"`
	EventsGenerated   int `json:"events_generated"`
	EventsApplied     int `json:"events_applied"`
}

// TradeStats summarises matched lot consumptions.
type TradeStats struct {
	MatchedTrades        int             `json:"matched_trades"`
	UnpricedTrades       int             `json:"unpriced_trades"` // matches left out of every figure below
	WinningTrades        int             `json:"winning_trades"`
	LosingTrades         int             `json:"losing_trades"`
	WinRatePct           decimal.Decimal `json:"win_rate_pct"`
	AvgHoldSeconds       int64           `json:"avg_hold_seconds"`
	MinHoldSeconds       int64           `json:"min_hold_seconds"`
	MaxHoldSeconds       int64           `json:"max_hold_seconds"`
	LongestWinningStreak int             `json:"longest_winning_streak"`
	LongestLosingStreak  int             `json:"longest_losing_streak"`
	ProfitPct            decimal.Decimal `json:"profit_pct"`
}
