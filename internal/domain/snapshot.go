package domain

import "github.com/shopspring/decimal"

// AssetSnapshot is one asset's state as persisted for a report.
// Snapshots are append-only; history for an asset is the sequence of its snapshots.
type AssetSnapshot struct {
	SnapshotID       string           // sha256(report_id | asset_id)
	ReportID         string           // owning report
	Wallet           string           // wallet the report was built for
	AssetID          string           // token mint address
	Symbol           string           // token symbol
	Quantity         decimal.Decimal  // open quantity
	CostBasis        decimal.Decimal  // remaining cost of open lots
	RealizedPnL      decimal.Decimal  // realized P&L to date, priced disposals only
	RealizedComplete bool             // false if some disposal was unpriced
	UnrealizedPnL    *decimal.Decimal // nil when no live price or no known cost
	CurrentPrice     *decimal.Decimal // nil when no live price was available
	Invested         decimal.Decimal  // sum of priced BUY values
	Withdrawn        decimal.Decimal  // sum of priced SELL values
	Halted           bool             // ledger stopped on non-chronological input
	GeneratedAt      int64            // report generation time, Unix milliseconds
}
