package domain

import "github.com/shopspring/decimal"

// Lot is one open acquisition held in an asset's FIFO queue.
type Lot struct {
	Quantity    decimal.Decimal // remaining quantity
	UnitCost    decimal.Decimal // settlement currency per unit
	Cost        decimal.Decimal // remaining total cost
	AcquiredAt  int64           // Unix seconds
	TxID        string          // acquiring transaction
	CostUnknown bool            // acquired from an unpriced event
}

// Position is a snapshot over an asset's remaining lots.
type Position struct {
	AssetID             string          `json:"asset_id"`
	Symbol              string          `json:"symbol"`
	TotalQuantity       decimal.Decimal `json:"total_quantity"`
	WeightedAverageCost decimal.Decimal `json:"weighted_average_cost"`
	TotalCostBasis      decimal.Decimal `json:"total_cost_basis"`
	OpenLots            int             `json:"open_lots"`
	CostUnknown         bool            `json:"cost_unknown"` // some lot came from an unpriced buy
}

// MatchedTrade is one lot fraction consumed by a sell.
type MatchedTrade struct {
	AssetID      string          `json:"asset_id"`
	BuyTxID      string          `json:"buy_tx_id"` // empty for the zero-cost shortfall
	SellTxID     string          `json:"sell_tx_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	CostBasis    decimal.Decimal `json:"cost_basis"`
	Proceeds     decimal.Decimal `json:"proceeds"`
	RealizedPnL  decimal.Decimal `json:"realized_pnl"`
	AcquiredAt   int64           `json:"acquired_at"`
	DisposedAt   int64           `json:"disposed_at"`
	Unmatched    bool            `json:"unmatched"`     // shortfall with zero cost basis
	ValueUnknown bool            `json:"value_unknown"` // proceeds or lot cost unpriced; excluded from totals
}

// HoldSeconds returns the holding period of the matched fraction.
func (m *MatchedTrade) HoldSeconds() int64 {
	if m.Unmatched {
		return 0
	}
	return m.DisposedAt - m.AcquiredAt
}
