package domain

import "github.com/shopspring/decimal"

// AggregatedTrade is the net economic effect of one transaction after all of its
// distinct ledger entries have been merged.
type AggregatedTrade struct {
	TxID                string                     // transaction signature
	Timestamp           int64                      // earliest entry timestamp, Unix seconds
	NetChanges          map[string]decimal.Decimal // asset_id -> signed net quantity
	UnitPrices          map[string]decimal.Decimal // asset_id -> settlement price, absent = unknown
	Symbols             map[string]string          // asset_id -> symbol
	Hints               map[string][]DirectionHint // asset_id -> hints seen on its legs
	DeclaredNotionalSum decimal.Decimal            // sum over distinct entries
	EntryCount          int                        // number of distinct entries merged
}

// AssetIDs returns the net-changed asset IDs in sorted order.
func (t *AggregatedTrade) AssetIDs() []string {
	return sortedKeys(t.NetChanges)
}

// AssetAmount is an unsigned quantity of one asset on one side of a trade.
type AssetAmount struct {
	AssetID string
	Symbol  string
	Amount  decimal.Decimal // strictly positive
}

// ResolvedTrade is an aggregated trade partitioned by direction.
// Every asset appears on exactly one side; both sides are sorted by AssetID.
type ResolvedTrade struct {
	TxID       string
	Timestamp  int64
	GivenUp    []AssetAmount // net < 0, magnitude
	Received   []AssetAmount // net > 0
	UnitPrices map[string]decimal.Decimal
}

// Price returns the unit price for an asset and whether it is usable (> 0).
func (t *ResolvedTrade) Price(assetID string) (decimal.Decimal, bool) {
	p, ok := t.UnitPrices[assetID]
	if !ok || !p.IsPositive() {
		return decimal.Zero, false
	}
	return p, true
}
