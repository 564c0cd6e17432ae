package normalization

import (
	"sort"

	"github.com/shopspring/decimal"

	"solana-wallet-pnl/internal/config"
	"solana-wallet-pnl/internal/diagnostics"
	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/idhash"
)

// AggregateTrades groups deduplicated records by TxID and merges each group
// into one AggregatedTrade. Assets whose net change is within the zero
// tolerance are removed. Trades left without a given-up or a received asset
// are dropped with a malformed_trade diagnostic.
// Returns trades ordered by (timestamp, tx_id) and the number dropped.
func AggregateTrades(records []domain.RawSwapRecord, cfg config.Config, diag diagnostics.Recorder) ([]domain.AggregatedTrade, int) {
	groups := make(map[string][]*domain.RawSwapRecord)
	for i := range records {
		groups[records[i].TxID] = append(groups[records[i].TxID], &records[i])
	}

	trades := make([]domain.AggregatedTrade, 0, len(groups))
	dropped := 0
	for txID, group := range groups {
		trade := aggregateGroup(txID, group, cfg, diag)
		if ok := checkSides(&trade, diag); !ok {
			dropped++
			continue
		}
		trades = append(trades, trade)
	}

	SortTrades(trades)
	return trades, dropped
}

// aggregateGroup merges the entries of a single transaction.
func aggregateGroup(txID string, group []*domain.RawSwapRecord, cfg config.Config, diag diagnostics.Recorder) domain.AggregatedTrade {
	sortGroup(group)

	trade := domain.AggregatedTrade{
		TxID:       txID,
		NetChanges: make(map[string]decimal.Decimal),
		UnitPrices: make(map[string]decimal.Decimal),
		Symbols:    make(map[string]string),
		Hints:      make(map[string][]domain.DirectionHint),
		EntryCount: len(group),
	}

	for _, r := range group {
		if r.Timestamp > 0 && (trade.Timestamp == 0 || r.Timestamp < trade.Timestamp) {
			trade.Timestamp = r.Timestamp
		}
		trade.DeclaredNotionalSum = trade.DeclaredNotionalSum.Add(r.DeclaredNotional)

		for _, leg := range r.Legs() {
			id := leg.AssetID
			trade.NetChanges[id] = trade.NetChanges[id].Add(leg.NetChange)

			if sym, ok := trade.Symbols[id]; !ok || sym == domain.UnknownSymbol {
				trade.Symbols[id] = symbolOrUnknown(leg.Symbol)
			}
			if leg.DirectionHint != domain.DirectionHintUnknown {
				trade.Hints[id] = append(trade.Hints[id], leg.DirectionHint)
			}

			choice := ChoosePrice(leg, cfg.PriceDeviationRatio)
			if choice.Deviated {
				diag.Record(domain.DiagPriceDeviation, txID, id,
					"unit price %s deviates from nearest price %s, using nearest", leg.UnitPrice, leg.NearestPrice)
			}
			if _, priced := trade.UnitPrices[id]; !priced && choice.Usable() {
				trade.UnitPrices[id] = choice.Price
			}
		}
	}

	for id, net := range trade.NetChanges {
		if net.Abs().LessThanOrEqual(cfg.ZeroTolerance) {
			delete(trade.NetChanges, id)
			delete(trade.UnitPrices, id)
			delete(trade.Symbols, id)
			delete(trade.Hints, id)
		}
	}
	return trade
}

// checkSides reports whether the trade has at least one asset on each side.
func checkSides(trade *domain.AggregatedTrade, diag diagnostics.Recorder) bool {
	var neg, pos int
	for _, net := range trade.NetChanges {
		switch net.Sign() {
		case -1:
			neg++
		case 1:
			pos++
		}
	}
	if neg == 0 || pos == 0 {
		diag.Record(domain.DiagMalformedTrade, trade.TxID, "",
			"trade has %d given-up and %d received assets after netting", neg, pos)
		return false
	}
	return true
}

// sortGroup orders entries by (instruction, inner instruction, record key)
// so that first-price selection does not depend on input order.
func sortGroup(group []*domain.RawSwapRecord) {
	keys := make(map[*domain.RawSwapRecord]string, len(group))
	for _, r := range group {
		keys[r] = idhash.ComputeRecordKey(r)
	}
	sort.SliceStable(group, func(i, j int) bool {
		a, b := group[i], group[j]
		if a.InstructionIndex != b.InstructionIndex {
			return a.InstructionIndex < b.InstructionIndex
		}
		if a.InnerInstructionIndex != b.InnerInstructionIndex {
			return a.InnerInstructionIndex < b.InnerInstructionIndex
		}
		return keys[a] < keys[b]
	})
}

func symbolOrUnknown(sym string) string {
	if sym == "" {
		return domain.UnknownSymbol
	}
	return sym
}
