package normalization

import (
	"github.com/shopspring/decimal"

	"solana-wallet-pnl/internal/diagnostics"
	"solana-wallet-pnl/internal/domain"
)

// ResolveDirection partitions a trade's assets by the sign of their net change.
// The sign is authoritative; direction hints only produce a diagnostic when
// they disagree with it.
func ResolveDirection(trade *domain.AggregatedTrade, diag diagnostics.Recorder) domain.ResolvedTrade {
	resolved := domain.ResolvedTrade{
		TxID:       trade.TxID,
		Timestamp:  trade.Timestamp,
		UnitPrices: make(map[string]decimal.Decimal, len(trade.UnitPrices)),
	}

	for _, id := range trade.AssetIDs() {
		net := trade.NetChanges[id]
		amount := domain.AssetAmount{
			AssetID: id,
			Symbol:  trade.Symbols[id],
			Amount:  net.Abs(),
		}

		var expected domain.DirectionHint
		switch net.Sign() {
		case -1:
			resolved.GivenUp = append(resolved.GivenUp, amount)
			expected = domain.DirectionHintFrom
		case 1:
			resolved.Received = append(resolved.Received, amount)
			expected = domain.DirectionHintTo
		default:
			continue
		}

		if p, ok := trade.UnitPrices[id]; ok {
			resolved.UnitPrices[id] = p
		}

		for _, hint := range trade.Hints[id] {
			if hint != expected {
				diag.Record(domain.DiagDirectionHintMismatch, trade.TxID, id,
					"hint %q contradicts net change %s", hint, net)
				break
			}
		}
	}
	return resolved
}

// ResolveAll resolves every trade in order.
func ResolveAll(trades []domain.AggregatedTrade, diag diagnostics.Recorder) []domain.ResolvedTrade {
	out := make([]domain.ResolvedTrade, 0, len(trades))
	for i := range trades {
		out = append(out, ResolveDirection(&trades[i], diag))
	}
	return out
}
