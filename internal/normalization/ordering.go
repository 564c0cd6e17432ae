package normalization

import (
	"sort"

	"solana-wallet-pnl/internal/domain"
)

// SortTrades orders trades by (timestamp ASC, tx_id ASC).
func SortTrades(trades []domain.AggregatedTrade) {
	sort.Slice(trades, func(i, j int) bool {
		return compareTrades(&trades[i], &trades[j]) < 0
	})
}

// compareTrades returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
func compareTrades(a, b *domain.AggregatedTrade) int {
	if a.Timestamp != b.Timestamp {
		if a.Timestamp < b.Timestamp {
			return -1
		}
		return 1
	}
	if a.TxID != b.TxID {
		if a.TxID < b.TxID {
			return -1
		}
		return 1
	}
	return 0
}
