package normalization

import (
	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/idhash"
)

// Deduplicate removes entries whose critical fields are identical to an
// earlier entry. The first occurrence is kept and input order is preserved.
// Entries sharing a TxID but differing in any critical field are distinct
// instructions and are kept.
func Deduplicate(records []domain.RawSwapRecord) []domain.RawSwapRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]domain.RawSwapRecord, 0, len(records))
	for i := range records {
		key := idhash.ComputeRecordKey(&records[i])
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, records[i])
	}
	return out
}
