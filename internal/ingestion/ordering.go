package ingestion

import (
	"cmp"
	"errors"
	"sort"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/idhash"
)

// ErrInvalidOrdering is returned when records are not properly ordered.
var ErrInvalidOrdering = errors.New("records are not in deterministic order")

// SortRecords orders records by
// (timestamp ASC, tx_id ASC, instruction_index ASC, inner_instruction_index ASC, record key ASC).
func SortRecords(records []*domain.RawSwapRecord) {
	keys := make(map[*domain.RawSwapRecord]string, len(records))
	key := func(r *domain.RawSwapRecord) string {
		k, ok := keys[r]
		if !ok {
			k = idhash.ComputeRecordKey(r)
			keys[r] = k
		}
		return k
	}

	sort.SliceStable(records, func(i, j int) bool {
		if c := compareRecords(records[i], records[j]); c != 0 {
			return c < 0
		}
		return key(records[i]) < key(records[j])
	})
}

// ValidateRecordOrdering checks that records are strictly ordered.
// Two records with the same position and record key are repeats and fail validation.
func ValidateRecordOrdering(records []*domain.RawSwapRecord) error {
	for i := 1; i < len(records); i++ {
		c := compareRecords(records[i-1], records[i])
		if c > 0 {
			return ErrInvalidOrdering
		}
		if c == 0 && idhash.ComputeRecordKey(records[i-1]) >= idhash.ComputeRecordKey(records[i]) {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// compareRecords returns -1, 0 or 1 comparing the on-chain position of a and b.
// Order: (timestamp ASC, tx_id ASC, instruction_index ASC, inner_instruction_index ASC)
func compareRecords(a, b *domain.RawSwapRecord) int {
	switch {
	case a.Timestamp != b.Timestamp:
		return cmp.Compare(a.Timestamp, b.Timestamp)
	case a.TxID != b.TxID:
		return cmp.Compare(a.TxID, b.TxID)
	case a.InstructionIndex != b.InstructionIndex:
		return cmp.Compare(a.InstructionIndex, b.InstructionIndex)
	default:
		return cmp.Compare(a.InnerInstructionIndex, b.InnerInstructionIndex)
	}
}
