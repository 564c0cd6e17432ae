package normalization

import (
	"time"

	"solana-wallet-pnl/internal/config"
	"solana-wallet-pnl/internal/domain"
)

// FilterByTimeframe keeps records at or after the timeframe cutoff relative to now.
// It returns the kept records and the number excluded.
func FilterByTimeframe(records []domain.RawSwapRecord, tf config.Timeframe, now time.Time) ([]domain.RawSwapRecord, int, error) {
	cutoff, ok, err := tf.Cutoff(now)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return records, 0, nil
	}

	out := make([]domain.RawSwapRecord, 0, len(records))
	for _, r := range records {
		if config.Contains(cutoff, r.Timestamp) {
			out = append(out, r)
		}
	}
	return out, len(records) - len(out), nil
}
