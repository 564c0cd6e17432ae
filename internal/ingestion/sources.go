package ingestion

import (
	"context"

	"solana-wallet-pnl/internal/domain"
)

// RecordSource provides raw swap records from external sources.
type RecordSource interface {
	// Fetch returns records of a wallet with block time within [from, to] (inclusive).
	// Records may be unordered and may repeat; Manager enforces ordering and drops repeats.
	Fetch(ctx context.Context, wallet string, from, to int64) ([]*domain.RawSwapRecord, error)
}

// FileSource serves records from trade history files.
// Files are re-read on every Fetch.
type FileSource struct {
	paths []string
}

// NewFileSource creates a source over the given history files.
func NewFileSource(paths ...string) *FileSource {
	return &FileSource{paths: paths}
}

// Fetch decodes every file and returns the records of wallet within [from, to].
// Records without an owner are attributed to wallet.
func (s *FileSource) Fetch(ctx context.Context, wallet string, from, to int64) ([]*domain.RawSwapRecord, error) {
	var result []*domain.RawSwapRecord
	for _, path := range s.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := LoadHistoryFile(path)
		if err != nil {
			return nil, err
		}

		for i := range page.Records {
			r := page.Records[i]
			if r.Owner == "" {
				r.Owner = wallet
			}
			if r.Owner != wallet || r.Timestamp < from || r.Timestamp > to {
				continue
			}
			result = append(result, &r)
		}
	}
	return result, nil
}
