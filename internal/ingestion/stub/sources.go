package stub

import (
	"context"

	"solana-wallet-pnl/internal/domain"
)

// StubRecordSource returns fixed in-memory records for testing.
// Records can be intentionally unordered or repeated to test the manager.
// Implements ingestion.RecordSource interface.
type StubRecordSource struct {
	records []*domain.RawSwapRecord
	err     error
	calls   int
}

// NewStubRecordSource creates a new stub record source with the given records.
func NewStubRecordSource(records []*domain.RawSwapRecord) *StubRecordSource {
	return &StubRecordSource{records: records}
}

// WithError makes every Fetch fail with err.
func (s *StubRecordSource) WithError(err error) *StubRecordSource {
	s.err = err
	return s
}

// Calls returns how many times Fetch was called.
func (s *StubRecordSource) Calls() int {
	return s.calls
}

// Fetch returns records of wallet within [from, to]. Ownerless records match any wallet.
// Returns copies to prevent mutation.
func (s *StubRecordSource) Fetch(_ context.Context, wallet string, from, to int64) ([]*domain.RawSwapRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}

	var result []*domain.RawSwapRecord
	for _, r := range s.records {
		if r.Owner != "" && r.Owner != wallet {
			continue
		}
		if r.Timestamp >= from && r.Timestamp <= to {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}
