package memory

import (
	"context"
	"sync"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage"
)

// ReportStore is an in-memory implementation of storage.ReportStore.
type ReportStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PnLReport // keyed by report_id
}

// NewReportStore creates a new in-memory report store.
func NewReportStore() *ReportStore {
	return &ReportStore{
		data: make(map[string]*domain.PnLReport),
	}
}

// Insert adds a new report. Returns ErrDuplicateKey if report_id exists.
func (s *ReportStore) Insert(_ context.Context, r *domain.PnLReport) error {
	if r == nil || r.ReportID == "" || r.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ReportID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[r.ReportID] = cloneReport(r)
	return nil
}

// GetByID retrieves a report by its ID. Returns ErrNotFound if not exists.
func (s *ReportStore) GetByID(_ context.Context, reportID string) (*domain.PnLReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[reportID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneReport(r), nil
}

// GetLatestByWallet retrieves the most recently generated report of a wallet.
// Ties on generation time are broken by the larger report_id.
func (s *ReportStore) GetLatestByWallet(_ context.Context, wallet string) (*domain.PnLReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.PnLReport
	for _, r := range s.data {
		if r.Wallet != wallet {
			continue
		}
		if latest == nil ||
			r.GeneratedAt.After(latest.GeneratedAt) ||
			(r.GeneratedAt.Equal(latest.GeneratedAt) && r.ReportID > latest.ReportID) {
			latest = r
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return cloneReport(latest), nil
}

// cloneReport deep-copies a report so callers cannot mutate stored state.
func cloneReport(r *domain.PnLReport) *domain.PnLReport {
	out := *r

	out.Assets = make([]domain.AssetPnL, len(r.Assets))
	for i, a := range r.Assets {
		if a.UnrealizedPnL != nil {
			v := *a.UnrealizedPnL
			a.UnrealizedPnL = &v
		}
		if a.CurrentPrice != nil {
			v := *a.CurrentPrice
			a.CurrentPrice = &v
		}
		out.Assets[i] = a
	}

	out.Positions = append([]domain.Position(nil), r.Positions...)

	out.Diagnostics.Counts = make(map[domain.DiagnosticKind]int, len(r.Diagnostics.Counts))
	for k, v := range r.Diagnostics.Counts {
		out.Diagnostics.Counts[k] = v
	}
	out.Diagnostics.Samples = append([]domain.Diagnostic(nil), r.Diagnostics.Samples...)

	return &out
}

var _ storage.ReportStore = (*ReportStore)(nil)
