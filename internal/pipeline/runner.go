package pipeline

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/idhash"
	"solana-wallet-pnl/internal/qualify"
	"solana-wallet-pnl/internal/storage"
)

// Runner runs the pipeline over stored records and persists the results.
type Runner struct {
	pipeline  *Pipeline
	records   storage.RawSwapStore
	reports   storage.ReportStore
	snapshots storage.AssetSnapshotStore
	filter    *qualify.Filter
}

// BatchResult holds the reports of a batch run and, when a trader filter is
// set, the qualified wallets best first.
type BatchResult struct {
	Reports   []*domain.PnLReport `json:"reports"`
	Qualified []qualify.Candidate `json:"qualified,omitempty"`
}

// NewRunner creates a runner. reports and snapshots may be nil to skip
// persisting that output.
func NewRunner(p *Pipeline, records storage.RawSwapStore, reports storage.ReportStore, snapshots storage.AssetSnapshotStore) *Runner {
	return &Runner{
		pipeline:  p,
		records:   records,
		reports:   reports,
		snapshots: snapshots,
	}
}

// WithTraderFilter scores every batch report with filter.
func (r *Runner) WithTraderFilter(filter *qualify.Filter) *Runner {
	r.filter = filter
	return r
}

// RunWallet processes a single wallet:
//  1. Load raw swap records from the record store
//  2. Run the pipeline
//  3. Store the report
//  4. Store one snapshot per asset
func (r *Runner) RunWallet(ctx context.Context, wallet string) (*domain.PnLReport, error) {
	stored, err := r.records.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("load records for %s: %w", wallet, err)
	}
	records := make([]domain.RawSwapRecord, 0, len(stored))
	for _, rec := range stored {
		records = append(records, *rec)
	}

	report, err := r.pipeline.ForWallet(wallet).Run(ctx, records)
	if err != nil {
		return nil, err
	}

	if r.reports != nil {
		if err := r.reports.Insert(ctx, report); err != nil {
			return nil, fmt.Errorf("store report %s: %w", report.ReportID, err)
		}
	}

	if r.snapshots != nil {
		if snaps := BuildSnapshots(report); len(snaps) > 0 {
			if err := r.snapshots.InsertBulk(ctx, snaps); err != nil {
				return nil, fmt.Errorf("store snapshots for %s: %w", report.ReportID, err)
			}
		}
	}

	return report, nil
}

// RunBatch processes multiple wallets, stopping at the first error. The
// reports finished before the error are still returned. Qualification runs
// only when every wallet succeeded.
func (r *Runner) RunBatch(ctx context.Context, wallets []string) (*BatchResult, error) {
	res := &BatchResult{Reports: make([]*domain.PnLReport, 0, len(wallets))}
	for _, wallet := range wallets {
		report, err := r.RunWallet(ctx, wallet)
		if err != nil {
			return res, err
		}
		res.Reports = append(res.Reports, report)
	}
	if r.filter != nil {
		res.Qualified = r.filter.FilterReports(res.Reports)
	}
	return res, nil
}

// BuildSnapshots flattens a report into one snapshot per asset. Quantity and
// cost basis come from the open position and are zero for closed assets.
func BuildSnapshots(report *domain.PnLReport) []*domain.AssetSnapshot {
	positions := make(map[string]domain.Position, len(report.Positions))
	for _, pos := range report.Positions {
		positions[pos.AssetID] = pos
	}

	out := make([]*domain.AssetSnapshot, 0, len(report.Assets))
	for _, asset := range report.Assets {
		snap := &domain.AssetSnapshot{
			SnapshotID:       idhash.ComputeSnapshotID(report.ReportID, asset.AssetID),
			ReportID:         report.ReportID,
			Wallet:           report.Wallet,
			AssetID:          asset.AssetID,
			Symbol:           asset.Symbol,
			Quantity:         decimal.Zero,
			CostBasis:        decimal.Zero,
			RealizedPnL:      asset.RealizedPnL,
			RealizedComplete: asset.RealizedComplete,
			Invested:         asset.Invested,
			Withdrawn:        asset.Withdrawn,
			Halted:           asset.Halted,
			GeneratedAt:      report.GeneratedAt.UnixMilli(),
		}
		if pos, ok := positions[asset.AssetID]; ok {
			snap.Quantity = pos.TotalQuantity
			snap.CostBasis = pos.TotalCostBasis
		}
		if asset.UnrealizedPnL != nil {
			v := *asset.UnrealizedPnL
			snap.UnrealizedPnL = &v
		}
		if asset.CurrentPrice != nil {
			v := *asset.CurrentPrice
			snap.CurrentPrice = &v
		}
		out = append(out, snap)
	}
	return out
}
