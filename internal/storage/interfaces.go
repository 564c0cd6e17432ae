package storage

import (
	"context"

	"solana-wallet-pnl/internal/domain"
)

// RawSwapStore provides access to raw_swap_records storage.
// Records are keyed by (wallet, record key) where the record key is idhash.ComputeRecordKey.
type RawSwapStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if (wallet, record key) exists.
	Insert(ctx context.Context, r *domain.RawSwapRecord) error

	// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, records []*domain.RawSwapRecord) error

	// GetByWallet retrieves all records of a wallet, ordered by timestamp ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.RawSwapRecord, error)

	// GetByTimeRange retrieves records of a wallet within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, wallet string, start, end int64) ([]*domain.RawSwapRecord, error)
}

// ReportStore provides access to pnl_reports storage.
type ReportStore interface {
	// Insert adds a new report with its asset rows. Returns ErrDuplicateKey if report_id exists.
	Insert(ctx context.Context, r *domain.PnLReport) error

	// GetByID retrieves a report by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, reportID string) (*domain.PnLReport, error)

	// GetLatestByWallet retrieves the most recently generated report of a wallet.
	// Returns ErrNotFound if the wallet has no reports.
	GetLatestByWallet(ctx context.Context, wallet string) (*domain.PnLReport, error)
}

// AssetSnapshotStore provides access to asset_pnl_snapshots storage.
type AssetSnapshotStore interface {
	// InsertBulk adds multiple snapshots. Fails entire batch on any duplicate snapshot_id.
	InsertBulk(ctx context.Context, snapshots []*domain.AssetSnapshot) error

	// GetByReport retrieves all snapshots of a report, ordered by asset_id ASC.
	GetByReport(ctx context.Context, reportID string) ([]*domain.AssetSnapshot, error)

	// GetByAsset retrieves the snapshot history of one asset of a wallet, ordered by generated_at ASC.
	GetByAsset(ctx context.Context, wallet, assetID string) ([]*domain.AssetSnapshot, error)
}
