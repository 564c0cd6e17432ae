package clickhouse

import (
	"context"
	"fmt"
	"time"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage"
)

// AssetSnapshotStore implements storage.AssetSnapshotStore using ClickHouse.
type AssetSnapshotStore struct {
	conn *Conn
}

// NewAssetSnapshotStore creates a new AssetSnapshotStore.
func NewAssetSnapshotStore(conn *Conn) *AssetSnapshotStore {
	return &AssetSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.AssetSnapshotStore = (*AssetSnapshotStore)(nil)

const selectSnapshotColumns = `
	SELECT
		snapshot_id, report_id, wallet, asset_id, symbol,
		quantity, cost_basis, realized_pnl, unrealized_pnl, current_price,
		invested, withdrawn, halted, realized_complete, generated_at_ms
	FROM asset_pnl_snapshots FINAL
`

// InsertBulk adds multiple snapshots. Fails entire batch on any duplicate.
// ReplacingMergeTree does not reject duplicates, so they are checked before the insert.
func (s *AssetSnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.AssetSnapshot) (err error) {
	if len(snapshots) == 0 {
		return nil
	}
	defer func(start time.Time) { observe("insert_snapshots_bulk", start, err) }(time.Now())

	seen := make(map[string]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.SnapshotID == "" || snap.ReportID == "" || snap.AssetID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[snap.SnapshotID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[snap.SnapshotID] = struct{}{}
	}

	for _, snap := range snapshots {
		exists, err := s.exists(ctx, snap.SnapshotID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO asset_pnl_snapshots (
			snapshot_id, report_id, wallet, asset_id, symbol,
			quantity, cost_basis, realized_pnl, unrealized_pnl, current_price,
			invested, withdrawn, halted, realized_complete, generated_at_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			snap.SnapshotID, snap.ReportID, snap.Wallet, snap.AssetID, snap.Symbol,
			snap.Quantity, snap.CostBasis, snap.RealizedPnL, snap.UnrealizedPnL, snap.CurrentPrice,
			snap.Invested, snap.Withdrawn, snap.Halted, snap.RealizedComplete, snap.GeneratedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByReport retrieves all snapshots of a report, ordered by asset_id ASC.
func (s *AssetSnapshotStore) GetByReport(ctx context.Context, reportID string) (_ []*domain.AssetSnapshot, err error) {
	defer func(start time.Time) { observe("get_snapshots_by_report", start, err) }(time.Now())

	rows, err := s.conn.Query(ctx, selectSnapshotColumns+`
		WHERE report_id = ?
		ORDER BY asset_id ASC
	`, reportID)
	if err != nil {
		return nil, fmt.Errorf("query by report: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// GetByAsset retrieves the snapshot history of one asset of a wallet, ordered by generated_at ASC.
func (s *AssetSnapshotStore) GetByAsset(ctx context.Context, wallet, assetID string) (_ []*domain.AssetSnapshot, err error) {
	defer func(start time.Time) { observe("get_snapshots_by_asset", start, err) }(time.Now())

	rows, err := s.conn.Query(ctx, selectSnapshotColumns+`
		WHERE wallet = ? AND asset_id = ?
		ORDER BY generated_at_ms ASC, report_id ASC
	`, wallet, assetID)
	if err != nil {
		return nil, fmt.Errorf("query by asset: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// exists checks if a snapshot with the given id exists.
func (s *AssetSnapshotStore) exists(ctx context.Context, snapshotID string) (bool, error) {
	query := `
		SELECT count(*) FROM asset_pnl_snapshots FINAL
		WHERE snapshot_id = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, snapshotID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// chRows is the subset of driver.Rows used for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSnapshots(rows chRows) ([]*domain.AssetSnapshot, error) {
	var result []*domain.AssetSnapshot
	for rows.Next() {
		var snap domain.AssetSnapshot
		err := rows.Scan(
			&snap.SnapshotID, &snap.ReportID, &snap.Wallet, &snap.AssetID, &snap.Symbol,
			&snap.Quantity, &snap.CostBasis, &snap.RealizedPnL, &snap.UnrealizedPnL, &snap.CurrentPrice,
			&snap.Invested, &snap.Withdrawn, &snap.Halted, &snap.RealizedComplete, &snap.GeneratedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		result = append(result, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return result, nil
}
