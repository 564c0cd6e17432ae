package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/idhash"
	"solana-wallet-pnl/internal/storage"
)

// RawSwapStore implements storage.RawSwapStore using PostgreSQL.
type RawSwapStore struct {
	pool *Pool
}

// NewRawSwapStore creates a new RawSwapStore.
func NewRawSwapStore(pool *Pool) *RawSwapStore {
	return &RawSwapStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RawSwapStore = (*RawSwapStore)(nil)

const insertRawSwapQuery = `
	INSERT INTO raw_swap_records (
		wallet, record_key, tx_id, instruction_index, inner_instruction_index,
		timestamp, source, declared_notional,
		leg_a_asset_id, leg_a_symbol, leg_a_decimals, leg_a_raw_amount, leg_a_ui_amount,
		leg_a_net_change, leg_a_unit_price, leg_a_nearest_price, leg_a_direction_hint,
		leg_b_asset_id, leg_b_symbol, leg_b_decimals, leg_b_raw_amount, leg_b_ui_amount,
		leg_b_net_change, leg_b_unit_price, leg_b_nearest_price, leg_b_direction_hint
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8,
		$9, $10, $11, $12, $13,
		$14, $15, $16, $17,
		$18, $19, $20, $21, $22,
		$23, $24, $25, $26
	)
`

const selectRawSwapColumns = `
	SELECT wallet, tx_id, instruction_index, inner_instruction_index,
		timestamp, source, declared_notional,
		leg_a_asset_id, leg_a_symbol, leg_a_decimals, leg_a_raw_amount, leg_a_ui_amount,
		leg_a_net_change, leg_a_unit_price, leg_a_nearest_price, leg_a_direction_hint,
		leg_b_asset_id, leg_b_symbol, leg_b_decimals, leg_b_raw_amount, leg_b_ui_amount,
		leg_b_net_change, leg_b_unit_price, leg_b_nearest_price, leg_b_direction_hint
	FROM raw_swap_records
`

const rawSwapOrder = `
	ORDER BY timestamp ASC, tx_id ASC, instruction_index ASC, inner_instruction_index ASC, record_key ASC
`

func rawSwapArgs(r *domain.RawSwapRecord) []any {
	return []any{
		r.Owner, idhash.ComputeRecordKey(r), r.TxID, r.InstructionIndex, r.InnerInstructionIndex,
		r.Timestamp, r.Source, r.DeclaredNotional,
		r.LegA.AssetID, r.LegA.Symbol, r.LegA.Decimals, r.LegA.RawAmount, r.LegA.UIAmount,
		r.LegA.NetChange, r.LegA.UnitPrice, r.LegA.NearestPrice, string(r.LegA.DirectionHint),
		r.LegB.AssetID, r.LegB.Symbol, r.LegB.Decimals, r.LegB.RawAmount, r.LegB.UIAmount,
		r.LegB.NetChange, r.LegB.UnitPrice, r.LegB.NearestPrice, string(r.LegB.DirectionHint),
	}
}

// Insert adds a new record. Returns ErrDuplicateKey if (wallet, record_key) exists.
func (s *RawSwapStore) Insert(ctx context.Context, r *domain.RawSwapRecord) (err error) {
	if r == nil || r.Owner == "" || r.TxID == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("insert_raw_swap", start, err) }(time.Now())

	if _, err = s.pool.Exec(ctx, insertRawSwapQuery, rawSwapArgs(r)...); err != nil {
		return writeError("insert raw swap", err)
	}
	return nil
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *RawSwapStore) InsertBulk(ctx context.Context, records []*domain.RawSwapRecord) (err error) {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if r == nil || r.Owner == "" || r.TxID == "" {
			return storage.ErrInvalidInput
		}
	}
	defer func(start time.Time) { observe("insert_raw_swaps_bulk", start, err) }(time.Now())

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(insertRawSwapQuery, rawSwapArgs(r)...)
	}
	return s.pool.inTx(ctx, func(tx pgx.Tx) error {
		return execBatch(ctx, tx, batch, "insert raw swap in bulk")
	})
}

// GetByWallet retrieves all records of a wallet, ordered by timestamp ASC.
func (s *RawSwapStore) GetByWallet(ctx context.Context, wallet string) (_ []*domain.RawSwapRecord, err error) {
	defer func(start time.Time) { observe("get_raw_swaps_by_wallet", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, selectRawSwapColumns+`WHERE wallet = $1`+rawSwapOrder, wallet)
	if err != nil {
		return nil, fmt.Errorf("get raw swaps by wallet: %w", err)
	}
	defer rows.Close()

	return scanRawSwaps(rows)
}

// GetByTimeRange retrieves records of a wallet within [start, end] (inclusive).
func (s *RawSwapStore) GetByTimeRange(ctx context.Context, wallet string, start, end int64) (_ []*domain.RawSwapRecord, err error) {
	defer func(began time.Time) { observe("get_raw_swaps_by_time_range", began, err) }(time.Now())

	rows, err := s.pool.Query(ctx,
		selectRawSwapColumns+`WHERE wallet = $1 AND timestamp >= $2 AND timestamp <= $3`+rawSwapOrder,
		wallet, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("get raw swaps by time range: %w", err)
	}
	defer rows.Close()

	return scanRawSwaps(rows)
}

// scanRawSwaps scans multiple rows into a slice of RawSwapRecord.
func scanRawSwaps(rows pgx.Rows) ([]*domain.RawSwapRecord, error) {
	var records []*domain.RawSwapRecord

	for rows.Next() {
		var (
			r     domain.RawSwapRecord
			hintA string
			hintB string
		)

		err := rows.Scan(
			&r.Owner, &r.TxID, &r.InstructionIndex, &r.InnerInstructionIndex,
			&r.Timestamp, &r.Source, &r.DeclaredNotional,
			&r.LegA.AssetID, &r.LegA.Symbol, &r.LegA.Decimals, &r.LegA.RawAmount, &r.LegA.UIAmount,
			&r.LegA.NetChange, &r.LegA.UnitPrice, &r.LegA.NearestPrice, &hintA,
			&r.LegB.AssetID, &r.LegB.Symbol, &r.LegB.Decimals, &r.LegB.RawAmount, &r.LegB.UIAmount,
			&r.LegB.NetChange, &r.LegB.UnitPrice, &r.LegB.NearestPrice, &hintB,
		)
		if err != nil {
			return nil, fmt.Errorf("scan raw swap row: %w", err)
		}
		r.LegA.DirectionHint = domain.DirectionHint(hintA)
		r.LegB.DirectionHint = domain.DirectionHint(hintB)

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate raw swap rows: %w", err)
	}

	return records, nil
}
