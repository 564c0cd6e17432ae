package postgres

import (
	"context"
	"fmt"
	"time"

	"solana-wallet-pnl/internal/storage"
)

// IngestionCursorStore is a PostgreSQL implementation of storage.IngestionCursorStore.
type IngestionCursorStore struct {
	pool *Pool
}

// NewIngestionCursorStore creates a new PostgreSQL ingestion cursor store.
func NewIngestionCursorStore(pool *Pool) *IngestionCursorStore {
	return &IngestionCursorStore{pool: pool}
}

// Compile-time interface check.
var _ storage.IngestionCursorStore = (*IngestionCursorStore)(nil)

// GetCursor returns the cursor of a wallet.
func (s *IngestionCursorStore) GetCursor(ctx context.Context, wallet string) (_ *storage.IngestionCursor, err error) {
	defer func(start time.Time) { observe("get_ingestion_cursor", start, err) }(time.Now())

	row := s.pool.QueryRow(ctx, `
		SELECT wallet, last_timestamp, last_tx_id
		FROM ingestion_cursors
		WHERE wallet = $1
	`, wallet)

	var c storage.IngestionCursor
	if err = row.Scan(&c.Wallet, &c.LastTimestamp, &c.LastTxID); err != nil {
		return nil, readError("get ingestion cursor", err)
	}
	return &c, nil
}

// SetCursor saves the cursor of a wallet.
// Uses upsert to handle initial insert and subsequent updates.
func (s *IngestionCursorStore) SetCursor(ctx context.Context, cursor *storage.IngestionCursor) (err error) {
	if cursor == nil || cursor.Wallet == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("set_ingestion_cursor", start, err) }(time.Now())

	_, err = s.pool.Exec(ctx, `
		INSERT INTO ingestion_cursors (wallet, last_timestamp, last_tx_id, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (wallet) DO UPDATE
		SET last_timestamp = EXCLUDED.last_timestamp,
		    last_tx_id = EXCLUDED.last_tx_id,
		    updated_at = NOW()
	`, cursor.Wallet, cursor.LastTimestamp, cursor.LastTxID)
	if err != nil {
		return fmt.Errorf("set ingestion cursor: %w", err)
	}
	return nil
}
