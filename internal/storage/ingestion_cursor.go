package storage

import "context"

// IngestionCursor is the newest position ingested for a wallet.
type IngestionCursor struct {
	Wallet        string // wallet address
	LastTimestamp int64  // block time of the newest stored record, Unix seconds
	LastTxID      string // transaction of the newest stored record
}

// IngestionCursorStore persists per-wallet ingestion progress.
// This enables incremental ingestion without refetching the whole history.
type IngestionCursorStore interface {
	// GetCursor returns the cursor of a wallet.
	// Returns ErrNotFound if nothing has been ingested yet.
	GetCursor(ctx context.Context, wallet string) (*IngestionCursor, error)

	// SetCursor saves the cursor of a wallet, replacing any previous one.
	SetCursor(ctx context.Context, cursor *IngestionCursor) error
}
