package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/idhash"
	"solana-wallet-pnl/internal/storage"
)

// DefaultBatchSize is the number of records per InsertBulk call.
const DefaultBatchSize = 500

// Manager orchestrates ingestion from a record source to storage.
// It enforces deterministic ordering and uses the storage layer for duplicate rejection.
type Manager struct {
	source    RecordSource
	store     storage.RawSwapStore
	cursors   storage.IngestionCursorStore
	batchSize int
	logger    *log.Logger
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	Source    RecordSource
	Store     storage.RawSwapStore
	Cursors   storage.IngestionCursorStore // optional
	BatchSize int
	Logger    *log.Logger
}

// NewManager creates a new ingestion manager with the provided source and stores.
func NewManager(opts ManagerOptions) *Manager {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Manager{
		source:    opts.Source,
		store:     opts.Store,
		cursors:   opts.Cursors,
		batchSize: batchSize,
		logger:    logger,
	}
}

// IngestResult contains statistics from one ingestion call.
type IngestResult struct {
	Fetched           int
	Inserted          int
	DuplicatesSkipped int // repeats within the fetch plus rows already stored
	Duration          time.Duration
}

// IngestRecords fetches records of wallet within [from, to] and stores them.
// Records are sorted by on-chain position before insert. Rows already stored are skipped.
func (m *Manager) IngestRecords(ctx context.Context, wallet string, from, to int64) (*IngestResult, error) {
	start := time.Now()
	result := &IngestResult{}

	if m.source == nil || m.store == nil {
		return result, nil
	}
	if wallet == "" {
		return nil, fmt.Errorf("ingest records: %w: empty wallet", storage.ErrInvalidInput)
	}

	records, err := m.source.Fetch(ctx, wallet, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	result.Fetched = len(records)

	unique := uniqueRecords(wallet, records)
	result.DuplicatesSkipped = len(records) - len(unique)
	if len(unique) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	SortRecords(unique)

	for lo := 0; lo < len(unique); lo += m.batchSize {
		hi := min(lo+m.batchSize, len(unique))
		inserted, dups, err := m.insertBatch(ctx, unique[lo:hi])
		if err != nil {
			return nil, err
		}
		result.Inserted += inserted
		result.DuplicatesSkipped += dups
	}

	if err := m.advanceCursor(ctx, wallet, unique[len(unique)-1]); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	m.logger.Printf("[ingest] wallet=%s fetched=%d inserted=%d duplicates=%d in %v",
		wallet, result.Fetched, result.Inserted, result.DuplicatesSkipped, result.Duration)

	return result, nil
}

// IngestIncremental ingests from the wallet's stored cursor up to to.
// The cursor second is fetched again; records already stored there are skipped.
func (m *Manager) IngestIncremental(ctx context.Context, wallet string, to int64) (*IngestResult, error) {
	var from int64
	if m.cursors != nil {
		cursor, err := m.cursors.GetCursor(ctx, wallet)
		switch {
		case err == nil:
			from = cursor.LastTimestamp
		case !errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("get cursor: %w", err)
		}
	}
	return m.IngestRecords(ctx, wallet, from, to)
}

// insertBatch stores one sorted batch. If the batch collides with stored rows
// it falls back to per-record inserts so new rows still land.
func (m *Manager) insertBatch(ctx context.Context, batch []*domain.RawSwapRecord) (inserted, duplicates int, err error) {
	err = m.store.InsertBulk(ctx, batch)
	if err == nil {
		return len(batch), 0, nil
	}
	if !errors.Is(err, storage.ErrDuplicateKey) {
		return 0, 0, fmt.Errorf("insert records: %w", err)
	}

	for _, r := range batch {
		switch err := m.store.Insert(ctx, r); {
		case err == nil:
			inserted++
		case errors.Is(err, storage.ErrDuplicateKey):
			duplicates++
		default:
			return inserted, duplicates, fmt.Errorf("insert record %s: %w", r.TxID, err)
		}
	}
	return inserted, duplicates, nil
}

func (m *Manager) advanceCursor(ctx context.Context, wallet string, newest *domain.RawSwapRecord) error {
	if m.cursors == nil {
		return nil
	}

	current, err := m.cursors.GetCursor(ctx, wallet)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("get cursor: %w", err)
	}
	if current != nil && current.LastTimestamp >= newest.Timestamp {
		return nil
	}

	err = m.cursors.SetCursor(ctx, &storage.IngestionCursor{
		Wallet:        wallet,
		LastTimestamp: newest.Timestamp,
		LastTxID:      newest.TxID,
	})
	if err != nil {
		return fmt.Errorf("set cursor: %w", err)
	}
	return nil
}

// uniqueRecords attributes ownerless records to wallet and drops repeated record keys,
// keeping the first occurrence.
func uniqueRecords(wallet string, records []*domain.RawSwapRecord) []*domain.RawSwapRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]*domain.RawSwapRecord, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if r.Owner == "" {
			r.Owner = wallet
		}
		key := idhash.ComputeRecordKey(r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
