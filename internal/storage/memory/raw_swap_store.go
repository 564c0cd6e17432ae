package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/idhash"
	"solana-wallet-pnl/internal/storage"
)

// RawSwapStore is an in-memory implementation of storage.RawSwapStore.
type RawSwapStore struct {
	mu   sync.RWMutex
	data map[string]storedRecord // keyed by wallet|record key
}

type storedRecord struct {
	key    string
	record domain.RawSwapRecord
}

// NewRawSwapStore creates a new in-memory raw swap store.
func NewRawSwapStore() *RawSwapStore {
	return &RawSwapStore{
		data: make(map[string]storedRecord),
	}
}

// rawSwapKey generates the storage key for a record.
func rawSwapKey(r *domain.RawSwapRecord) string {
	return r.Owner + "|" + idhash.ComputeRecordKey(r)
}

func validRawSwap(r *domain.RawSwapRecord) bool {
	return r != nil && r.Owner != "" && r.TxID != ""
}

// Insert adds a new record. Returns ErrDuplicateKey if exists.
func (s *RawSwapStore) Insert(_ context.Context, r *domain.RawSwapRecord) error {
	if !validRawSwap(r) {
		return storage.ErrInvalidInput
	}

	key := rawSwapKey(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[key] = storedRecord{key: key, record: *r}
	return nil
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *RawSwapStore) InsertBulk(_ context.Context, records []*domain.RawSwapRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, len(records))
	batchKeys := make(map[string]struct{}, len(records))

	for i, r := range records {
		if !validRawSwap(r) {
			return storage.ErrInvalidInput
		}
		key := rawSwapKey(r)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
		keys[i] = key
	}

	for i, r := range records {
		s.data[keys[i]] = storedRecord{key: keys[i], record: *r}
	}

	return nil
}

// GetByWallet retrieves all records of a wallet, ordered by timestamp ASC.
func (s *RawSwapStore) GetByWallet(_ context.Context, wallet string) ([]*domain.RawSwapRecord, error) {
	return s.collect(func(r *domain.RawSwapRecord) bool {
		return r.Owner == wallet
	}), nil
}

// GetByTimeRange retrieves records of a wallet within [start, end] (inclusive).
func (s *RawSwapStore) GetByTimeRange(_ context.Context, wallet string, start, end int64) ([]*domain.RawSwapRecord, error) {
	return s.collect(func(r *domain.RawSwapRecord) bool {
		return r.Owner == wallet && r.Timestamp >= start && r.Timestamp <= end
	}), nil
}

func (s *RawSwapStore) collect(match func(*domain.RawSwapRecord) bool) []*domain.RawSwapRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found []storedRecord
	for _, sr := range s.data {
		if match(&sr.record) {
			found = append(found, sr)
		}
	}

	sort.Slice(found, func(i, j int) bool {
		a, b := &found[i].record, &found[j].record
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		if a.TxID != b.TxID {
			return a.TxID < b.TxID
		}
		if a.InstructionIndex != b.InstructionIndex {
			return a.InstructionIndex < b.InstructionIndex
		}
		if a.InnerInstructionIndex != b.InnerInstructionIndex {
			return a.InnerInstructionIndex < b.InnerInstructionIndex
		}
		return found[i].key < found[j].key
	})

	result := make([]*domain.RawSwapRecord, len(found))
	for i := range found {
		copy := found[i].record
		result[i] = &copy
	}
	return result
}

var _ storage.RawSwapStore = (*RawSwapStore)(nil)
