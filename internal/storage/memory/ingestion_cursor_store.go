package memory

import (
	"context"
	"sync"

	"solana-wallet-pnl/internal/storage"
)

// IngestionCursorStore is an in-memory implementation of storage.IngestionCursorStore.
type IngestionCursorStore struct {
	mu      sync.RWMutex
	cursors map[string]storage.IngestionCursor
}

// NewIngestionCursorStore creates a new in-memory cursor store.
func NewIngestionCursorStore() *IngestionCursorStore {
	return &IngestionCursorStore{
		cursors: make(map[string]storage.IngestionCursor),
	}
}

// GetCursor returns the cursor of a wallet.
func (s *IngestionCursorStore) GetCursor(_ context.Context, wallet string) (*storage.IngestionCursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cursors[wallet]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}

// SetCursor saves the cursor of a wallet.
func (s *IngestionCursorStore) SetCursor(_ context.Context, cursor *storage.IngestionCursor) error {
	if cursor == nil || cursor.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursors[cursor.Wallet] = *cursor
	return nil
}

var _ storage.IngestionCursorStore = (*IngestionCursorStore)(nil)
