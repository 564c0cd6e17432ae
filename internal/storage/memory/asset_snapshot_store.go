package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage"
)

// AssetSnapshotStore is an in-memory implementation of storage.AssetSnapshotStore.
type AssetSnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AssetSnapshot // keyed by snapshot_id
}

// NewAssetSnapshotStore creates a new in-memory asset snapshot store.
func NewAssetSnapshotStore() *AssetSnapshotStore {
	return &AssetSnapshotStore{
		data: make(map[string]*domain.AssetSnapshot),
	}
}

// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
func (s *AssetSnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.AssetSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.SnapshotID == "" || snap.ReportID == "" || snap.AssetID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[snap.SnapshotID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[snap.SnapshotID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[snap.SnapshotID] = struct{}{}
	}

	for _, snap := range snapshots {
		s.data[snap.SnapshotID] = cloneSnapshot(snap)
	}

	return nil
}

// GetByReport retrieves all snapshots of a report, ordered by asset_id ASC.
func (s *AssetSnapshotStore) GetByReport(_ context.Context, reportID string) ([]*domain.AssetSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AssetSnapshot
	for _, snap := range s.data {
		if snap.ReportID == reportID {
			result = append(result, cloneSnapshot(snap))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].AssetID < result[j].AssetID
	})

	return result, nil
}

// GetByAsset retrieves the snapshot history of one asset of a wallet, ordered by generated_at ASC.
func (s *AssetSnapshotStore) GetByAsset(_ context.Context, wallet, assetID string) ([]*domain.AssetSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AssetSnapshot
	for _, snap := range s.data {
		if snap.Wallet == wallet && snap.AssetID == assetID {
			result = append(result, cloneSnapshot(snap))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].GeneratedAt != result[j].GeneratedAt {
			return result[i].GeneratedAt < result[j].GeneratedAt
		}
		return result[i].ReportID < result[j].ReportID
	})

	return result, nil
}

func cloneSnapshot(snap *domain.AssetSnapshot) *domain.AssetSnapshot {
	out := *snap
	if snap.UnrealizedPnL != nil {
		v := *snap.UnrealizedPnL
		out.UnrealizedPnL = &v
	}
	if snap.CurrentPrice != nil {
		v := *snap.CurrentPrice
		out.CurrentPrice = &v
	}
	return &out
}

var _ storage.AssetSnapshotStore = (*AssetSnapshotStore)(nil)
