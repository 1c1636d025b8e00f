package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/olfactory/pkg/olfactory/internalerr"
	"github.com/cognicore/olfactory/pkg/olfactory/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string]store.Snapshot
}

var _ store.Store = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{snapshots: make(map[string]store.Snapshot)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveSnapshot implements store.Store.
func (s *Store) SaveSnapshot(ctx context.Context, snap store.Snapshot) error {
	if snap.ID == "" {
		return fmt.Errorf("snapshot id is empty: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.ID] = store.CopySnapshot(snap)
	return nil
}

// LoadSnapshot implements store.Store.
func (s *Store) LoadSnapshot(ctx context.Context, id string) (store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id == "" {
		id = s.latestLocked()
	}
	snap, ok := s.snapshots[id]
	if !ok {
		return store.Snapshot{}, fmt.Errorf("snapshot %q: %w", id, internalerr.ErrNotFound)
	}
	return store.CopySnapshot(snap), nil
}

// ListSnapshots implements store.Store.
func (s *Store) ListSnapshots(ctx context.Context) ([]store.SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]store.SnapshotInfo, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		infos = append(infos, snap.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID > infos[j].ID })
	return infos, nil
}

func (s *Store) latestLocked() string {
	latest := ""
	for id := range s.snapshots {
		if id > latest {
			latest = id
		}
	}
	return latest
}
