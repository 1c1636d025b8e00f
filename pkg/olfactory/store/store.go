package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/olfactory/pkg/olfactory/mapping"
)

// Store persists trained mapping snapshots.
type Store interface {
	Close() error

	// SaveSnapshot writes s. Saving an existing ID replaces it.
	SaveSnapshot(ctx context.Context, s Snapshot) error
	// LoadSnapshot returns the snapshot with id, or the newest one when id
	// is empty. Missing snapshots yield internalerr.ErrNotFound.
	LoadSnapshot(ctx context.Context, id string) (Snapshot, error)
	// ListSnapshots returns summaries, newest first.
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)
}

// Snapshot is the persisted output of one training run.
type Snapshot struct {
	ID        string
	CreatedAt time.Time
	Threshold float64
	Entries   []mapping.Entry
}

// SnapshotInfo summarizes a stored snapshot.
type SnapshotInfo struct {
	ID        string
	CreatedAt time.Time
	Threshold float64
	Entries   int
}

// Info summarizes s.
func (s Snapshot) Info() SnapshotInfo {
	return SnapshotInfo{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Threshold: s.Threshold,
		Entries:   len(s.Entries),
	}
}

// Mapping rebuilds a mapping store from the snapshot entries.
func (s Snapshot) Mapping() *mapping.Store {
	return mapping.Restore(s.Entries)
}

// ulid.MonotonicEntropy is not safe for concurrent use.
var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new lexicographically sortable snapshot ID.
func NewID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), idEntropy).String()
}

// NewSnapshot captures m as a snapshot stamped with now.
func NewSnapshot(m *mapping.Store, threshold float64, now time.Time) Snapshot {
	now = now.UTC()
	return Snapshot{
		ID:        NewID(now),
		CreatedAt: now,
		Threshold: threshold,
		Entries:   m.Entries(),
	}
}

// CopySnapshot returns s with its own entry slice.
func CopySnapshot(s Snapshot) Snapshot {
	s.Entries = append([]mapping.Entry(nil), s.Entries...)
	return s
}
