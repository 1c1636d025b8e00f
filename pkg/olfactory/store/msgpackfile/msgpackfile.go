// Package msgpackfile keeps mapping snapshots in a single msgpack file.
package msgpackfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/cognicore/olfactory/pkg/olfactory/internalerr"
	"github.com/cognicore/olfactory/pkg/olfactory/mapping"
	"github.com/cognicore/olfactory/pkg/olfactory/store"
)

type entryDoc struct {
	Token      string `msgpack:"token"`
	Note       string `msgpack:"note"`
	Volatility int    `msgpack:"volatility"`
}

type snapshotDoc struct {
	ID        string     `msgpack:"id"`
	CreatedAt time.Time  `msgpack:"created_at"`
	Threshold float64    `msgpack:"threshold"`
	Entries   []entryDoc `msgpack:"entries"`
}

type fileDoc struct {
	Version   int           `msgpack:"version"`
	Snapshots []snapshotDoc `msgpack:"snapshots"`
}

const fileVersion = 1

// Store is a file-backed store.Store. Every save rewrites the whole file.
type Store struct {
	mu   sync.Mutex
	path string
}

var _ store.Store = (*Store)(nil)

// Open returns a store at path. The file is created on first save.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("msgpack store path is empty: %w", internalerr.ErrInvalidConfig)
	}
	s := &Store{path: path}
	if _, err := s.read(); err != nil {
		return nil, err
	}
	return s, nil
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

	doc, err := s.read()
	if err != nil {
		return err
	}
	kept := doc.Snapshots[:0]
	for _, sd := range doc.Snapshots {
		if sd.ID != snap.ID {
			kept = append(kept, sd)
		}
	}
	doc.Snapshots = append(kept, toDoc(snap))
	return s.write(doc)
}

// LoadSnapshot implements store.Store.
func (s *Store) LoadSnapshot(ctx context.Context, id string) (store.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return store.Snapshot{}, err
	}
	var best *snapshotDoc
	for i := range doc.Snapshots {
		sd := &doc.Snapshots[i]
		if id == "" {
			if best == nil || sd.ID > best.ID {
				best = sd
			}
		} else if sd.ID == id {
			best = sd
			break
		}
	}
	if best == nil {
		return store.Snapshot{}, fmt.Errorf("snapshot %q: %w", id, internalerr.ErrNotFound)
	}
	return fromDoc(*best), nil
}

// ListSnapshots implements store.Store.
func (s *Store) ListSnapshots(ctx context.Context) ([]store.SnapshotInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	infos := make([]store.SnapshotInfo, 0, len(doc.Snapshots))
	for _, sd := range doc.Snapshots {
		infos = append(infos, store.SnapshotInfo{
			ID:        sd.ID,
			CreatedAt: sd.CreatedAt,
			Threshold: sd.Threshold,
			Entries:   len(sd.Entries),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID > infos[j].ID })
	return infos, nil
}

func (s *Store) read() (fileDoc, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileDoc{Version: fileVersion}, nil
	}
	if err != nil {
		return fileDoc{}, fmt.Errorf("read %s: %v: %w", s.path, err, internalerr.ErrStoreUnavailable)
	}
	var doc fileDoc
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return fileDoc{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if doc.Version != fileVersion {
		return fileDoc{}, fmt.Errorf("%s: unsupported version %d: %w", s.path, doc.Version, internalerr.ErrStoreUnavailable)
	}
	return doc, nil
}

// write replaces the file atomically via a temp file in the same directory.
func (s *Store) write(doc fileDoc) error {
	doc.Version = fileVersion
	data, err := msgpack.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encode snapshots: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".snapshots-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func toDoc(s store.Snapshot) snapshotDoc {
	entries := make([]entryDoc, len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = entryDoc{Token: e.Token, Note: e.Note, Volatility: int(e.Volatility)}
	}
	return snapshotDoc{
		ID:        s.ID,
		CreatedAt: s.CreatedAt.UTC(),
		Threshold: s.Threshold,
		Entries:   entries,
	}
}

func fromDoc(d snapshotDoc) store.Snapshot {
	entries := make([]mapping.Entry, len(d.Entries))
	for i, e := range d.Entries {
		entries[i] = mapping.Entry{Token: e.Token, Note: e.Note, Volatility: mapping.Volatility(e.Volatility)}
	}
	return store.Snapshot{
		ID:        d.ID,
		CreatedAt: d.CreatedAt,
		Threshold: d.Threshold,
		Entries:   entries,
	}
}
