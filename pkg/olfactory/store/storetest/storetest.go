// Package storetest holds behaviour checks shared by every store.Store
// backend.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/cognicore/olfactory/pkg/olfactory/internalerr"
	"github.com/cognicore/olfactory/pkg/olfactory/mapping"
	"github.com/cognicore/olfactory/pkg/olfactory/store"
)

// Run exercises a backend. open must return an empty store.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("Empty", func(t *testing.T) { testEmpty(t, open(t)) })
	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, open(t)) })
	t.Run("Latest", func(t *testing.T) { testLatest(t, open(t)) })
	t.Run("Replace", func(t *testing.T) { testReplace(t, open(t)) })
	t.Run("Invalid", func(t *testing.T) { testInvalid(t, open(t)) })
}

func sampleMapping() *mapping.Store {
	m := mapping.New()
	m.Add("rose", "rose", mapping.Exact)
	m.Add("citrus", "CITRUS SMELLS", mapping.Specific)
	m.Add("forest", "WOODS AND MOSSES", mapping.Category)
	m.Add("café", "coffee absolute", mapping.Specific)
	return m
}

func testEmpty(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	infos, err := st.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("expected no snapshots, got %d", len(infos))
	}
	if _, err := st.LoadSnapshot(ctx, ""); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func testRoundTrip(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	m := sampleMapping()
	snap := store.NewSnapshot(m, 0.8, time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC))
	if err := st.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	got, err := st.LoadSnapshot(ctx, snap.ID)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got.ID != snap.ID {
		t.Errorf("ID = %q, want %q", got.ID, snap.ID)
	}
	if got.Threshold != 0.8 {
		t.Errorf("Threshold = %v", got.Threshold)
	}
	if !got.CreatedAt.Equal(snap.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, snap.CreatedAt)
	}
	if !reflect.DeepEqual(got.Entries, m.Entries()) {
		t.Errorf("Entries = %+v, want %+v", got.Entries, m.Entries())
	}

	restored := got.Mapping()
	note, err := restored.NoteForToken("forest")
	if err != nil || note != "WOODS AND MOSSES" {
		t.Errorf("restored forest = %q, %v", note, err)
	}
	if v, _ := restored.Volatility("forest"); v != mapping.Category {
		t.Errorf("restored volatility = %v", v)
	}
}

func testLatest(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	older := store.NewSnapshot(sampleMapping(), 0.7, base)
	m := mapping.New()
	m.Add("musk", "white musk", mapping.Specific)
	newer := store.NewSnapshot(m, 0.9, base.Add(time.Hour))

	for _, s := range []store.Snapshot{newer, older} {
		if err := st.SaveSnapshot(ctx, s); err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}
	}

	latest, err := st.LoadSnapshot(ctx, "")
	if err != nil {
		t.Fatalf("LoadSnapshot latest: %v", err)
	}
	if latest.ID != newer.ID {
		t.Errorf("latest = %q, want %q", latest.ID, newer.ID)
	}

	infos, err := st.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(infos))
	}
	if infos[0].ID != newer.ID || infos[1].ID != older.ID {
		t.Errorf("list order = %q, %q", infos[0].ID, infos[1].ID)
	}
	if infos[0].Entries != 1 || infos[1].Entries != 4 {
		t.Errorf("entry counts = %d, %d", infos[0].Entries, infos[1].Entries)
	}
}

func testReplace(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	snap := store.NewSnapshot(sampleMapping(), 0.8, time.Now())
	if err := st.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	snap.Entries = snap.Entries[:1]
	if err := st.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot again: %v", err)
	}

	got, err := st.LoadSnapshot(ctx, snap.ID)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(got.Entries) != 1 || got.Entries[0].Token != "rose" {
		t.Errorf("replaced entries = %+v", got.Entries)
	}
	infos, _ := st.ListSnapshots(ctx)
	if len(infos) != 1 {
		t.Errorf("expected 1 snapshot after replace, got %d", len(infos))
	}
}

func testInvalid(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	if err := st.SaveSnapshot(ctx, store.Snapshot{}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := st.LoadSnapshot(ctx, "01HZZZZZZZZZZZZZZZZZZZZZZZ"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
