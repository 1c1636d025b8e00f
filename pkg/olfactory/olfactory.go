package olfactory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/olfactory/pkg/olfactory/catalog"
	"github.com/cognicore/olfactory/pkg/olfactory/corpus"
	"github.com/cognicore/olfactory/pkg/olfactory/embedding"
	"github.com/cognicore/olfactory/pkg/olfactory/ingest"
	"github.com/cognicore/olfactory/pkg/olfactory/internalerr"
	"github.com/cognicore/olfactory/pkg/olfactory/predict"
	"github.com/cognicore/olfactory/pkg/olfactory/store"
	"github.com/cognicore/olfactory/pkg/olfactory/train"
)

// Olfactory is the main facade tying training, persistence and prediction
// together
type Olfactory struct {
	store      store.Store
	oracle     embedding.Oracle
	extractor  ingest.KeywordExtractor
	categories *catalog.Table
	threshold  float64
	sampler    predict.Sampler
	log        *zap.Logger
	now        func() time.Time

	mu        sync.RWMutex
	predictor *predict.Resolver
	active    string
}

// Options configures an Olfactory instance
type Options struct {
	Store               store.Store
	Oracle              embedding.Oracle
	Extractor           ingest.KeywordExtractor
	Categories          *catalog.Table
	SimilarityThreshold float64
	Sampler             predict.Sampler
	Logger              *zap.Logger
}

// New creates an Olfactory instance with the given dependencies
func New(opts Options) (*Olfactory, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("olfactory: store is required: %w", internalerr.ErrInvalidConfig)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cats := opts.Categories
	if cats == nil {
		cats = catalog.NewTable()
	}
	return &Olfactory{
		store:      opts.Store,
		oracle:     opts.Oracle,
		extractor:  opts.Extractor,
		categories: cats,
		threshold:  opts.SimilarityThreshold,
		sampler:    opts.Sampler,
		log:        log,
		now:        time.Now,
	}, nil
}

// Close cleanly shuts down the underlying store
func (o *Olfactory) Close() error {
	return o.store.Close()
}

// Train resolves records into a new mapping and saves it as a snapshot.
// The new snapshot becomes the active one for Predict.
func (o *Olfactory) Train(ctx context.Context, records []corpus.Record) (store.Snapshot, train.Stats, error) {
	resolver, err := train.New(train.Options{
		Oracle:              o.oracle,
		Extractor:           o.extractor,
		SimilarityThreshold: o.threshold,
		Logger:              o.log,
	})
	if err != nil {
		return store.Snapshot{}, train.Stats{}, err
	}

	m, stats, err := resolver.Resolve(ctx, records)
	if err != nil {
		return store.Snapshot{}, stats, fmt.Errorf("resolve: %w", err)
	}

	snap := store.NewSnapshot(m, resolver.Threshold(), o.now())
	if err := o.store.SaveSnapshot(ctx, snap); err != nil {
		return store.Snapshot{}, stats, fmt.Errorf("save snapshot: %w", err)
	}
	o.log.Info("snapshot saved",
		zap.String("id", snap.ID),
		zap.Int("entries", len(snap.Entries)))

	if err := o.activate(snap); err != nil {
		return snap, stats, err
	}
	return snap, stats, nil
}

// Use loads the snapshot with id (the newest when id is empty) and makes it
// the active mapping.
func (o *Olfactory) Use(ctx context.Context, id string) (store.SnapshotInfo, error) {
	snap, err := o.store.LoadSnapshot(ctx, id)
	if err != nil {
		return store.SnapshotInfo{}, err
	}
	if err := o.activate(snap); err != nil {
		return store.SnapshotInfo{}, err
	}
	return snap.Info(), nil
}

// Active returns the ID of the active snapshot, or "" if none is loaded.
func (o *Olfactory) Active() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.active
}

func (o *Olfactory) activate(snap store.Snapshot) error {
	resolver, err := predict.New(predict.Options{
		Store:      snap.Mapping(),
		Categories: o.categories,
		Oracle:     o.oracle,
		Extractor:  o.extractor,
		Sampler:    o.sampler,
		Logger:     o.log,
	})
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.predictor = resolver
	o.active = snap.ID
	o.mu.Unlock()
	return nil
}

// Predict buckets the notes for text using the active snapshot, loading the
// newest one on first use.
func (o *Olfactory) Predict(ctx context.Context, text string, numRandomNotes int) (predict.Result, error) {
	o.mu.RLock()
	resolver := o.predictor
	o.mu.RUnlock()

	if resolver == nil {
		if _, err := o.Use(ctx, ""); err != nil {
			return predict.Result{}, fmt.Errorf("load mapping: %w", err)
		}
		o.mu.RLock()
		resolver = o.predictor
		o.mu.RUnlock()
	}
	return resolver.Predict(ctx, text, numRandomNotes)
}

// Snapshots lists stored snapshots, newest first.
func (o *Olfactory) Snapshots(ctx context.Context) ([]store.SnapshotInfo, error) {
	return o.store.ListSnapshots(ctx)
}

// Snapshot returns a stored snapshot with its entries.
func (o *Olfactory) Snapshot(ctx context.Context, id string) (store.Snapshot, error) {
	return o.store.LoadSnapshot(ctx, id)
}
