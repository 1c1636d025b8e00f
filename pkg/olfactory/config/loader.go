package config

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/olfactory/pkg/olfactory/catalog"
	"github.com/cognicore/olfactory/pkg/olfactory/corpus"
	"github.com/cognicore/olfactory/pkg/olfactory/embedding"
	"github.com/cognicore/olfactory/pkg/olfactory/ingest"
	"github.com/cognicore/olfactory/pkg/olfactory/internalerr"
	"github.com/cognicore/olfactory/pkg/olfactory/stoplist"
	"github.com/cognicore/olfactory/pkg/olfactory/store"
	"github.com/cognicore/olfactory/pkg/olfactory/store/msgpackfile"
	"github.com/cognicore/olfactory/pkg/olfactory/store/sqlite"
)

// Loader constructs components from a Config
type Loader struct {
	Config *Config
	Logger *zap.Logger
}

// Components holds the shared read-only dependencies
type Components struct {
	Extractor  *ingest.Extractor
	Oracle     embedding.Oracle
	Categories *catalog.Table
	Store      store.Store
}

func (l *Loader) config() *Config {
	if l.Config == nil {
		return Default()
	}
	return l.Config
}

func (l *Loader) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

// Load builds every component. The caller owns Components.Store.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	comp := &Components{}
	var err error

	if comp.Extractor, err = l.Extractor(); err != nil {
		return nil, err
	}
	if comp.Oracle, err = l.Oracle(); err != nil {
		return nil, err
	}
	if comp.Categories, err = l.Categories(); err != nil {
		return nil, err
	}
	if comp.Store, err = l.OpenStore(ctx); err != nil {
		return nil, err
	}
	return comp, nil
}

// Extractor builds the keyword extractor with the default stoplist plus any
// configured terms.
func (l *Loader) Extractor() (*ingest.Extractor, error) {
	cfg := l.config().Extractor

	stops := stoplist.Default()
	for _, w := range cfg.Stopwords {
		stops.Add(w, stoplist.Configured)
	}
	if cfg.StoplistPath != "" {
		sl, err := LoadStoplist(cfg.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		for _, w := range sl.Terms {
			stops.Add(w, stoplist.Configured)
		}
	}

	entities := append([]string(nil), cfg.Entities...)
	if cfg.EntitiesPath != "" {
		extra, err := LoadEntities(cfg.EntitiesPath)
		if err != nil {
			return nil, fmt.Errorf("load entities: %w", err)
		}
		entities = append(entities, extra...)
	}

	return ingest.NewExtractor(ingest.ExtractorOptions{
		Stoplist:        stops,
		Entities:        entities,
		MaxKeywords:     cfg.MaxKeywords,
		DropAdverbs:     cfg.DropAdverbs,
		DropProperNouns: cfg.DropProperNouns,
	}), nil
}

// Oracle loads the word vectors, wrapped in a similarity cache unless
// cache_size is 0.
func (l *Loader) Oracle() (embedding.Oracle, error) {
	cfg := l.config().Embedding
	if cfg.VectorsPath == "" {
		return nil, fmt.Errorf("embedding.vectors_path is required: %w", internalerr.ErrInvalidConfig)
	}

	var (
		vecs *embedding.Vectors
		err  error
	)
	switch strings.ToLower(cfg.Format) {
	case FormatText:
		vecs, err = embedding.LoadTextFile(cfg.VectorsPath)
	case FormatMsgPack, "":
		vecs, err = embedding.LoadMsgPack(cfg.VectorsPath)
	default:
		return nil, fmt.Errorf("embedding.format %q: %w", cfg.Format, internalerr.ErrInvalidConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("load vectors: %w", err)
	}
	l.logger().Info("vectors loaded",
		zap.String("path", cfg.VectorsPath),
		zap.Int("words", vecs.Len()),
		zap.Int("dim", vecs.Dim()))

	if cfg.CacheSize == 0 {
		return vecs, nil
	}
	cached, err := embedding.NewCached(vecs, cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

// Categories reads the note-category table.
func (l *Loader) Categories() (*catalog.Table, error) {
	cfg := l.config().Prediction
	if cfg.CategoriesPath == "" {
		return catalog.NewTable(), nil
	}
	table, report, err := corpus.ReadCategoryTableFile(cfg.CategoriesPath, corpus.Options{
		Encoding: cfg.Encoding,
		Logger:   l.logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	l.logger().Info("categories loaded",
		zap.String("path", cfg.CategoriesPath),
		zap.Int("categories", table.Len()),
		zap.Int("skipped", report.Skipped))
	return table, nil
}

// Records reads the training corpus.
func (l *Loader) Records() ([]corpus.Record, error) {
	cfg := l.config().Training
	if cfg.CorpusPath == "" {
		return nil, fmt.Errorf("training.corpus_path is required: %w", internalerr.ErrInvalidConfig)
	}
	records, report, err := corpus.ReadRecordsFile(cfg.CorpusPath, corpus.Options{
		Encoding: cfg.Encoding,
		Logger:   l.logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	l.logger().Info("corpus loaded",
		zap.String("path", cfg.CorpusPath),
		zap.Int("records", len(records)),
		zap.Int("skipped", report.Skipped))
	return records, nil
}

// OpenStore opens the configured snapshot store.
func (l *Loader) OpenStore(ctx context.Context) (store.Store, error) {
	cfg := l.config().Store
	switch strings.ToLower(cfg.Driver) {
	case DriverSQLite, "":
		return sqlite.OpenSQLite(ctx, cfg.Path)
	case DriverMsgPack:
		st, err := msgpackfile.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("store.driver %q: %w", cfg.Driver, internalerr.ErrInvalidConfig)
	}
}
