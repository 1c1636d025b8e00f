// Package train learns token to note mappings from a labeled corpus.
package train

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
	"github.com/cognicore/olfactory/pkg/olfactory/mapping"
)

// DefaultSimilarityThreshold is the similarity a note must reach before it
// beats an exact category label.
const DefaultSimilarityThreshold = 0.8

// Options configures a Resolver.
type Options struct {
	Oracle              embedding.Oracle
	Extractor           ingest.KeywordExtractor
	SimilarityThreshold float64 // 0 uses DefaultSimilarityThreshold
	Categories          []string
	Logger              *zap.Logger
}

// Stats summarizes a training run.
type Stats struct {
	RecordsSeen    int
	RecordsSkipped int
	KeywordsSeen   int
	// Commits counts store changes per volatility. Updates the store
	// rejects because it already holds an equal or lower volatility are not
	// counted.
	Commits map[mapping.Volatility]int
}

// Resolver decides which note (or category) each corpus keyword maps to.
type Resolver struct {
	oracle     embedding.Oracle
	extractor  ingest.KeywordExtractor
	threshold  float64
	categories []string
	log        *zap.Logger
}

// New validates options and returns a Resolver.
func New(opts Options) (*Resolver, error) {
	if opts.Oracle == nil {
		return nil, fmt.Errorf("train: oracle is required: %w", internalerr.ErrInvalidConfig)
	}
	if opts.Extractor == nil {
		return nil, fmt.Errorf("train: extractor is required: %w", internalerr.ErrInvalidConfig)
	}
	threshold := opts.SimilarityThreshold
	if threshold == 0 {
		threshold = DefaultSimilarityThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("train: similarity threshold %v outside (0,1]: %w", threshold, internalerr.ErrInvalidConfig)
	}
	cats := opts.Categories
	if len(cats) == 0 {
		cats = catalog.Categories
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		oracle:     opts.Oracle,
		extractor:  opts.Extractor,
		threshold:  threshold,
		categories: append([]string(nil), cats...),
		log:        log,
	}, nil
}

// Threshold returns the similarity threshold in use.
func (r *Resolver) Threshold() float64 { return r.threshold }

// Resolve builds a fresh mapping store from records.
func (r *Resolver) Resolve(ctx context.Context, records []corpus.Record) (*mapping.Store, Stats, error) {
	store := mapping.New()
	stats := Stats{Commits: make(map[mapping.Volatility]int)}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return store, stats, err
		}
		stats.RecordsSeen++

		notes := lowerNotes(rec.Notes)
		if strings.TrimSpace(rec.Description) == "" || len(notes) == 0 {
			stats.RecordsSkipped++
			r.log.Debug("skipping record", zap.Int("record", i))
			continue
		}

		keywords := r.extractor.ExtractKeywords(rec.Description)
		resolved := make(map[string]struct{}, len(keywords))
		committed := 0
		for _, k := range keywords {
			if err := ctx.Err(); err != nil {
				return store, stats, err
			}
			if _, done := resolved[k]; done {
				continue
			}
			stats.KeywordsSeen++

			note, v := r.resolveKeyword(k, notes)
			if note == "" {
				continue
			}
			if v != mapping.Category {
				resolved[k] = struct{}{}
			}
			if store.Add(k, note, v) {
				stats.Commits[v]++
				committed++
			}
		}

		r.log.Debug("record resolved",
			zap.Int("record", i),
			zap.Int("keywords", len(keywords)),
			zap.Int("commits", committed))
	}

	r.log.Info("training complete",
		zap.Int("records", stats.RecordsSeen),
		zap.Int("skipped", stats.RecordsSkipped),
		zap.Int("keywords", stats.KeywordsSeen),
		zap.Int("tokens", store.Len()))
	return store, stats, nil
}

// resolveKeyword returns the note or category label for keyword k given the
// lowercased notes of its record.
func (r *Resolver) resolveKeyword(k string, notes []string) (string, mapping.Volatility) {
	for _, n := range notes {
		if strings.Contains(n, k) {
			return n, mapping.Exact
		}
	}

	maxSim, bestNote := 0.0, ""
	for _, n := range notes {
		sim, ok := r.oracle.Similarity(k, n)
		if ok && sim > maxSim {
			maxSim, bestNote = sim, n
		}
	}
	// A perfect similarity without containment settles nothing.
	if maxSim >= 1 {
		return "", mapping.Specific
	}

	upper := strings.ToUpper(k)
	exactCategory := ""
	for _, c := range r.categories {
		if strings.Contains(c, upper) {
			exactCategory = c
		}
	}

	maxCatSim, bestCategory := 0.0, ""
	for _, c := range r.categories {
		sim, ok := r.oracle.Similarity(k, strings.ToLower(c))
		if !ok {
			continue
		}
		if sim == 1 {
			maxCatSim, bestCategory = sim, c
			break
		}
		if sim > maxCatSim {
			maxCatSim, bestCategory = sim, c
		}
	}

	switch {
	case exactCategory != "" && maxSim < r.threshold:
		return exactCategory, mapping.Specific
	case maxSim >= maxCatSim:
		return bestNote, mapping.Specific
	default:
		return bestCategory, mapping.Category
	}
}

func lowerNotes(notes []string) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
