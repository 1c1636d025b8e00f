// Package predict resolves free text into top, middle and base notes using
// a trained mapping.
package predict

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/olfactory/pkg/olfactory/catalog"
	"github.com/cognicore/olfactory/pkg/olfactory/embedding"
	"github.com/cognicore/olfactory/pkg/olfactory/ingest"
	"github.com/cognicore/olfactory/pkg/olfactory/internalerr"
	"github.com/cognicore/olfactory/pkg/olfactory/mapping"
)

// DefaultNumRandomNotes is how many notes a category expands to.
const DefaultNumRandomNotes = 3

// Result holds the bucketed notes for one prediction.
type Result struct {
	Top      []string
	Middle   []string
	Base     []string
	Keywords []string
	// Aborted is set when a category with no notes stopped the run early.
	Aborted bool
}

// Format renders the result as shown to users.
func (r Result) Format() string {
	return fmt.Sprintf("Top notes for you: %s\n\nMiddle notes for you: %s\n\nBase notes for you: %s",
		formatList(r.Top), formatList(r.Middle), formatList(r.Base))
}

func formatList(notes []string) string {
	quoted := make([]string, len(notes))
	for i, n := range notes {
		quoted[i] = "'" + n + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// Options configures a Resolver.
type Options struct {
	Store      *mapping.Store
	Categories *catalog.Table
	Oracle     embedding.Oracle
	Extractor  ingest.KeywordExtractor
	Sampler    Sampler // nil uses TimeSeeded
	Logger     *zap.Logger
}

// Resolver predicts notes from text. The store and table are only read, so
// a Resolver can serve concurrent callers.
type Resolver struct {
	store     *mapping.Store
	table     *catalog.Table
	oracle    embedding.Oracle
	extractor ingest.KeywordExtractor
	sampler   Sampler
	log       *zap.Logger
}

// New validates options and returns a Resolver.
func New(opts Options) (*Resolver, error) {
	switch {
	case opts.Store == nil:
		return nil, fmt.Errorf("predict: mapping store is required: %w", internalerr.ErrInvalidConfig)
	case opts.Categories == nil:
		return nil, fmt.Errorf("predict: category table is required: %w", internalerr.ErrInvalidConfig)
	case opts.Oracle == nil:
		return nil, fmt.Errorf("predict: oracle is required: %w", internalerr.ErrInvalidConfig)
	case opts.Extractor == nil:
		return nil, fmt.Errorf("predict: extractor is required: %w", internalerr.ErrInvalidConfig)
	}
	sampler := opts.Sampler
	if sampler == nil {
		sampler = TimeSeeded()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		store:     opts.Store,
		table:     opts.Categories,
		oracle:    opts.Oracle,
		extractor: opts.Extractor,
		sampler:   sampler,
		log:       log,
	}, nil
}

// WithSampler returns a copy of r drawing category notes from s.
func (r *Resolver) WithSampler(s Sampler) *Resolver {
	cp := *r
	cp.sampler = s
	return &cp
}

// Predict extracts keywords from text and buckets their notes. When a
// category has no notes the partial result is returned together with an
// error wrapping internalerr.ErrCategoryExpansionEmpty.
func (r *Resolver) Predict(ctx context.Context, text string, numRandomNotes int) (Result, error) {
	if numRandomNotes < 1 {
		return Result{}, fmt.Errorf("num random notes %d: %w", numRandomNotes, internalerr.ErrInvalidInput)
	}

	keywords := r.extractor.ExtractKeywords(text)
	res := Result{Keywords: keywords}
	entries := r.store.Entries()

	for _, k := range keywords {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		entry, ok := r.lookup(k, entries)
		if !ok {
			r.log.Debug("keyword unresolved", zap.String("keyword", k))
			continue
		}

		if entry.Volatility == mapping.Exact {
			res.addBase(entry.Note)
			continue
		}

		if !catalog.IsCategory(entry.Note) {
			res.addMiddle(entry.Note)
			continue
		}

		candidates := r.table.Notes(entry.Note)
		if len(candidates) == 0 {
			res.Aborted = true
			r.log.Warn("category has no notes",
				zap.String("keyword", k),
				zap.String("category", entry.Note))
			return res, fmt.Errorf("category %q: %w", entry.Note, internalerr.ErrCategoryExpansionEmpty)
		}
		chosen := r.sampler.Sample(candidates, numRandomNotes)

		for _, n := range chosen {
			if entry.Volatility == mapping.Specific {
				res.addMiddle(n)
			} else {
				res.addTop(n)
			}
		}
	}

	r.log.Debug("prediction complete",
		zap.Int("keywords", len(keywords)),
		zap.Int("top", len(res.Top)),
		zap.Int("middle", len(res.Middle)),
		zap.Int("base", len(res.Base)))
	return res, nil
}

// lookup returns the entry for k, falling back to the most similar known
// token. Only similarities strictly above zero count and ties keep the
// earliest entry.
func (r *Resolver) lookup(k string, entries []mapping.Entry) (mapping.Entry, bool) {
	if e, ok := r.store.Get(k); ok {
		return e, true
	}
	var best mapping.Entry
	maxSim, found := 0.0, false
	for _, e := range entries {
		sim, ok := r.oracle.Similarity(k, e.Token)
		if ok && sim > maxSim {
			maxSim, best, found = sim, e, true
		}
	}
	return best, found
}

// addBase, addMiddle and addTop keep the buckets disjoint whatever the
// keyword order: a note lives in the lowest tier it was routed to, so base
// beats middle and middle beats top.
func (res *Result) addBase(note string) {
	res.Middle = remove(res.Middle, note)
	res.Top = remove(res.Top, note)
	if !contains(res.Base, note) {
		res.Base = append(res.Base, note)
	}
}

func (res *Result) addMiddle(note string) {
	if contains(res.Base, note) || contains(res.Middle, note) {
		return
	}
	res.Top = remove(res.Top, note)
	res.Middle = append(res.Middle, note)
}

func (res *Result) addTop(note string) {
	if contains(res.Base, note) || contains(res.Middle, note) || contains(res.Top, note) {
		return
	}
	res.Top = append(res.Top, note)
}

func remove(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
