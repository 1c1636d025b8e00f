package ingest

import (
	"sort"
	"strings"

	"github.com/cognicore/olfactory/pkg/olfactory/stoplist"
)

// DefaultMaxKeywords caps the keywords returned per text.
const DefaultMaxKeywords = 15

// KeywordExtractor turns free text into salient, lowercase keywords ranked
// by frequency.
type KeywordExtractor interface {
	ExtractKeywords(text string) []string
}

// ExtractorOptions configures an Extractor.
type ExtractorOptions struct {
	Stoplist    *stoplist.Manager // nil uses stoplist.Default()
	Entities    []string          // gazetteer phrases to drop
	MaxKeywords int               // <= 0 uses DefaultMaxKeywords
	// DropAdverbs drops words ending in "ly".
	DropAdverbs bool
	// DropProperNouns drops capitalized words that do not start a sentence.
	DropProperNouns bool
}

// Extractor is the rule-based KeywordExtractor.
type Extractor struct {
	stops       *stoplist.Manager
	entities    *entityMatcher
	maxKeywords int
	dropAdverbs bool
	dropProper  bool
}

var _ KeywordExtractor = (*Extractor)(nil)

// NewExtractor creates an extractor from options.
func NewExtractor(opts ExtractorOptions) *Extractor {
	stops := opts.Stoplist
	if stops == nil {
		stops = stoplist.Default()
	}
	limit := opts.MaxKeywords
	if limit <= 0 {
		limit = DefaultMaxKeywords
	}
	entities := make([]string, 0, len(opts.Entities)+len(DateWords))
	entities = append(entities, opts.Entities...)
	entities = append(entities, DateWords...)

	return &Extractor{
		stops:       stops,
		entities:    newEntityMatcher(entities),
		maxKeywords: limit,
		dropAdverbs: opts.DropAdverbs,
		dropProper:  opts.DropProperNouns,
	}
}

// ExtractKeywords implements KeywordExtractor.
func (e *Extractor) ExtractKeywords(text string) []string {
	text = Normalize(StripMarkup(text))
	if text == "" {
		return nil
	}

	tokens := Split(text)
	isEntity := e.entities.mark(tokens)

	counts := make(map[string]int)
	var order []string
	for i, tok := range tokens {
		if isEntity[i] {
			continue
		}
		word, ok := e.keep(tok)
		if !ok {
			continue
		}
		if _, seen := counts[word]; !seen {
			order = append(order, word)
		}
		counts[word]++
	}

	// Stable sort keeps first occurrence order among equal counts.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > e.maxKeywords {
		order = order[:e.maxKeywords]
	}
	return order
}

// keep applies the per-token filters and returns the keyword form.
func (e *Extractor) keep(tok Token) (string, bool) {
	if len([]rune(tok.Text)) <= 1 {
		return "", false
	}
	if isNumericOnly(tok.Text) || hasDigit(tok.Text) {
		return "", false
	}
	if e.dropProper && !tok.SentenceStart && isCapitalized(tok.Text) {
		return "", false
	}

	lower := tok.Lower()
	if e.stops.IsStop(lower) {
		return "", false
	}
	if e.dropAdverbs && len(lower) > 4 && strings.HasSuffix(lower, "ly") {
		return "", false
	}

	// The stoplist sees the whole token; "scent-free" keeps "scent".
	word := truncateHyphen(lower)
	if len([]rune(word)) <= 1 {
		return "", false
	}
	return word, true
}
