package mapping

import (
	"fmt"
	"sync"

	"github.com/cognicore/olfactory/pkg/olfactory/internalerr"
)

// Volatility is the confidence tier of a token mapping. Lower is stronger.
type Volatility int

const (
	// Exact: the token literally occurs in the note name.
	Exact Volatility = 0
	// Specific: the token maps to one note via similarity, or to a category
	// whose label contains the token.
	Specific Volatility = 1
	// Category: the token maps to a broad category only and needs expansion
	// at prediction time.
	Category Volatility = 2
)

func (v Volatility) String() string {
	switch v {
	case Exact:
		return "exact"
	case Specific:
		return "specific"
	case Category:
		return "category"
	default:
		return fmt.Sprintf("volatility(%d)", int(v))
	}
}

// Entry is a single token → note mapping.
type Entry struct {
	Token      string
	Note       string
	Volatility Volatility
}

// Store holds at most one Entry per token, in insertion order.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
	index   map[string]int
}

// New creates an empty mapping store.
func New() *Store {
	return &Store{index: make(map[string]int)}
}

// Add inserts a mapping, or replaces the stored one when v is strictly lower
// than the stored volatility. An empty note is ignored. It reports whether
// the store changed.
func (s *Store) Add(token, note string, v Volatility) bool {
	if token == "" || note == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[token]; ok {
		if v < s.entries[i].Volatility {
			s.entries[i].Note = note
			s.entries[i].Volatility = v
			return true
		}
		return false
	}
	s.index[token] = len(s.entries)
	s.entries = append(s.entries, Entry{Token: token, Note: note, Volatility: v})
	return true
}

// Get returns the mapping for token, if any.
func (s *Store) Get(token string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.index[token]; ok {
		return s.entries[i], true
	}
	return Entry{}, false
}

// NoteForToken returns the note mapped to token. Unlike Get it fails with
// internalerr.ErrNotFound when the token is unknown.
func (s *Store) NoteForToken(token string) (string, error) {
	e, ok := s.Get(token)
	if !ok {
		return "", fmt.Errorf("token %q: %w", token, internalerr.ErrNotFound)
	}
	return e.Note, nil
}

// Volatility returns the volatility mapped to token.
func (s *Store) Volatility(token string) (Volatility, bool) {
	e, ok := s.Get(token)
	return e.Volatility, ok
}

// Len returns the number of mapped tokens.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns a copy of all mappings in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Restore builds a store from persisted entries. Entries go through Add, so
// duplicate tokens collapse to the lowest volatility.
func Restore(entries []Entry) *Store {
	s := New()
	for _, e := range entries {
		s.Add(e.Token, e.Note, e.Volatility)
	}
	return s
}
