package catalog

import (
	"strings"
	"unicode"
)

// Categories are the fixed note categories, in scan order.
var Categories = []string{
	"CITRUS SMELLS",
	"FRUITS VEGETABLES AND NUTS",
	"FLOWERS",
	"WHITE FLOWERS",
	"GREENS HERBS AND FOUGERES",
	"SPICES",
	"SWEETS AND GOURMAND SMELLS",
	"WOODS AND MOSSES",
	"RESINS AND BALSAMS",
	"MUSK AMBER ANIMALIC SMELLS",
	"BEVERAGES",
	"NATURAL AND SYNTHETIC POPULAR AND WEIRD",
}

// IsCategory reports whether a predicted class names a category rather than
// a concrete note: it has at least one cased letter and no lowercase ones.
func IsCategory(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

// CanonicalCategory maps a category label as written in source files to the
// fixed form: trimmed, uppercase, commas dropped, single spaces.
func CanonicalCategory(label string) string {
	label = strings.ReplaceAll(label, ",", " ")
	return strings.ToUpper(strings.Join(strings.Fields(label), " "))
}

// IsKnown reports whether label is one of the fixed categories.
func IsKnown(label string) bool {
	for _, c := range Categories {
		if c == label {
			return true
		}
	}
	return false
}

// Table maps a category to its concrete notes. It is read-only once built.
type Table struct {
	notes map[string][]string
	seen  map[string]map[string]struct{}
}

// NewTable creates an empty category table.
func NewTable() *Table {
	return &Table{
		notes: make(map[string][]string),
		seen:  make(map[string]map[string]struct{}),
	}
}

// Add registers a note under a category. Duplicate pairs are ignored.
func (t *Table) Add(category, note string) {
	category = CanonicalCategory(category)
	note = strings.TrimSpace(note)
	if category == "" || note == "" {
		return
	}
	if t.seen[category] == nil {
		t.seen[category] = make(map[string]struct{})
	}
	if _, ok := t.seen[category][note]; ok {
		return
	}
	t.seen[category][note] = struct{}{}
	t.notes[category] = append(t.notes[category], note)
}

// Notes returns a copy of the notes registered under category.
func (t *Table) Notes(category string) []string {
	src := t.notes[category]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Len returns the number of categories with at least one note.
func (t *Table) Len() int {
	return len(t.notes)
}

// All returns every category with its notes.
func (t *Table) All() map[string][]string {
	out := make(map[string][]string, len(t.notes))
	for cat := range t.notes {
		out[cat] = t.Notes(cat)
	}
	return out
}
