package stoplist

import (
	"sort"
	"strings"
)

// Manager holds the stopword set used by keyword extraction
type Manager struct {
	stops map[string]Reason
}

// Reason explains why a token is a stopword
type Reason int

const (
	// Configured stopwords come from the caller or a config file.
	Configured Reason = iota
	// English is the built-in function-word list.
	English
	// Domain words are too generic in scent descriptions to carry a note.
	Domain
)

// DomainWords are ignored in every description.
var DomainWords = []string{"like", "note", "notes", "scent", "scents", "fragrance", "perfume", "le"}

// NewManager creates a stoplist manager with the given stopwords
func NewManager(initialStops []string) *Manager {
	m := &Manager{stops: make(map[string]Reason, len(initialStops))}
	for _, s := range initialStops {
		m.Add(s, Configured)
	}
	return m
}

// Default returns a manager seeded with the English and domain lists.
func Default() *Manager {
	m := NewManager(nil)
	for _, s := range englishStopwords {
		m.Add(s, English)
	}
	for _, s := range DomainWords {
		m.Add(s, Domain)
	}
	return m
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[strings.ToLower(token)]
	return ok
}

// Why returns the reason token was added.
func (m *Manager) Why(token string) (Reason, bool) {
	r, ok := m.stops[strings.ToLower(token)]
	return r, ok
}

// Add adds a token to the stoplist with a reason
func (m *Manager) Add(token string, reason Reason) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return
	}
	m.stops[token] = reason
}

// Remove removes a token from the stoplist
func (m *Manager) Remove(token string) {
	delete(m.stops, strings.ToLower(token))
}

// All returns all stopwords, sorted
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Len returns the number of stopwords.
func (m *Manager) Len() int { return len(m.stops) }

var englishStopwords = strings.Fields(`
a about above across after afterwards again against all almost alone along already also although
always am among amongst amount an and another any anyhow anyone anything anyway anywhere are around
as at back be became because become becomes becoming been before beforehand behind being below beside
besides between beyond both bottom but by ca call can cannot could did do does doing done down due
during each eight either eleven else elsewhere empty enough even ever every everyone everything
everywhere except few fifteen fifty first five for former formerly forty four from front full further
get give go had has have he hence her here hereafter hereby herein hereupon hers herself him himself
his how however hundred i if in indeed into is it its itself just keep last latter latterly least less
made make many may me meanwhile might mine more moreover most mostly move much must my myself name
namely neither never nevertheless next nine no nobody none noone nor not nothing now nowhere of off
often on once one only onto or other others otherwise our ours ourselves out over own part per perhaps
please put quite rather re really regarding same say see seem seemed seeming seems serious several she
should show side since six sixty so some somehow someone something sometime sometimes somewhere still
such take ten than that the their them themselves then thence there thereafter thereby therefore
therein thereupon these they third this those though three through throughout thru thus to together
too top toward towards twelve twenty two under unless until up upon us used using various very via was
we well were what whatever when whence whenever where whereafter whereas whereby wherein whereupon
wherever whether which while whither who whoever whole whom whose why will with within without would
yet you your yours yourself yourselves
`)
