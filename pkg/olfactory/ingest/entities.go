package ingest

import "strings"

// DateWords are always treated as DATE entities.
var DateWords = []string{
	"january", "february", "march", "april", "may", "june", "july", "august",
	"september", "october", "november", "december",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// entityMatcher recognizes gazetteer phrases (people, places, brands) with
// greedy longest match.
type entityMatcher struct {
	phrases map[string]struct{}
	maxLen  int
}

func newEntityMatcher(phrases []string) *entityMatcher {
	m := &entityMatcher{phrases: make(map[string]struct{}), maxLen: 1}
	for _, p := range phrases {
		key := strings.ToLower(strings.Join(strings.Fields(p), " "))
		if key == "" {
			continue
		}
		m.phrases[key] = struct{}{}
		if l := len(strings.Fields(key)); l > m.maxLen {
			m.maxLen = l
		}
	}
	return m
}

// mark returns, for each token, whether it is part of an entity phrase.
func (m *entityMatcher) mark(tokens []Token) []bool {
	marked := make([]bool, len(tokens))
	if len(m.phrases) == 0 {
		return marked
	}

	i := 0
	for i < len(tokens) {
		maxPhrase := m.maxLen
		if remaining := len(tokens) - i; maxPhrase > remaining {
			maxPhrase = remaining
		}
		matchLen := 0
		for n := maxPhrase; n >= 1; n-- {
			words := make([]string, n)
			for j := 0; j < n; j++ {
				words[j] = tokens[i+j].Lower()
			}
			if _, ok := m.phrases[strings.Join(words, " ")]; ok {
				matchLen = n
				break
			}
		}
		if matchLen == 0 {
			i++
			continue
		}
		for j := 0; j < matchLen; j++ {
			marked[i+j] = true
		}
		i += matchLen
	}
	return marked
}
