package ingest

import (
	"strings"
	"unicode"
)

// Token is a word as it appeared in the text.
type Token struct {
	Text string
	// SentenceStart is set for the first word of the text and for words
	// following '.', '!' or '?'.
	SentenceStart bool
}

// Lower returns the lowercase form of the token.
func (t Token) Lower() string { return strings.ToLower(t.Text) }

// Split breaks text into word tokens. Letters, digits, hyphens and
// apostrophes are word characters; everything else separates words.
func Split(text string) []Token {
	var tokens []Token
	var current strings.Builder
	sentenceStart := true

	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := cleanToken(current.String())
		current.Reset()
		if word == "" {
			return
		}
		tokens = append(tokens, Token{Text: word, SentenceStart: sentenceStart})
		sentenceStart = false
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '\'' {
			current.WriteRune(r)
			continue
		}
		flush()
		switch r {
		case '.', '!', '?':
			sentenceStart = true
		}
	}
	flush()

	return tokens
}

// cleanToken strips leading/trailing hyphens and apostrophes, drops a
// possessive "'s" and normalizes consecutive hyphens
func cleanToken(token string) string {
	token = strings.Trim(token, "-'")
	if strings.HasSuffix(strings.ToLower(token), "'s") {
		token = token[:len(token)-2]
	}
	token = strings.ReplaceAll(token, "'", "")

	for strings.Contains(token, "--") {
		token = strings.ReplaceAll(token, "--", "-")
	}
	return token
}

// truncateHyphen keeps the part before the first hyphen.
func truncateHyphen(word string) string {
	if i := strings.IndexByte(word, '-'); i >= 0 {
		return word[:i]
	}
	return word
}

// isNumericOnly returns true if the token contains only digits and hyphens.
func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}

// hasDigit reports whether s contains any digit.
func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// isCapitalized reports whether the first rune is uppercase.
func isCapitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
