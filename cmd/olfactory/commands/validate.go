package commands

import (
	"regexp"

	"github.com/cognicore/olfactory/pkg/olfactory/internalerr"
)

var disallowedText = regexp.MustCompile(`[^a-zA-Z\s.]`)

// validateUserText rejects anything other than letters, whitespace and
// periods before it reaches the resolver.
func validateUserText(text string) error {
	if disallowedText.MatchString(text) {
		return internalerr.ErrInvalidUserText
	}
	return nil
}

const invalidTextMessage = "Please describe your memory in words! (No digits or symbols)"
