package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrMalformedRow     = errors.New("malformed row")
	ErrInvalidUserText  = errors.New("text may only contain letters, whitespace and periods")

	// ErrCategoryExpansionEmpty aborts a prediction run: a category resolved
	// to no concrete notes in the category table.
	ErrCategoryExpansionEmpty = errors.New("category has no notes")
)
