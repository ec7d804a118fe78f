package providers

import "errors"

// Every provider failure wraps one of these sentinels so callers can match
// with errors.Is regardless of the detail text.
var (
	ErrMissingVariable    = errors.New("missing variable")
	ErrFetchFailed        = errors.New("fetch failed")
	ErrNoMatch            = errors.New("no match")
	ErrNotFound           = errors.New("not found")
	ErrAmbiguousMatch     = errors.New("ambiguous match")
	ErrSignatureInvalid   = errors.New("signature invalid")
	ErrSignatureAbsent    = errors.New("signature absent")
	ErrFieldMissing       = errors.New("field missing")
	ErrUnreadableMetadata = errors.New("unreadable metadata")
	ErrIOFailure          = errors.New("io failure")
)
