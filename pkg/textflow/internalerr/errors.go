package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")

	// ErrPreconditionFailed is returned when a stage is entered without a
	// dataset of an allowed type.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrVocabularyMismatch is returned when a matrix is requested against a
	// vocabulary built from a different corpus.
	ErrVocabularyMismatch = errors.New("vocabulary mismatch")

	// ErrExternalService wraps failures reported by remote processing services.
	ErrExternalService = errors.New("external service failure")
)
