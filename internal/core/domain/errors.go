package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreFailure indicates the clip store could not serve a read.
	// It is the only failure surfaced to search callers.
	ErrStoreFailure = errors.New("clip store failure")

	// ErrExtractionFailed indicates the oracle could not produce search terms.
	// Recovered by the naive tokenizer.
	ErrExtractionFailed = errors.New("term extraction failed")

	// ErrRankingFailed indicates the oracle could not score candidates.
	// Recovered by returning an empty ranked list.
	ErrRankingFailed = errors.New("ranking failed")

	// ErrMalformedTimeReference indicates an unparseable date or time fragment
	ErrMalformedTimeReference = errors.New("malformed time reference")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
