package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrStoreFailure", ErrStoreFailure, "clip store failure"},
		{"ErrExtractionFailed", ErrExtractionFailed, "term extraction failed"},
		{"ErrRankingFailed", ErrRankingFailed, "ranking failed"},
		{"ErrMalformedTimeReference", ErrMalformedTimeReference, "malformed time reference"},
		{"ErrInvalidProvider", ErrInvalidProvider, "invalid provider"},
		{"ErrServiceUnavailable", ErrServiceUnavailable, "service unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrStoreFailure,
		ErrExtractionFailed,
		ErrRankingFailed,
		ErrMalformedTimeReference,
		ErrInvalidProvider,
		ErrServiceUnavailable,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestErrorsIs(t *testing.T) {
	wrapped := fmt.Errorf("%w: keyword %q: %w", ErrStoreFailure, "car", errors.New("connection reset"))
	if !errors.Is(wrapped, ErrStoreFailure) {
		t.Error("wrapped error should match ErrStoreFailure")
	}

	if errors.Is(wrapped, ErrRankingFailed) {
		t.Error("ErrStoreFailure should not match ErrRankingFailed")
	}
}
