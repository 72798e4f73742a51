package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
	"github.com/custodia-labs/clipsearch/internal/core/ports/driven"
)

// QueryUnderstanding turns raw query text into ExtractedTerms
type QueryUnderstanding struct {
	oracle driven.SemanticOracle
	logger *slog.Logger
}

// NewQueryUnderstanding creates a QueryUnderstanding. A nil oracle means
// every query is tokenized naively.
func NewQueryUnderstanding(oracle driven.SemanticOracle, logger *slog.Logger) *QueryUnderstanding {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryUnderstanding{oracle: oracle, logger: logger}
}

// Extract asks the oracle for structured terms and falls back to the naive
// tokenizer when the oracle is missing, fails or returns nothing usable.
// It never fails.
func (u *QueryUnderstanding) Extract(ctx context.Context, query string, anchor time.Time) *domain.ExtractedTerms {
	if u.oracle == nil {
		return domain.NaiveTerms(query)
	}

	terms, err := u.oracle.ExtractTerms(ctx, query, anchor)
	if err != nil {
		u.logger.Warn("term extraction failed, using naive tokenizer",
			"query", query,
			"error", err,
		)
		return domain.NaiveTerms(query)
	}
	if terms == nil {
		return domain.NaiveTerms(query)
	}

	terms.Normalize()
	if len(terms.SearchKeywords()) == 0 && terms.TimeReference.IsEmpty() {
		u.logger.Debug("oracle returned no terms, using naive tokenizer", "query", query)
		return domain.NaiveTerms(query)
	}
	return terms
}
