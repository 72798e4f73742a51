package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
)

// SemanticOracle is the language-model service used for query
// understanding and relevance scoring.
type SemanticOracle interface {
	// ExtractTerms turns a free-text query into structured search terms.
	// Relative time phrases are resolved against anchor.
	// Unparseable model output is reported as domain.ErrExtractionFailed.
	ExtractTerms(ctx context.Context, query string, anchor time.Time) (*domain.ExtractedTerms, error)

	// RankCandidates scores each candidate against the query and returns
	// scores >= threshold sorted descending.
	// Unparseable model output is reported as domain.ErrRankingFailed.
	RankCandidates(ctx context.Context, query string, candidates []domain.ScoreCandidate, threshold float64) ([]domain.CandidateScore, error)

	// Model returns the model name being used
	Model() string

	// Close releases resources held by the oracle
	Close() error
}
