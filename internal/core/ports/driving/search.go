package driving

import (
	"context"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
)

// SearchService answers natural-language clip queries
type SearchService interface {
	// Search runs the full retrieval pipeline for one query.
	// Only clip store failures are returned as errors; oracle failures
	// degrade to fallback behaviour.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResult, error)
}
