package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
	"github.com/custodia-labs/clipsearch/internal/core/ports/driven"
	"github.com/custodia-labs/clipsearch/internal/core/ports/driving"
)

// Ensure searchService implements SearchService
var _ driving.SearchService = (*searchService)(nil)

// SearchServiceConfig holds dependencies for the search service
type SearchServiceConfig struct {
	Store    driven.ClipStore
	Oracle   driven.SemanticOracle // optional, nil means naive extraction and no ranking
	Settings domain.SearchSettings
	Logger   *slog.Logger
	Now      func() time.Time // anchor clock, defaults to time.Now
	Location *time.Location   // zone the store reads calendar dates in; nil keeps the clock's zone
}

// searchService implements the SearchService interface
type searchService struct {
	understanding *QueryUnderstanding
	resolver      *TemporalResolver
	generator     *CandidateGenerator
	ranker        *Ranker
	settings      domain.SearchSettings
	logger        *slog.Logger
	now           func() time.Time
	loc           *time.Location
}

// NewSearchService creates a new SearchService
func NewSearchService(cfg SearchServiceConfig) driving.SearchService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	settings := cfg.Settings.WithDefaults()

	return &searchService{
		understanding: NewQueryUnderstanding(cfg.Oracle, logger),
		resolver:      NewTemporalResolver(logger),
		generator:     NewCandidateGenerator(cfg.Store, settings, logger),
		ranker:        NewRanker(cfg.Oracle, settings, logger),
		settings:      settings,
		logger:        logger,
		now:           now,
		loc:           cfg.Location,
	}
}

// anchor is the current time in the store's zone, so relative days
// resolve to the same calendar dates the store reads.
func (s *searchService) anchor() time.Time {
	now := s.now()
	if s.loc != nil {
		now = now.In(s.loc)
	}
	return now
}

// Search runs the full pipeline for one query: term extraction, time
// resolution, tiered retrieval, domain filtering, ranking and enrichment.
func (s *searchService) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResult, error) {
	start := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if !opts.Mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown search mode %q", domain.ErrInvalidInput, opts.Mode)
	}

	anchor := s.anchor()
	terms := s.understanding.Extract(ctx, query, anchor)
	window := s.resolver.Resolve(terms.TimeReference, anchor)

	outcome, err := s.generator.Generate(ctx, RetrievalQuery{
		Text:     query,
		Terms:    terms,
		Keywords: terms.SearchKeywords(),
		Window:   window,
		Anchor:   anchor,
	})
	if err != nil {
		return nil, err
	}

	mode := ClassifyDomain(query, opts.Mode)
	result := &domain.SearchResult{
		Query:  query,
		Mode:   mode,
		Tier:   outcome.Tier,
		Window: window,
	}

	// The latest path is answered as-is: no domain filter, ranking or enrichment
	if outcome.Tier == domain.TierLatest {
		result.Results = scoreAll(outcome.Candidates, outcome.DefaultScore)
		return s.finish(result, start), nil
	}

	candidates := outcome.Candidates
	switch mode {
	case domain.SearchModePCB:
		candidates = FilterPCB(candidates)
	case domain.SearchModeManufacturing:
		candidates = FilterZone(candidates, InferZone(query))
	}

	if outcome.Bypass() {
		result.Results = scoreAll(candidates, outcome.DefaultScore)
	} else {
		result.Results = s.ranker.Rank(ctx, annotateQuery(query, mode, window), candidates)
	}

	if mode == domain.SearchModeManufacturing {
		result.Results = EnrichResults(query, result.Results)
		if opts.CameraFilter != "" {
			result.Results = filterCamera(result.Results, opts.CameraFilter)
		}
	}

	return s.finish(result, start), nil
}

func (s *searchService) finish(result *domain.SearchResult, start time.Time) *domain.SearchResult {
	if len(result.Results) > s.settings.MaxResults {
		result.Results = result.Results[:s.settings.MaxResults]
	}
	if result.Results == nil {
		result.Results = []*domain.RankedResult{}
	}
	result.TotalCount = len(result.Results)
	result.Took = time.Since(start)

	s.logger.Info("search completed",
		"query", result.Query,
		"mode", result.Mode,
		"tier", result.Tier,
		"window", result.Window.String(),
		"results", result.TotalCount,
		"took", result.Took,
	)
	return result
}

// scoreAll assigns one fixed score to every candidate, keeping set order
func scoreAll(set *domain.CandidateSet, score float64) []*domain.RankedResult {
	if set == nil {
		return nil
	}
	clips := set.Clips()
	results := make([]*domain.RankedResult, 0, len(clips))
	for _, c := range clips {
		results = append(results, &domain.RankedResult{Clip: *c, RelevanceScore: score})
	}
	return results
}

func filterCamera(results []*domain.RankedResult, camera string) []*domain.RankedResult {
	out := make([]*domain.RankedResult, 0, len(results))
	for _, r := range results {
		if strings.EqualFold(r.Clip.CameraID, camera) {
			out = append(out, r)
		}
	}
	return out
}
