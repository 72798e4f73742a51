package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
	"github.com/custodia-labs/clipsearch/internal/core/ports/driven"
)

// Ranker scores candidates with the semantic oracle
type Ranker struct {
	oracle   driven.SemanticOracle
	settings domain.SearchSettings
	logger   *slog.Logger
}

// NewRanker creates a Ranker
func NewRanker(oracle driven.SemanticOracle, settings domain.SearchSettings, logger *slog.Logger) *Ranker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ranker{oracle: oracle, settings: settings.WithDefaults(), logger: logger}
}

// Rank scores at most RankCandidateCap candidates (in insertion order; the
// rest are never considered), keeps scores at or above the threshold and
// returns them sorted descending, truncated to MaxResults.
// Oracle failures yield an empty list.
func (r *Ranker) Rank(ctx context.Context, query string, set *domain.CandidateSet) []*domain.RankedResult {
	if set == nil || set.Len() == 0 {
		return nil
	}
	if r.oracle == nil {
		r.logger.Warn("no semantic oracle configured, ranking skipped")
		return nil
	}

	clips := set.Clips()
	if len(clips) > r.settings.RankCandidateCap {
		r.logger.Debug("candidate cap reached",
			"candidates", len(clips),
			"cap", r.settings.RankCandidateCap,
		)
		clips = clips[:r.settings.RankCandidateCap]
	}

	candidates := make([]domain.ScoreCandidate, len(clips))
	for i, c := range clips {
		candidates[i] = domain.ScoreCandidate{ID: c.ID, Description: c.Description}
	}

	scores, err := r.oracle.RankCandidates(ctx, query, candidates, r.settings.RelevanceThreshold)
	if err != nil {
		r.logger.Warn("ranking failed, returning no results",
			"candidates", len(candidates),
			"error", err,
		)
		return nil
	}

	considered := domain.NewCandidateSet()
	considered.AddAll(clips)

	seen := make(map[string]bool, len(scores))
	results := make([]*domain.RankedResult, 0, len(scores))
	for _, s := range scores {
		clip, ok := considered.Get(s.ID)
		if !ok || seen[s.ID] {
			continue
		}
		score := min(max(s.Score, 0), 1)
		if score < r.settings.RelevanceThreshold {
			continue
		}
		seen[s.ID] = true
		results = append(results, &domain.RankedResult{Clip: *clip, RelevanceScore: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > r.settings.MaxResults {
		results = results[:r.settings.MaxResults]
	}
	return results
}

// annotateQuery adds the domain prefix and time-window note sent to the oracle
func annotateQuery(query string, mode domain.SearchMode, window domain.TimeConstraint) string {
	switch mode {
	case domain.SearchModePCB:
		query = "PCB inspection: " + query
	case domain.SearchModeManufacturing:
		query = "Manufacturing monitoring: " + query
	}
	if !window.IsEmpty() {
		query = fmt.Sprintf("%s (time window: %s)", query, window)
	}
	return query
}
