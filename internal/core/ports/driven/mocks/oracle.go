package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
)

// MockSemanticOracle is a scriptable SemanticOracle for testing.
// Without overrides it tokenizes queries naively and scores every candidate 1.0.
type MockSemanticOracle struct {
	mu sync.Mutex

	ExtractFn func(ctx context.Context, query string, anchor time.Time) (*domain.ExtractedTerms, error)
	RankFn    func(ctx context.Context, query string, candidates []domain.ScoreCandidate) ([]domain.CandidateScore, error)

	ExtractCalls int
	RankCalls    int
	RankQueries  []string
	RankedIDs    [][]string
}

// NewMockSemanticOracle creates a MockSemanticOracle
func NewMockSemanticOracle() *MockSemanticOracle {
	return &MockSemanticOracle{}
}

func (m *MockSemanticOracle) ExtractTerms(ctx context.Context, query string, anchor time.Time) (*domain.ExtractedTerms, error) {
	m.mu.Lock()
	m.ExtractCalls++
	fn := m.ExtractFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query, anchor)
	}
	return domain.NaiveTerms(query), nil
}

func (m *MockSemanticOracle) RankCandidates(ctx context.Context, query string, candidates []domain.ScoreCandidate, threshold float64) ([]domain.CandidateScore, error) {
	m.mu.Lock()
	m.RankCalls++
	m.RankQueries = append(m.RankQueries, query)
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	m.RankedIDs = append(m.RankedIDs, ids)
	fn := m.RankFn
	m.mu.Unlock()

	var scores []domain.CandidateScore
	if fn != nil {
		var err error
		scores, err = fn(ctx, query, candidates)
		if err != nil {
			return nil, err
		}
	} else {
		for _, c := range candidates {
			scores = append(scores, domain.CandidateScore{ID: c.ID, Score: 1.0})
		}
	}

	var kept []domain.CandidateScore
	for _, s := range scores {
		if s.Score >= threshold {
			kept = append(kept, s)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	return kept, nil
}

func (m *MockSemanticOracle) Model() string {
	return "mock"
}

func (m *MockSemanticOracle) Close() error {
	return nil
}
