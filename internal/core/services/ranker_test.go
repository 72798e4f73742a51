package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
)

// Mock implementations for local testing

// MockOracle is a mock implementation of driven.SemanticOracle
type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) ExtractTerms(ctx context.Context, query string, anchor time.Time) (*domain.ExtractedTerms, error) {
	args := m.Called(ctx, query, anchor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedTerms), args.Error(1)
}

func (m *MockOracle) RankCandidates(ctx context.Context, query string, candidates []domain.ScoreCandidate, threshold float64) ([]domain.CandidateScore, error) {
	args := m.Called(ctx, query, candidates, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateScore), args.Error(1)
}

func (m *MockOracle) Model() string {
	return "mock-oracle"
}

func (m *MockOracle) Close() error {
	return nil
}

func rankSet(n int) *domain.CandidateSet {
	set := domain.NewCandidateSet()
	for i := 0; i < n; i++ {
		set.Add(newClip(fmt.Sprintf("r%02d", i), "CAM-10", fmt.Sprintf("clip number %d", i), "2025-06-14T09:00:00"))
	}
	return set
}

func TestRanker_SortsAndFilters(t *testing.T) {
	oracle := new(MockOracle)
	oracle.On("RankCandidates", mock.Anything, "red car", mock.Anything, 0.6).Return([]domain.CandidateScore{
		{ID: "r00", Score: 0.7},
		{ID: "r01", Score: 0.95},
		{ID: "r02", Score: 0.4},
		{ID: "ghost", Score: 0.99},
		{ID: "r03", Score: 1.7},
		{ID: "r01", Score: 0.65},
	}, nil)

	r := NewRanker(oracle, domain.DefaultSearchSettings(), nil)
	results := r.Rank(context.Background(), "red car", rankSet(4))

	require.Len(t, results, 3)
	assert.Equal(t, "r03", results[0].Clip.ID)
	assert.Equal(t, 1.0, results[0].RelevanceScore)
	assert.Equal(t, "r01", results[1].Clip.ID)
	assert.Equal(t, 0.95, results[1].RelevanceScore)
	assert.Equal(t, "r00", results[2].Clip.ID)
	oracle.AssertExpectations(t)
}

func TestRanker_ZeroThresholdKeepsEveryScore(t *testing.T) {
	oracle := new(MockOracle)
	oracle.On("RankCandidates", mock.Anything, "q", mock.Anything, 0.0).Return([]domain.CandidateScore{
		{ID: "r00", Score: 0.3},
		{ID: "r01", Score: 0},
	}, nil)

	r := NewRanker(oracle, testSettings(func(s *domain.SearchSettings) { s.RelevanceThreshold = 0 }), nil)
	results := r.Rank(context.Background(), "q", rankSet(2))

	require.Len(t, results, 2)
	assert.Equal(t, "r00", results[0].Clip.ID)
	assert.Equal(t, "r01", results[1].Clip.ID)
	oracle.AssertExpectations(t)
}

func TestRanker_CapsCandidates(t *testing.T) {
	oracle := new(MockOracle)
	oracle.On("RankCandidates", mock.Anything, "q", mock.MatchedBy(func(c []domain.ScoreCandidate) bool {
		return len(c) == 5 && c[0].ID == "r00" && c[4].ID == "r04"
	}), 0.6).Return([]domain.CandidateScore{}, nil)

	r := NewRanker(oracle, testSettings(func(s *domain.SearchSettings) { s.RankCandidateCap = 5 }), nil)
	results := r.Rank(context.Background(), "q", rankSet(8))

	assert.Empty(t, results)
	oracle.AssertExpectations(t)
}

func TestRanker_TruncatesToMaxResults(t *testing.T) {
	var scores []domain.CandidateScore
	for i := 0; i < 6; i++ {
		scores = append(scores, domain.CandidateScore{ID: fmt.Sprintf("r%02d", i), Score: 0.9})
	}
	oracle := new(MockOracle)
	oracle.On("RankCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(scores, nil)

	r := NewRanker(oracle, testSettings(func(s *domain.SearchSettings) { s.MaxResults = 2 }), nil)
	results := r.Rank(context.Background(), "q", rankSet(6))

	require.Len(t, results, 2)
	assert.Equal(t, "r00", results[0].Clip.ID)
	assert.Equal(t, "r01", results[1].Clip.ID)
}

func TestRanker_OracleFailure(t *testing.T) {
	oracle := new(MockOracle)
	oracle.On("RankCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: bad json", domain.ErrRankingFailed))

	r := NewRanker(oracle, domain.DefaultSearchSettings(), nil)

	assert.Empty(t, r.Rank(context.Background(), "q", rankSet(3)))
}

func TestRanker_NoOracleOrCandidates(t *testing.T) {
	assert.Empty(t, NewRanker(nil, domain.DefaultSearchSettings(), nil).Rank(context.Background(), "q", rankSet(3)))

	oracle := new(MockOracle)
	r := NewRanker(oracle, domain.DefaultSearchSettings(), nil)
	assert.Empty(t, r.Rank(context.Background(), "q", domain.NewCandidateSet()))
	oracle.AssertNotCalled(t, "RankCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRanker_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	oracle := new(MockOracle)
	oracle.On("RankCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.Join(domain.ErrRankingFailed, context.Canceled))

	assert.Empty(t, NewRanker(oracle, domain.DefaultSearchSettings(), nil).Rank(ctx, "q", rankSet(2)))
}

func TestAnnotateQuery(t *testing.T) {
	assert.Equal(t, "red car", annotateQuery("red car", domain.SearchModeDefault, domain.TimeConstraint{}))
	assert.Equal(t, "PCB inspection: open circuit", annotateQuery("open circuit", domain.SearchModePCB, domain.TimeConstraint{}))
	assert.Equal(t,
		"Manufacturing monitoring: solder bridge (time window: 2025-06-14T00:00:00 to 2025-06-14T23:59:59)",
		annotateQuery("solder bridge", domain.SearchModeManufacturing, dayWindow("2025-06-14")),
	)
}
