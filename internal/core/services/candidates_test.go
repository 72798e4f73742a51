package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
	"github.com/custodia-labs/clipsearch/internal/core/ports/driven/mocks"
)

func newClip(id, camera, description, createdAt string) *domain.Clip {
	return &domain.Clip{
		ID:          id,
		CameraID:    camera,
		ImageRef:    "https://images.example.com/" + id + ".jpg",
		Description: description,
		CreatedAt:   at(createdAt),
	}
}

func testSettings(apply func(*domain.SearchSettings)) domain.SearchSettings {
	s := domain.DefaultSearchSettings()
	apply(&s)
	return s
}

func clipIDs(set *domain.CandidateSet) []string {
	var ids []string
	for _, c := range set.Clips() {
		ids = append(ids, c.ID)
	}
	return ids
}

func fixtureStore() *mocks.MockClipStore {
	return mocks.NewMockClipStore(
		newClip("c1", "CAM-10", "red car parked at the gate", "2025-06-14T09:00:00"),
		newClip("c2", "CAM-10", "person walking a dog", "2025-06-14T15:00:00"),
		newClip("c3", "CAM-11", "blue car leaving the lot", "2025-06-10T12:00:00"),
		newClip("c4", "CAM-11", "delivery truck unloading", "2025-06-15T08:00:00"),
	)
}

func retrievalQuery(text string, terms *domain.ExtractedTerms, window domain.TimeConstraint) RetrievalQuery {
	if terms == nil {
		terms = domain.NaiveTerms(text)
	}
	return RetrievalQuery{
		Text:     text,
		Terms:    terms,
		Keywords: terms.SearchKeywords(),
		Window:   window,
		Anchor:   testAnchor,
	}
}

func dayWindow(date string) domain.TimeConstraint {
	d, _ := time.ParseInLocation(domain.DateLayout, date, time.UTC)
	return fullDay(d)
}

func TestCandidateGenerator_Latest(t *testing.T) {
	store := fixtureStore()
	g := NewCandidateGenerator(store, testSettings(func(s *domain.SearchSettings) { s.MaxResults = 3 }), nil)

	out, err := g.Generate(context.Background(), retrievalQuery("show the latest clips", nil, domain.TimeConstraint{}))
	require.NoError(t, err)

	assert.Equal(t, domain.TierLatest, out.Tier)
	assert.True(t, out.Final)
	assert.Equal(t, domain.BypassScore, out.DefaultScore)
	assert.Equal(t, []string{"c4", "c2", "c1"}, clipIDs(out.Candidates))
	assert.Equal(t, 1, store.Calls("Latest"))
	assert.Zero(t, store.Calls("ByKeyword"))
}

func TestCandidateGenerator_LatestSingleItemWithSubject(t *testing.T) {
	store := fixtureStore()
	g := NewCandidateGenerator(store, domain.DefaultSearchSettings(), nil)

	terms := &domain.ExtractedTerms{PrimaryObjects: []string{"car", "image"}}
	out, err := g.Generate(context.Background(), retrievalQuery("latest image of a car", terms, domain.TimeConstraint{}))
	require.NoError(t, err)

	assert.Equal(t, domain.TierLatest, out.Tier)
	assert.Equal(t, []string{"c1"}, clipIDs(out.Candidates))
	assert.Equal(t, 1, store.Calls("All"))
}

func TestCandidateGenerator_LatestSubjectWithNoMatch(t *testing.T) {
	g := NewCandidateGenerator(fixtureStore(), domain.DefaultSearchSettings(), nil)

	terms := &domain.ExtractedTerms{PrimaryObjects: []string{"forklift"}}
	out, err := g.Generate(context.Background(), retrievalQuery("most recent forklift", terms, domain.TimeConstraint{}))
	require.NoError(t, err)

	assert.Equal(t, domain.TierLatest, out.Tier)
	assert.Zero(t, out.Candidates.Len())
}

func TestCandidateGenerator_FullDay(t *testing.T) {
	store := fixtureStore()
	g := NewCandidateGenerator(store, domain.DefaultSearchSettings(), nil)

	out, err := g.Generate(context.Background(), retrievalQuery("car", nil, dayWindow("2025-06-14")))
	require.NoError(t, err)

	assert.Equal(t, domain.TierFullDay, out.Tier)
	assert.True(t, out.Bypass())
	assert.Equal(t, domain.BypassScore, out.DefaultScore)
	assert.ElementsMatch(t, []string{"c1", "c2"}, clipIDs(out.Candidates))
	assert.Zero(t, store.Calls("ByKeywordAndTime"))
}

func TestCandidateGenerator_KeywordAndTime(t *testing.T) {
	store := fixtureStore()
	g := NewCandidateGenerator(store, domain.DefaultSearchSettings(), nil)

	window := domain.TimeConstraint{Start: ptrTime(at("2025-06-09T00:00:00")), End: ptrTime(at("2025-06-14T12:00:00"))}
	out, err := g.Generate(context.Background(), retrievalQuery("car", nil, window))
	require.NoError(t, err)

	assert.Equal(t, domain.TierKeywordTime, out.Tier)
	assert.False(t, out.Bypass())
	assert.Equal(t, []string{"c1", "c3"}, clipIDs(out.Candidates))
}

func TestCandidateGenerator_TimeOnlyWhenKeywordsMiss(t *testing.T) {
	store := fixtureStore()
	g := NewCandidateGenerator(store, domain.DefaultSearchSettings(), nil)

	window := domain.TimeConstraint{Start: ptrTime(at("2025-06-14T08:00:00")), End: ptrTime(at("2025-06-14T16:00:00"))}
	out, err := g.Generate(context.Background(), retrievalQuery("helicopter", nil, window))
	require.NoError(t, err)

	assert.Equal(t, domain.TierTimeOnly, out.Tier)
	assert.Equal(t, domain.TimeOnlyScore, out.DefaultScore)
	assert.Equal(t, []string{"c2", "c1"}, clipIDs(out.Candidates))
	assert.Equal(t, 1, store.Calls("ByKeywordAndTime"))
	assert.Equal(t, 1, store.Calls("ByTimeframe"))
}

func TestCandidateGenerator_KeywordDeduplicates(t *testing.T) {
	store := fixtureStore()
	g := NewCandidateGenerator(store, testSettings(func(s *domain.SearchSettings) { s.LookupConcurrency = 2 }), nil)

	terms := &domain.ExtractedTerms{Keywords: []string{"car", "gate", "lot"}}
	out, err := g.Generate(context.Background(), retrievalQuery("car at gate or lot", terms, domain.TimeConstraint{}))
	require.NoError(t, err)

	assert.Equal(t, domain.TierKeyword, out.Tier)
	// merged in keyword order: "car" yields c1, c3; "gate" and "lot" add nothing new
	assert.Equal(t, []string{"c1", "c3"}, clipIDs(out.Candidates))
	assert.Equal(t, 3, store.Calls("ByKeyword"))
}

func TestCandidateGenerator_Empty(t *testing.T) {
	store := fixtureStore()
	g := NewCandidateGenerator(store, domain.DefaultSearchSettings(), nil)

	out, err := g.Generate(context.Background(), retrievalQuery("a b", &domain.ExtractedTerms{}, domain.TimeConstraint{}))
	require.NoError(t, err)

	assert.Equal(t, domain.TierEmpty, out.Tier)
	assert.Zero(t, out.Candidates.Len())
	assert.Zero(t, store.Calls("All"))
	assert.Zero(t, store.Calls("ByKeyword"))
}

func TestCandidateGenerator_KeywordMissIsEmpty(t *testing.T) {
	g := NewCandidateGenerator(fixtureStore(), domain.DefaultSearchSettings(), nil)

	out, err := g.Generate(context.Background(), retrievalQuery("helicopter", nil, domain.TimeConstraint{}))
	require.NoError(t, err)

	assert.Equal(t, domain.TierEmpty, out.Tier)
	assert.Zero(t, out.Candidates.Len())
}

func TestCandidateGenerator_StoreError(t *testing.T) {
	store := fixtureStore()
	store.Err = errors.New("connection refused")
	g := NewCandidateGenerator(store, domain.DefaultSearchSettings(), nil)

	_, err := g.Generate(context.Background(), retrievalQuery("car", nil, domain.TimeConstraint{}))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHasRecencyIntent(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"latest clips", true},
		{"the most recent photo of the gate", true},
		{"newest", true},
		{"show the last image", true},
		{"Last!", true},
		{"cars last week", false},
		{"trucks in the last 3 days", false},
		{"red car", false},
		{"mostly recent", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, HasRecencyIntent(tt.query))
		})
	}
}

func TestHasSingleItemIntent(t *testing.T) {
	assert.True(t, HasSingleItemIntent("latest photo"))
	assert.True(t, HasSingleItemIntent("most recent Frame"))
	assert.False(t, HasSingleItemIntent("latest photos"))
	assert.False(t, HasSingleItemIntent("latest clips"))
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
