package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
	"github.com/custodia-labs/clipsearch/internal/core/ports/driven/mocks"
)

// searchFeature holds per-scenario state for the search feature steps
type searchFeature struct {
	now    time.Time
	store  *mocks.MockClipStore
	oracle *mocks.MockSemanticOracle
	result *domain.SearchResult
}

func (f *searchFeature) reset() {
	f.now = time.Time{}
	f.store = mocks.NewMockClipStore()
	f.oracle = mocks.NewMockSemanticOracle()
	f.result = nil
}

func (f *searchFeature) theCurrentTimeIs(value string) error {
	t, err := time.ParseInLocation(domain.TimestampLayout, value, time.UTC)
	if err != nil {
		return err
	}
	f.now = t
	return nil
}

func (f *searchFeature) theStoreContainsClips(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("expected a header and at least one clip row")
	}
	header := make(map[string]int)
	for i, cell := range table.Rows[0].Cells {
		header[cell.Value] = i
	}
	var clips []*domain.Clip
	for _, row := range table.Rows[1:] {
		value := func(col string) string { return row.Cells[header[col]].Value }
		created, err := time.ParseInLocation(domain.TimestampLayout, value("created_at"), time.UTC)
		if err != nil {
			return err
		}
		clips = append(clips, &domain.Clip{
			ID:          value("id"),
			CameraID:    value("camera"),
			Description: value("description"),
			CreatedAt:   created,
		})
	}
	return f.store.Save(context.Background(), clips)
}

func (f *searchFeature) theOracleExtractsRelativeTimeAndDayPart(relative, dayPart string) error {
	f.oracle.ExtractFn = func(context.Context, string, time.Time) (*domain.ExtractedTerms, error) {
		return &domain.ExtractedTerms{
			TimeReference: domain.TimeReference{RelativeTime: relative, DayPart: dayPart},
		}, nil
	}
	return nil
}

func (f *searchFeature) theOracleScoresEveryCandidate(score float64) error {
	f.oracle.RankFn = func(ctx context.Context, query string, candidates []domain.ScoreCandidate) ([]domain.CandidateScore, error) {
		scores := make([]domain.CandidateScore, len(candidates))
		for i, c := range candidates {
			scores[i] = domain.CandidateScore{ID: c.ID, Score: score}
		}
		return scores, nil
	}
	return nil
}

func (f *searchFeature) iSearchFor(query string) error {
	svc := NewSearchService(SearchServiceConfig{
		Store:    f.store,
		Oracle:   f.oracle,
		Settings: domain.DefaultSearchSettings(),
		Now:      func() time.Time { return f.now },
	})
	result, err := svc.Search(context.Background(), query, domain.SearchOptions{})
	if err != nil {
		return err
	}
	f.result = result
	return nil
}

func (f *searchFeature) theSearchWindowIs(start, end string) error {
	w := f.result.Window
	if w.Start == nil || w.End == nil {
		return fmt.Errorf("expected a bounded window, got %s", w)
	}
	if got := w.Start.Format(domain.TimestampLayout); got != start {
		return fmt.Errorf("expected window start %s, got %s", start, got)
	}
	if got := w.End.Format(domain.TimestampLayout); got != end {
		return fmt.Errorf("expected window end %s, got %s", end, got)
	}
	return nil
}

func (f *searchFeature) theTierIs(tier string) error {
	if string(f.result.Tier) != tier {
		return fmt.Errorf("expected tier %s, got %s", tier, f.result.Tier)
	}
	return nil
}

func (f *searchFeature) theModeIs(mode string) error {
	if string(f.result.Mode) != mode {
		return fmt.Errorf("expected mode %s, got %s", mode, f.result.Mode)
	}
	return nil
}

func (f *searchFeature) theResultsAre(ids string) error {
	want := splitIDs(ids)
	var got []string
	for _, r := range f.result.Results {
		got = append(got, r.Clip.ID)
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		return fmt.Errorf("expected results %v, got %v", want, got)
	}
	return nil
}

func (f *searchFeature) thereAreNoResults() error {
	if len(f.result.Results) != 0 {
		return fmt.Errorf("expected no results, got %d", len(f.result.Results))
	}
	return nil
}

func (f *searchFeature) everyResultScores(score float64) error {
	for _, r := range f.result.Results {
		if r.RelevanceScore != score {
			return fmt.Errorf("clip %s scored %.2f, expected %.2f", r.Clip.ID, r.RelevanceScore, score)
		}
	}
	return nil
}

func (f *searchFeature) theRankerIsNotInvoked() error {
	if f.oracle.RankCalls != 0 {
		return fmt.Errorf("expected no ranking calls, got %d", f.oracle.RankCalls)
	}
	return nil
}

func (f *searchFeature) theRankerReceivesOnly(ids string) error {
	if f.oracle.RankCalls != 1 {
		return fmt.Errorf("expected one ranking call, got %d", f.oracle.RankCalls)
	}
	want := make(map[string]bool)
	for _, id := range splitIDs(ids) {
		want[id] = true
	}
	got := f.oracle.RankedIDs[0]
	if len(got) != len(want) {
		return fmt.Errorf("expected ranked candidates %v, got %v", ids, got)
	}
	for _, id := range got {
		if !want[id] {
			return fmt.Errorf("unexpected ranked candidate %s in %v", id, got)
		}
	}
	return nil
}

func (f *searchFeature) resultScoresWithAlertLevel(id string, score float64, level string) error {
	for _, r := range f.result.Results {
		if r.Clip.ID != id {
			continue
		}
		if diff := r.RelevanceScore - score; diff > 1e-9 || diff < -1e-9 {
			return fmt.Errorf("clip %s scored %.4f, expected %.4f", id, r.RelevanceScore, score)
		}
		if r.Enrichment == nil || string(r.Enrichment.AlertLevel) != level {
			return fmt.Errorf("clip %s has enrichment %+v, expected alert level %s", id, r.Enrichment, level)
		}
		return nil
	}
	return fmt.Errorf("clip %s not in results", id)
}

func splitIDs(ids string) []string {
	var out []string
	for _, id := range strings.Split(ids, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func initializeSearchScenario(sc *godog.ScenarioContext) {
	f := &searchFeature{}
	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		f.reset()
		return ctx, nil
	})

	sc.Step(`^the current time is "([^"]*)"$`, f.theCurrentTimeIs)
	sc.Step(`^the store contains clips:$`, f.theStoreContainsClips)
	sc.Step(`^the oracle extracts relative time "([^"]*)" and day part "([^"]*)"$`, f.theOracleExtractsRelativeTimeAndDayPart)
	sc.Step(`^the oracle scores every candidate (\d+(?:\.\d+)?)$`, f.theOracleScoresEveryCandidate)
	sc.Step(`^I search for "([^"]*)"$`, f.iSearchFor)
	sc.Step(`^the search window is "([^"]*)" to "([^"]*)"$`, f.theSearchWindowIs)
	sc.Step(`^the tier is "([^"]*)"$`, f.theTierIs)
	sc.Step(`^the mode is "([^"]*)"$`, f.theModeIs)
	sc.Step(`^the results are "([^"]*)"$`, f.theResultsAre)
	sc.Step(`^there are no results$`, f.thereAreNoResults)
	sc.Step(`^every result scores (\d+(?:\.\d+)?)$`, f.everyResultScores)
	sc.Step(`^the ranker is not invoked$`, f.theRankerIsNotInvoked)
	sc.Step(`^the ranker receives only "([^"]*)"$`, f.theRankerReceivesOnly)
	sc.Step(`^result "([^"]*)" scores (\d+(?:\.\d+)?) with alert level "([^"]*)"$`, f.resultScoresWithAlertLevel)
}

func TestSearchFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "search",
		ScenarioInitializer: initializeSearchScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
