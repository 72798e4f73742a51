package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
	"github.com/custodia-labs/clipsearch/internal/core/ports/driven"
)

// RetrievalQuery is the input shared by every retrieval strategy
type RetrievalQuery struct {
	Text     string
	Terms    *domain.ExtractedTerms
	Keywords []string
	Window   domain.TimeConstraint
	Anchor   time.Time
}

// Outcome is the candidate set produced by one strategy
type Outcome struct {
	Tier       domain.Tier
	Candidates *domain.CandidateSet

	// DefaultScore, when positive, is assigned to every candidate and
	// ranking is skipped.
	DefaultScore float64

	// Final stops the cascade even when Candidates is empty.
	Final bool
}

// Bypass reports whether the outcome skips the ranker
func (o Outcome) Bypass() bool {
	return o.DefaultScore > 0
}

// RetrievalStrategy is one tier of the candidate cascade
type RetrievalStrategy interface {
	// Tier names the strategy
	Tier() domain.Tier

	// Applicable reports whether the strategy can run for q
	Applicable(q RetrievalQuery) bool

	// Retrieve fetches candidates from the clip store
	Retrieve(ctx context.Context, q RetrievalQuery) (Outcome, error)
}

// CandidateGenerator runs retrieval strategies in order and returns the
// first non-empty (or final) outcome.
type CandidateGenerator struct {
	strategies []RetrievalStrategy
	logger     *slog.Logger
}

// NewCandidateGenerator creates a generator with the standard cascade:
// latest, full day, keyword+time, time only, keyword, empty.
func NewCandidateGenerator(store driven.ClipStore, settings domain.SearchSettings, logger *slog.Logger) *CandidateGenerator {
	settings = settings.WithDefaults()
	return NewCandidateGeneratorWithStrategies(logger,
		&latestStrategy{store: store, limit: settings.MaxResults},
		&fullDayStrategy{store: store},
		&keywordTimeStrategy{store: store, concurrency: settings.LookupConcurrency},
		&timeOnlyStrategy{store: store},
		&keywordStrategy{store: store, concurrency: settings.LookupConcurrency},
		emptyStrategy{},
	)
}

// NewCandidateGeneratorWithStrategies creates a generator with a custom cascade
func NewCandidateGeneratorWithStrategies(logger *slog.Logger, strategies ...RetrievalStrategy) *CandidateGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CandidateGenerator{strategies: strategies, logger: logger}
}

// Generate runs the cascade. Store errors abort it.
func (g *CandidateGenerator) Generate(ctx context.Context, q RetrievalQuery) (Outcome, error) {
	for _, s := range g.strategies {
		if !s.Applicable(q) {
			continue
		}
		out, err := s.Retrieve(ctx, q)
		if err != nil {
			return Outcome{}, err
		}
		if out.Candidates == nil {
			out.Candidates = domain.NewCandidateSet()
		}
		g.logger.Debug("retrieval tier evaluated",
			"tier", s.Tier(),
			"candidates", out.Candidates.Len(),
		)
		if out.Final || out.Candidates.Len() > 0 {
			return out, nil
		}
	}
	return Outcome{Tier: domain.TierEmpty, Candidates: domain.NewCandidateSet(), Final: true}, nil
}

// latestStrategy serves "latest"/"newest" requests straight from the store
type latestStrategy struct {
	store driven.ClipStore
	limit int
}

func (s *latestStrategy) Tier() domain.Tier { return domain.TierLatest }

func (s *latestStrategy) Applicable(q RetrievalQuery) bool {
	return HasRecencyIntent(q.Text)
}

func (s *latestStrategy) Retrieve(ctx context.Context, q RetrievalQuery) (Outcome, error) {
	subjects := namedSubjects(q.Terms)

	var clips []*domain.Clip
	var err error
	if len(subjects) == 0 {
		clips, err = s.store.Latest(ctx, s.limit)
	} else {
		clips, err = s.store.All(ctx)
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: latest clips: %w", domain.ErrStoreFailure, err)
	}

	if len(subjects) > 0 {
		var matched []*domain.Clip
		for _, c := range clips {
			if ContainsAny(c.Description, subjects) {
				matched = append(matched, c)
			}
		}
		clips = matched
	}

	domain.SortByNewest(clips)
	limit := s.limit
	if HasSingleItemIntent(q.Text) {
		limit = 1
	}
	if len(clips) > limit {
		clips = clips[:limit]
	}

	set := domain.NewCandidateSet()
	set.AddAll(clips)
	return Outcome{
		Tier:         domain.TierLatest,
		Candidates:   set,
		DefaultScore: domain.BypassScore,
		Final:        true,
	}, nil
}

// fullDayStrategy answers calendar-day windows with a date lookup
type fullDayStrategy struct {
	store driven.ClipStore
}

func (s *fullDayStrategy) Tier() domain.Tier { return domain.TierFullDay }

func (s *fullDayStrategy) Applicable(q RetrievalQuery) bool {
	_, ok := q.Window.FullDay()
	return ok
}

func (s *fullDayStrategy) Retrieve(ctx context.Context, q RetrievalQuery) (Outcome, error) {
	date, _ := q.Window.FullDay()
	clips, err := s.store.ByDate(ctx, date)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: clips on %s: %w", domain.ErrStoreFailure, date, err)
	}
	set := domain.NewCandidateSet()
	set.AddAll(clips)
	return Outcome{Tier: domain.TierFullDay, Candidates: set, DefaultScore: domain.BypassScore}, nil
}

// keywordTimeStrategy looks up each keyword inside the time window
type keywordTimeStrategy struct {
	store       driven.ClipStore
	concurrency int
}

func (s *keywordTimeStrategy) Tier() domain.Tier { return domain.TierKeywordTime }

func (s *keywordTimeStrategy) Applicable(q RetrievalQuery) bool {
	return len(q.Keywords) > 0 && !q.Window.IsEmpty()
}

func (s *keywordTimeStrategy) Retrieve(ctx context.Context, q RetrievalQuery) (Outcome, error) {
	start, end := q.Window.Bounds(q.Anchor)
	set, err := lookupKeywords(ctx, q.Keywords, s.concurrency, func(ctx context.Context, kw string) ([]*domain.Clip, error) {
		return s.store.ByKeywordAndTime(ctx, kw, start, end)
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Tier: domain.TierKeywordTime, Candidates: set}, nil
}

// timeOnlyStrategy returns everything in the window. It runs when there are
// no keywords or when the keyword+time lookup found nothing.
type timeOnlyStrategy struct {
	store driven.ClipStore
}

func (s *timeOnlyStrategy) Tier() domain.Tier { return domain.TierTimeOnly }

func (s *timeOnlyStrategy) Applicable(q RetrievalQuery) bool {
	return !q.Window.IsEmpty()
}

func (s *timeOnlyStrategy) Retrieve(ctx context.Context, q RetrievalQuery) (Outcome, error) {
	start, end := q.Window.Bounds(q.Anchor)
	clips, err := s.store.ByTimeframe(ctx, start, end)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: clips in timeframe: %w", domain.ErrStoreFailure, err)
	}
	set := domain.NewCandidateSet()
	set.AddAll(clips)
	return Outcome{Tier: domain.TierTimeOnly, Candidates: set, DefaultScore: domain.TimeOnlyScore}, nil
}

// keywordStrategy looks up each keyword with no time bound
type keywordStrategy struct {
	store       driven.ClipStore
	concurrency int
}

func (s *keywordStrategy) Tier() domain.Tier { return domain.TierKeyword }

func (s *keywordStrategy) Applicable(q RetrievalQuery) bool {
	return len(q.Keywords) > 0 && q.Window.IsEmpty()
}

func (s *keywordStrategy) Retrieve(ctx context.Context, q RetrievalQuery) (Outcome, error) {
	set, err := lookupKeywords(ctx, q.Keywords, s.concurrency, s.store.ByKeyword)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Tier: domain.TierKeyword, Candidates: set}, nil
}

// emptyStrategy ends the cascade without touching the store
type emptyStrategy struct{}

func (emptyStrategy) Tier() domain.Tier { return domain.TierEmpty }

func (emptyStrategy) Applicable(RetrievalQuery) bool { return true }

func (emptyStrategy) Retrieve(context.Context, RetrievalQuery) (Outcome, error) {
	return Outcome{Tier: domain.TierEmpty, Candidates: domain.NewCandidateSet(), Final: true}, nil
}

// lookupKeywords fans out one store read per keyword and merges the results
// in keyword order, deduplicating by clip ID.
func lookupKeywords(
	ctx context.Context,
	keywords []string,
	concurrency int,
	fetch func(ctx context.Context, keyword string) ([]*domain.Clip, error),
) (*domain.CandidateSet, error) {
	results := make([][]*domain.Clip, len(keywords))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, kw := range keywords {
		i, kw := i, kw
		g.Go(func() error {
			clips, err := fetch(gctx, kw)
			if err != nil {
				return fmt.Errorf("%w: keyword %q: %w", domain.ErrStoreFailure, kw, err)
			}
			results[i] = clips
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := domain.NewCandidateSet()
	for _, clips := range results {
		set.AddAll(clips)
	}
	return set, nil
}

// HasRecencyIntent reports whether the query asks for the newest clips.
// "last" only counts when it is not the start of a time window
// ("last week", "last 3 days").
func HasRecencyIntent(query string) bool {
	tokens := words(query)
	for _, marker := range domain.RecencyMarkers {
		mw := strings.Fields(marker)
		for i := 0; i+len(mw) <= len(tokens); i++ {
			if !slices.Equal(tokens[i:i+len(mw)], mw) {
				continue
			}
			if marker == "last" && i+1 < len(tokens) && startsTimeWindow(tokens[i+1]) {
				continue
			}
			return true
		}
	}
	return false
}

// HasSingleItemIntent reports whether the query names exactly one item,
// e.g. "photo" rather than "photos".
func HasSingleItemIntent(query string) bool {
	for _, w := range words(query) {
		if slices.Contains(domain.SingleItemNouns, w) {
			return true
		}
	}
	return false
}

// namedSubjects returns the primary objects that name something other
// than the media itself or a recency marker.
func namedSubjects(terms *domain.ExtractedTerms) []string {
	if terms == nil {
		return nil
	}
	var out []string
	for _, obj := range terms.PrimaryObjects {
		obj = strings.ToLower(strings.TrimSpace(obj))
		if obj == "" || slices.Contains(domain.MediaNouns, obj) || slices.Contains(domain.RecencyMarkers, obj) {
			continue
		}
		out = append(out, obj)
	}
	return out
}

func startsTimeWindow(word string) bool {
	if _, err := strconv.Atoi(word); err == nil {
		return true
	}
	return slices.Contains(domain.TimeUnits, word)
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
