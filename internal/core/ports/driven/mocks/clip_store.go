package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
)

// MockClipStore is an in-memory ClipStore for testing
type MockClipStore struct {
	mu    sync.RWMutex
	clips map[string]*domain.Clip
	loc   *time.Location

	// Err, when set, is returned by every read
	Err error

	calls map[string]int
}

// NewMockClipStore creates a MockClipStore seeded with clips
func NewMockClipStore(clips ...*domain.Clip) *MockClipStore {
	m := &MockClipStore{
		clips: make(map[string]*domain.Clip),
		loc:   time.UTC,
		calls: make(map[string]int),
	}
	for _, c := range clips {
		m.clips[c.ID] = c
	}
	return m
}

// InLocation makes ByDate read calendar dates in loc
func (m *MockClipStore) InLocation(loc *time.Location) *MockClipStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loc = loc
	return m
}

// Calls returns how many times a method was invoked
func (m *MockClipStore) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[method]
}

func (m *MockClipStore) Save(ctx context.Context, clips []*domain.Clip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range clips {
		m.clips[c.ID] = c
	}
	return nil
}

func (m *MockClipStore) ByKeyword(ctx context.Context, keyword string) ([]*domain.Clip, error) {
	return m.filter("ByKeyword", func(c *domain.Clip) bool {
		return containsFold(c.Description, keyword)
	})
}

func (m *MockClipStore) ByTimeframe(ctx context.Context, start, end time.Time) ([]*domain.Clip, error) {
	return m.filter("ByTimeframe", func(c *domain.Clip) bool {
		return within(c.CreatedAt, start, end)
	})
}

func (m *MockClipStore) ByDate(ctx context.Context, isoDate string) ([]*domain.Clip, error) {
	m.mu.RLock()
	loc := m.loc
	m.mu.RUnlock()
	day, err := time.ParseInLocation(domain.DateLayout, isoDate, loc)
	if err != nil {
		return nil, err
	}
	next := day.AddDate(0, 0, 1)
	return m.filter("ByDate", func(c *domain.Clip) bool {
		return !c.CreatedAt.Before(day) && c.CreatedAt.Before(next)
	})
}

func (m *MockClipStore) ByKeywordAndTime(ctx context.Context, keyword string, start, end time.Time) ([]*domain.Clip, error) {
	return m.filter("ByKeywordAndTime", func(c *domain.Clip) bool {
		return containsFold(c.Description, keyword) && within(c.CreatedAt, start, end)
	})
}

func (m *MockClipStore) Latest(ctx context.Context, limit int) ([]*domain.Clip, error) {
	clips, err := m.filter("Latest", func(*domain.Clip) bool { return true })
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(clips) > limit {
		clips = clips[:limit]
	}
	return clips, nil
}

func (m *MockClipStore) All(ctx context.Context) ([]*domain.Clip, error) {
	return m.filter("All", func(*domain.Clip) bool { return true })
}

func (m *MockClipStore) HealthCheck(ctx context.Context) error {
	return m.Err
}

func (m *MockClipStore) filter(method string, keep func(*domain.Clip) bool) ([]*domain.Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
	if m.Err != nil {
		return nil, m.Err
	}
	var out []*domain.Clip
	for _, c := range m.clips {
		if keep(c) {
			out = append(out, c)
		}
	}
	domain.SortByNewest(out)
	return out, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(domain.ExclusiveEnd(end))
}
