package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
	"github.com/custodia-labs/clipsearch/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.ClipStore  = (*ClipStore)(nil)
	_ driven.ClipWriter = (*ClipStore)(nil)
)

const (
	// Key layout for Redis
	clipPrefix    = "clip:"
	clipTimeIndex = "clips:by_created"
)

// ClipStore implements driven.ClipStore using Redis.
// Each clip is a JSON string; a sorted set scored by creation time in
// milliseconds serves time-range and recency reads. Keyword reads scan the
// candidates in memory, so this backend suits small and test deployments.
type ClipStore struct {
	client *redis.Client
	loc    *time.Location
}

// NewClipStore creates a new Redis-backed ClipStore. Calendar dates passed
// to ByDate are interpreted in loc; nil means UTC.
func NewClipStore(client *redis.Client, loc *time.Location) *ClipStore {
	if loc == nil {
		loc = time.UTC
	}
	return &ClipStore{client: client, loc: loc}
}

// Save stores clips and indexes them by creation time
func (s *ClipStore) Save(ctx context.Context, clips []*domain.Clip) error {
	if len(clips) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, c := range clips {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal clip %s: %w", c.ID, err)
		}
		pipe.Set(ctx, clipPrefix+c.ID, data, 0)
		pipe.ZAdd(ctx, clipTimeIndex, redis.Z{Score: score(c.CreatedAt), Member: c.ID})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save clips: %w", err)
	}
	return nil
}

// ByKeyword returns clips whose description contains keyword, ignoring case
func (s *ClipStore) ByKeyword(ctx context.Context, keyword string) ([]*domain.Clip, error) {
	clips, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return matchKeyword(clips, keyword), nil
}

// ByTimeframe returns clips created from start through the end second
func (s *ClipStore) ByTimeframe(ctx context.Context, start, end time.Time) ([]*domain.Clip, error) {
	return s.byScore(ctx, formatScore(start), "("+formatScore(domain.ExclusiveEnd(end)))
}

// ByDate returns clips created on the given YYYY-MM-DD calendar day
func (s *ClipStore) ByDate(ctx context.Context, isoDate string) ([]*domain.Clip, error) {
	day, err := time.ParseInLocation(domain.DateLayout, isoDate, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q", domain.ErrInvalidInput, isoDate)
	}
	// the next midnight is excluded
	return s.byScore(ctx, formatScore(day), "("+formatScore(day.AddDate(0, 0, 1)))
}

// ByKeywordAndTime combines the keyword and timeframe predicates
func (s *ClipStore) ByKeywordAndTime(ctx context.Context, keyword string, start, end time.Time) ([]*domain.Clip, error) {
	clips, err := s.ByTimeframe(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return matchKeyword(clips, keyword), nil
}

// Latest returns the newest clips
func (s *ClipStore) Latest(ctx context.Context, limit int) ([]*domain.Clip, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := s.client.ZRevRange(ctx, clipTimeIndex, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read clip index: %w", err)
	}
	return s.load(ctx, ids)
}

// All returns every clip, newest first
func (s *ClipStore) All(ctx context.Context) ([]*domain.Clip, error) {
	return s.Latest(ctx, 0)
}

// HealthCheck verifies Redis is reachable
func (s *ClipStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *ClipStore) byScore(ctx context.Context, lo, hi string) ([]*domain.Clip, error) {
	ids, err := s.client.ZRevRangeByScore(ctx, clipTimeIndex, &redis.ZRangeBy{Min: lo, Max: hi}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read clip index: %w", err)
	}
	return s.load(ctx, ids)
}

// load fetches clips by ID. IDs whose payload has gone are skipped.
func (s *ClipStore) load(ctx context.Context, ids []string) ([]*domain.Clip, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = clipPrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load clips: %w", err)
	}

	clips := make([]*domain.Clip, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var clip domain.Clip
		if err := json.Unmarshal([]byte(raw), &clip); err != nil {
			return nil, fmt.Errorf("failed to unmarshal clip %s: %w", ids[i], err)
		}
		clip.CreatedAt = clip.CreatedAt.In(s.loc)
		clips = append(clips, &clip)
	}
	domain.SortByNewest(clips)
	return clips, nil
}

func matchKeyword(clips []*domain.Clip, keyword string) []*domain.Clip {
	keyword = strings.ToLower(keyword)
	var out []*domain.Clip
	for _, c := range clips {
		if strings.Contains(strings.ToLower(c.Description), keyword) {
			out = append(out, c)
		}
	}
	return out
}

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func formatScore(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
