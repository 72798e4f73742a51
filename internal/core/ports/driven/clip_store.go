package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
)

// ClipStore provides read access to stored clips.
// Every lookup returns an empty slice, not an error, when nothing matches.
type ClipStore interface {
	// ByKeyword returns clips whose description contains keyword (case-insensitive)
	ByKeyword(ctx context.Context, keyword string) ([]*domain.Clip, error)

	// ByTimeframe returns clips created from start through end. The end is
	// inclusive to the second (see domain.ExclusiveEnd).
	ByTimeframe(ctx context.Context, start, end time.Time) ([]*domain.Clip, error)

	// ByDate returns clips created on an ISO calendar date (YYYY-MM-DD)
	ByDate(ctx context.Context, isoDate string) ([]*domain.Clip, error)

	// ByKeywordAndTime combines ByKeyword and ByTimeframe
	ByKeywordAndTime(ctx context.Context, keyword string, start, end time.Time) ([]*domain.Clip, error)

	// Latest returns up to limit clips ordered by creation time descending
	Latest(ctx context.Context, limit int) ([]*domain.Clip, error)

	// All returns every clip, newest first
	All(ctx context.Context) ([]*domain.Clip, error)

	// HealthCheck verifies the store is reachable
	HealthCheck(ctx context.Context) error
}

// ClipWriter stores clip records. Used by the import command only.
type ClipWriter interface {
	// Save creates or replaces clips by ID
	Save(ctx context.Context, clips []*domain.Clip) error
}
