package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
	"github.com/custodia-labs/clipsearch/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.ClipStore  = (*ClipStore)(nil)
	_ driven.ClipWriter = (*ClipStore)(nil)
)

const clipColumns = `id, camera_id, image_ref, description, created_at, metadata`

// ClipStore implements driven.ClipStore using PostgreSQL
type ClipStore struct {
	db  *DB
	loc *time.Location
}

// NewClipStore creates a new ClipStore. Calendar dates passed to ByDate
// are interpreted in loc; nil means UTC.
func NewClipStore(db *DB, loc *time.Location) *ClipStore {
	if loc == nil {
		loc = time.UTC
	}
	return &ClipStore{db: db, loc: loc}
}

// ByKeyword returns clips whose description contains keyword, ignoring case
func (s *ClipStore) ByKeyword(ctx context.Context, keyword string) ([]*domain.Clip, error) {
	query := `SELECT ` + clipColumns + ` FROM clips
		WHERE description ILIKE $1
		ORDER BY created_at DESC, id`
	return s.query(ctx, query, likePattern(keyword))
}

// ByTimeframe returns clips created from start through the end second
func (s *ClipStore) ByTimeframe(ctx context.Context, start, end time.Time) ([]*domain.Clip, error) {
	query := `SELECT ` + clipColumns + ` FROM clips
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC, id`
	return s.query(ctx, query, start, domain.ExclusiveEnd(end))
}

// ByDate returns clips created on the given YYYY-MM-DD calendar day
func (s *ClipStore) ByDate(ctx context.Context, isoDate string) ([]*domain.Clip, error) {
	day, err := time.ParseInLocation(domain.DateLayout, isoDate, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q", domain.ErrInvalidInput, isoDate)
	}
	query := `SELECT ` + clipColumns + ` FROM clips
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC, id`
	return s.query(ctx, query, day, day.AddDate(0, 0, 1))
}

// ByKeywordAndTime combines the keyword and timeframe predicates
func (s *ClipStore) ByKeywordAndTime(ctx context.Context, keyword string, start, end time.Time) ([]*domain.Clip, error) {
	query := `SELECT ` + clipColumns + ` FROM clips
		WHERE description ILIKE $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC, id`
	return s.query(ctx, query, likePattern(keyword), start, domain.ExclusiveEnd(end))
}

// Latest returns the newest clips
func (s *ClipStore) Latest(ctx context.Context, limit int) ([]*domain.Clip, error) {
	if limit <= 0 {
		return s.All(ctx)
	}
	query := `SELECT ` + clipColumns + ` FROM clips
		ORDER BY created_at DESC, id
		LIMIT $1`
	return s.query(ctx, query, limit)
}

// All returns every clip, newest first
func (s *ClipStore) All(ctx context.Context) ([]*domain.Clip, error) {
	query := `SELECT ` + clipColumns + ` FROM clips ORDER BY created_at DESC, id`
	return s.query(ctx, query)
}

// HealthCheck verifies the database is reachable
func (s *ClipStore) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

// Save upserts clips in a single transaction
func (s *ClipStore) Save(ctx context.Context, clips []*domain.Clip) error {
	if len(clips) == 0 {
		return nil
	}

	return s.db.inTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO clips (` + clipColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				camera_id = EXCLUDED.camera_id,
				image_ref = EXCLUDED.image_ref,
				description = EXCLUDED.description,
				created_at = EXCLUDED.created_at,
				metadata = EXCLUDED.metadata
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, c := range clips {
			metadataJSON, err := marshalMetadata(c.Metadata)
			if err != nil {
				return fmt.Errorf("clip %s: %w", c.ID, err)
			}
			if _, err := stmt.ExecContext(ctx,
				c.ID,
				c.CameraID,
				c.ImageRef,
				c.Description,
				c.CreatedAt,
				metadataJSON,
			); err != nil {
				return fmt.Errorf("clip %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

func (s *ClipStore) query(ctx context.Context, query string, args ...any) ([]*domain.Clip, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clips []*domain.Clip
	for rows.Next() {
		clip, err := s.scanClip(rows)
		if err != nil {
			return nil, err
		}
		clips = append(clips, clip)
	}
	return clips, rows.Err()
}

func (s *ClipStore) scanClip(rows *sql.Rows) (*domain.Clip, error) {
	var (
		clip     domain.Clip
		metadata []byte
	)
	if err := rows.Scan(
		&clip.ID,
		&clip.CameraID,
		&clip.ImageRef,
		&clip.Description,
		&clip.CreatedAt,
		&metadata,
	); err != nil {
		return nil, err
	}
	clip.CreatedAt = clip.CreatedAt.In(s.loc)

	meta, err := unmarshalMetadata(metadata)
	if err != nil {
		return nil, fmt.Errorf("clip %s: %w", clip.ID, err)
	}
	clip.Metadata = meta
	return &clip, nil
}

// likePattern wraps keyword for a substring ILIKE match, escaping the
// pattern metacharacters so they match literally.
func likePattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(keyword) + "%"
}

// marshalMetadata returns the JSONB value for m, or nil for SQL NULL
func marshalMetadata(m *domain.ClipMetadata) (any, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func unmarshalMetadata(data []byte) (*domain.ClipMetadata, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var m domain.ClipMetadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
