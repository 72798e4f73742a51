package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// DB is a pooled connection to the clip database
type DB struct {
	*sql.DB
}

// Config describes how to reach the clip database
type Config struct {
	// URL is a postgres:// URL or a key=value connection string
	URL string

	// TimeZone is the IANA zone set as the session TimeZone, so timestamps
	// read with psql match the dates the store resolves. Empty keeps the
	// server default.
	TimeZone string

	// SkipSchema leaves the schema untouched, for read-only roles
	SkipSchema bool

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConfig returns pool settings sized for one search process
func DefaultConfig(url string) Config {
	return Config{
		URL:             url,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// dataSource returns the connection string with the session zone applied.
// A zone already present in the URL wins.
func (c Config) dataSource() (string, error) {
	if c.TimeZone == "" {
		return c.URL, nil
	}
	if strings.HasPrefix(c.URL, "postgres://") || strings.HasPrefix(c.URL, "postgresql://") {
		u, err := url.Parse(c.URL)
		if err != nil {
			return "", fmt.Errorf("invalid database url: %w", err)
		}
		q := u.Query()
		if q.Get("timezone") == "" {
			q.Set("timezone", c.TimeZone)
		}
		u.RawQuery = q.Encode()
		return u.String(), nil
	}
	if strings.Contains(strings.ToLower(c.URL), "timezone=") {
		return c.URL, nil
	}
	return strings.TrimSpace(c.URL + " timezone='" + c.TimeZone + "'"), nil
}

// Open connects to the clip database and applies the clip schema
func Open(ctx context.Context, cfg Config) (*DB, error) {
	dsn, err := cfg.dataSource()
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db := &DB{DB: sqlDB}
	if err := db.HealthCheck(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if cfg.SkipSchema {
		return db, nil
	}
	if err := db.InitSchema(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// InitSchema creates the clips table and its indexes. Idempotent.
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize clip schema: %w", err)
	}
	return nil
}

// HealthCheck verifies the database is reachable
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// inTx runs fn in a transaction, committing only when fn succeeds
func (db *DB) inTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clips: %w", err)
	}
	return nil
}
