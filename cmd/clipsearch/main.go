// Command clipsearch answers natural-language queries over stored clips.
//
// Usage:
//
//	clipsearch serve                 # HTTP API on :8080
//	clipsearch query "red car"       # one-shot search
//	clipsearch query                 # interactive prompt
//	clipsearch import clips.json     # load clip records
//
// Configuration is read from ./clipsearch.yaml and overridden by
// DATABASE_URL, REDIS_URL, STORE_BACKEND, PORT, OPENAI_API_KEY,
// OPENAI_BASE_URL, GPT_MODEL, RELEVANCE_THRESHOLD, MAX_RESULTS and LOG_LEVEL.
package main

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/clipsearch/internal/adapters/driven/ai"
	"github.com/custodia-labs/clipsearch/internal/adapters/driven/postgres"
	"github.com/custodia-labs/clipsearch/internal/adapters/driven/redis"
	"github.com/custodia-labs/clipsearch/internal/adapters/driving/cli"
	"github.com/custodia-labs/clipsearch/internal/config"
	"github.com/custodia-labs/clipsearch/internal/core/ports/driven"
	"github.com/custodia-labs/clipsearch/internal/core/services"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	cli.Execute(version, openApp)
}

// openApp connects the configured clip store and oracle and builds the
// search service on top of them.
func openApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*cli.App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}

	var (
		store  driven.ClipStore
		writer driven.ClipWriter
		closer func() error
	)

	switch cfg.Store.Backend {
	case config.BackendRedis:
		logger.Info("connecting to redis")
		opts, err := goredis.ParseURL(cfg.Store.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		client := goredis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s := redis.NewClipStore(client, loc)
		store, writer, closer = s, s, client.Close

	default:
		logger.Info("connecting to postgres")
		dbCfg := postgres.DefaultConfig(cfg.Store.DatabaseURL)
		if cfg.Store.MaxOpenConns > 0 {
			dbCfg.MaxOpenConns = cfg.Store.MaxOpenConns
		}
		if cfg.Store.MaxIdleConns > 0 {
			dbCfg.MaxIdleConns = cfg.Store.MaxIdleConns
		}
		dbCfg.TimeZone = cfg.Store.Timezone
		db, err := postgres.Open(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s := postgres.NewClipStore(db, loc)
		store, writer, closer = s, s, db.Close
	}

	var factory driven.OracleFactory = ai.NewFactory(logger)
	oracle, err := factory.CreateOracle(&cfg.Oracle)
	if err != nil {
		closer()
		return nil, fmt.Errorf("failed to create oracle: %w", err)
	}
	if oracle == nil {
		logger.Warn("no language model configured, using keyword extraction without ranking")
	} else {
		logger.Info("language model configured", "provider", cfg.Oracle.Provider, "model", oracle.Model())
	}

	search := services.NewSearchService(services.SearchServiceConfig{
		Store:    store,
		Oracle:   oracle,
		Settings: cfg.SearchSettings(),
		Logger:   logger,
		Location: loc,
	})

	return &cli.App{
		Store:  store,
		Writer: writer,
		Search: search,
		Close: func() error {
			if oracle != nil {
				oracle.Close()
			}
			return closer()
		},
	}, nil
}
