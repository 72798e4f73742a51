package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clipsearch/internal/config"
	"github.com/custodia-labs/clipsearch/internal/core/ports/driven"
	"github.com/custodia-labs/clipsearch/internal/core/ports/driving"
)

// App holds the wired services a command runs against
type App struct {
	Store  driven.ClipStore
	Writer driven.ClipWriter
	Search driving.SearchService
	Close  func() error
}

// Opener builds an App from configuration. main supplies the real one.
type Opener func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	version = "dev"
	cfg     *config.Config
	logger  *slog.Logger
	opener  Opener
)

var rootCmd = &cobra.Command{
	Use:   "clipsearch",
	Short: "Natural-language search over timestamped image clips",
	Long: `clipsearch answers free-text questions about stored camera clips.

It extracts search terms and time windows from the query, retrieves
candidate clips from the store and ranks them with a language model.

Example usage:
  clipsearch query "red car near the gate yesterday afternoon"
  clipsearch query                      # interactive prompt
  clipsearch import clips.json
  clipsearch serve`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if logFormat != "" {
			cfg.Logging.Format = logFormat
		}

		logger, err = newLogger(cmd.ErrOrStderr(), cfg.Logging)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./clipsearch.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
}

// Execute runs the root command
func Execute(v string, open Opener) {
	version = v
	opener = open
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openApp wires services for commands that need the store
func openApp(ctx context.Context) (*App, error) {
	if opener == nil {
		return nil, errors.New("no service opener configured")
	}
	app, err := opener(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if app.Close == nil {
		app.Close = func() error { return nil }
	}
	return app, nil
}

func newLogger(w io.Writer, lc config.LoggingConfig) (*slog.Logger, error) {
	level, err := config.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(lc.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", lc.Format)
}
