package ai

import (
	"fmt"
	"log/slog"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
	"github.com/custodia-labs/clipsearch/internal/core/ports/driven"
)

// Ensure Factory implements OracleFactory
var _ driven.OracleFactory = (*Factory)(nil)

const defaultOllamaURL = "http://localhost:11434/v1"

// Factory creates semantic oracles based on configuration
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a new oracle factory
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateOracle creates a semantic oracle from settings.
// Returns nil, nil when no oracle is configured.
func (f *Factory) CreateOracle(settings *domain.OracleSettings) (driven.SemanticOracle, error) {
	if settings == nil {
		return nil, nil
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", err, settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	cfg := OracleConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
		Logger:  f.logger.With("oracle", settings.Provider),
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
	case domain.AIProviderOllama:
		if cfg.BaseURL == "" {
			cfg.BaseURL = defaultOllamaURL
		}
		if cfg.APIKey == "" {
			// the client sends a bearer token; Ollama ignores it
			cfg.APIKey = "ollama"
		}
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}

	oracle, err := NewOpenAIOracle(cfg)
	if err != nil {
		return nil, err
	}
	return oracle, nil
}
