package domain

import "time"

// AIProvider identifies the semantic oracle backend
type AIProvider string

const (
	AIProviderNone   AIProvider = "none"   // naive extraction, no ranking
	AIProviderOpenAI AIProvider = "openai" // api.openai.com or any compatible endpoint
	AIProviderOllama AIProvider = "ollama" // self-hosted OpenAI-compatible endpoint
)

// OracleSettings configures the semantic oracle
type OracleSettings struct {
	Provider AIProvider    `json:"provider" yaml:"provider"`
	Model    string        `json:"model" yaml:"model"`
	APIKey   string        `json:"-" yaml:"api_key"` // Never serialize to JSON
	BaseURL  string        `json:"base_url,omitempty" yaml:"base_url"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// IsConfigured returns true if an oracle should be created
func (s *OracleSettings) IsConfigured() bool {
	if s.Provider == "" || s.Provider == AIProviderNone {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// Validate checks the provider is known
func (s *OracleSettings) Validate() error {
	if s.Provider != "" && !s.Provider.IsValid() {
		return ErrInvalidProvider
	}
	return nil
}

// RequiresAPIKey returns true if this provider requires an API key
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOpenAI:
		return true
	default:
		return false // Self-hosted or disabled
	}
}

// IsValid returns true if this is a known provider
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderNone, AIProviderOpenAI, AIProviderOllama:
		return true
	default:
		return false
	}
}
