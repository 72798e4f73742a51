package domain

import (
	"errors"
	"testing"
)

func TestAIProviderConstants(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected string
	}{
		{AIProviderNone, "none"},
		{AIProviderOpenAI, "openai"},
		{AIProviderOllama, "ollama"},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			if string(tt.provider) != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, string(tt.provider))
			}
		})
	}
}

func TestOracleSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings OracleSettings
		want     bool
	}{
		{"empty", OracleSettings{}, false},
		{"none", OracleSettings{Provider: AIProviderNone}, false},
		{"openai without key", OracleSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", OracleSettings{Provider: AIProviderOpenAI, APIKey: "sk-test"}, true},
		{"ollama without key", OracleSettings{Provider: AIProviderOllama, BaseURL: "http://localhost:11434/v1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.settings.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOracleSettings_Validate(t *testing.T) {
	valid := OracleSettings{Provider: AIProviderOllama}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	invalid := OracleSettings{Provider: "anthropic"}
	if err := invalid.Validate(); !errors.Is(err, ErrInvalidProvider) {
		t.Errorf("expected ErrInvalidProvider, got %v", err)
	}
}
