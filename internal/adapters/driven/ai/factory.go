// Package ai provides factory functions for creating generation adapters.
package ai

import (
	"fmt"
	"time"

	"github.com/custodia-labs/axchat/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/axchat/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/axchat/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/axchat/internal/core/ports/driven"
)

// Supported generation providers.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// GeneratorSettings selects and configures a generation backend.
type GeneratorSettings struct {
	// Provider picks the backend (default: ollama).
	Provider string

	// Model overrides the provider's default model.
	Model string

	// Host overrides the provider's base URL.
	Host string

	// APIKey authenticates hosted providers. Unused by ollama.
	APIKey string

	// Timeout bounds one generation call.
	Timeout time.Duration

	// RequestsPerMinute throttles generation calls. Only ollama
	// supports throttling; hosted providers meter server-side.
	RequestsPerMinute int
}

// CreateGenerator creates a generation adapter for the configured provider.
func CreateGenerator(settings GeneratorSettings) (driven.Generator, error) {
	provider := settings.Provider
	if provider == "" {
		provider = ProviderOllama
	}

	switch provider {
	case ProviderOllama:
		return ollama.New(ollama.Config{
			BaseURL:           settings.Host,
			Model:             settings.Model,
			Timeout:           settings.Timeout,
			RequestsPerMinute: settings.RequestsPerMinute,
		}), nil

	case ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.Host,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case ProviderAnthropic:
		return anthropic.New(anthropic.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.Host,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	default:
		return nil, fmt.Errorf("unknown generation provider %q", provider)
	}
}
