package explain

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Supported provider names. Matching is case-insensitive.
const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// GroqBaseURL is the OpenAI-compatible endpoint Groq exposes.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// Default model per provider, used when no model is configured.
const (
	DefaultGroqModel      = "llama-3.3-70b-versatile"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultGeminiModel    = "gemini-1.5-flash"
)

// New creates a Generator for the named provider.
//
// An empty provider selects Groq. An empty model selects the provider's
// default. An empty apiKey falls back to the provider's environment
// variable; if that is also empty, New returns ErrMissingAPIKey so the
// caller can run the deterministic pipeline without narrative.
func New(ctx context.Context, provider, model, apiKey string) (Generator, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		provider = ProviderGroq
	}

	switch provider {
	case ProviderGroq:
		key, err := resolveAPIKey(apiKey, "GROQ_API_KEY")
		if err != nil {
			return nil, err
		}
		if model == "" {
			model = DefaultGroqModel
		}
		return NewOpenAIGenerator(key, model, GroqBaseURL), nil

	case ProviderOpenAI:
		key, err := resolveAPIKey(apiKey, "OPENAI_API_KEY")
		if err != nil {
			return nil, err
		}
		if model == "" {
			model = DefaultOpenAIModel
		}
		return NewOpenAIGenerator(key, model, ""), nil

	case ProviderAnthropic:
		key, err := resolveAPIKey(apiKey, "ANTHROPIC_API_KEY")
		if err != nil {
			return nil, err
		}
		if model == "" {
			model = DefaultAnthropicModel
		}
		return NewAnthropicGenerator(key, model), nil

	case ProviderGemini:
		key, err := resolveAPIKey(apiKey, "GEMINI_API_KEY")
		if err != nil {
			return nil, err
		}
		if model == "" {
			model = DefaultGeminiModel
		}
		return NewGeminiGenerator(ctx, key, model)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}

// resolveAPIKey returns the explicit key, the environment fallback, or
// ErrMissingAPIKey naming the variable to set.
func resolveAPIKey(apiKey, envVar string) (string, error) {
	if apiKey != "" {
		return apiKey, nil
	}
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: set %s", ErrMissingAPIKey, envVar)
}
