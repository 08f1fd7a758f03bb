// Package llm wraps the hosted language models the analyzer can call. Every
// backend reduces to a single prompt-in, text-out call.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Providers understood by New.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Default models per provider.
const (
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// ErrNotConfigured is returned by a generator that has no credentials.
var ErrNotConfigured = errors.New("language model not configured")

// Generator produces free-form text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config selects and authenticates a backend.
type Config struct {
	Provider     string
	Model        string
	GeminiAPIKey string
	OpenAIAPIKey string
	Temperature  float32
	// BaseURL overrides the provider endpoint.
	BaseURL string
	// JSONOutput asks backends that support it for a JSON-only response.
	JSONOutput bool
}

// Unconfigured is a Generator that always fails with ErrNotConfigured.
type Unconfigured struct {
	Provider string
}

// Generate implements Generator.
func (u Unconfigured) Generate(context.Context, string) (string, error) {
	return "", fmt.Errorf("%s: %w", u.Provider, ErrNotConfigured)
}

// New builds the generator for cfg.Provider. A missing API key yields an
// Unconfigured generator so callers can start and report the capability as
// unavailable per request.
func New(ctx context.Context, cfg Config) (Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderGemini
	}

	switch provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return Unconfigured{Provider: provider}, nil
		}
		return NewGemini(ctx, cfg)
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return Unconfigured{Provider: provider}, nil
		}
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, prompt string) (string, error)

// Generate implements Generator.
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
