package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
	Model() string
}

// ProviderError wraps a failure reported by the LLM provider. Its message
// is shown to the user as is; callers do not retry.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ErrEmptyResponse is returned when the provider sends no text.
var ErrEmptyResponse = errors.New("empty response")

// Unavailable is a Generator for a provider without credentials. Every
// call fails so the rest of the app keeps working.
type Unavailable struct {
	Name   string
	Reason string
}

func (u Unavailable) Generate(context.Context, string) (string, error) {
	return "", &ProviderError{Provider: u.Name, Err: errors.New(u.Reason)}
}

func (u Unavailable) Provider() string { return u.Name }
func (u Unavailable) Model() string    { return "" }

// Config selects and configures the provider.
type Config struct {
	Provider        string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
}

// New builds the Generator named by cfg.Provider. A missing API key yields
// an Unavailable generator rather than an error.
func New(ctx context.Context, cfg Config) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return Unavailable{Name: ProviderGemini, Reason: "GEMINI_API_KEY is not set"}, nil
		}
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return Unavailable{Name: ProviderAnthropic, Reason: "ANTHROPIC_API_KEY is not set"}, nil
		}
		return NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
