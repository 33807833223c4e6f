package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	ProviderGemini     = "gemini"
	DefaultGeminiModel = "gemini-flash-lite-latest"
)

// GeminiClient calls the Gemini API through the genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(
		ctx,
		c.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", &ProviderError{Provider: ProviderGemini, Err: err}
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &ProviderError{Provider: ProviderGemini, Err: ErrEmptyResponse}
	}
	return text, nil
}

func (c *GeminiClient) Provider() string { return ProviderGemini }
func (c *GeminiClient) Model() string    { return c.model }
