package explain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/nao1215/crmscan/internal/model"
)

// OpenAIGenerator produces explanations through an OpenAI-compatible chat
// completion API.
//
// Design decision: One generator serves both OpenAI and Groq because:
// 1. Groq exposes the same chat completion wire format
// 2. Only the base URL and model name differ between the two
// 3. A single implementation keeps the error mapping in one place
type OpenAIGenerator struct {
	// client is the chat completion client.
	client *openai.Client

	// model is the model name sent with each request.
	model string
}

// NewOpenAIGenerator creates a generator backed by an OpenAI-compatible
// endpoint. An empty baseURL targets the OpenAI API itself.
func NewOpenAIGenerator(apiKey, model, baseURL string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, report *model.QualityReport) (string, error) {
	if report == nil || !report.HasIssues() {
		return "", nil
	}

	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(report),
			},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		}
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
