package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/nao1215/crmscan/internal/model"
)

// AnthropicGenerator produces explanations through the Anthropic Messages
// API.
type AnthropicGenerator struct {
	// client is the Anthropic API client.
	client *anthropic.Client

	// model is the model name sent with each request.
	model string
}

// NewAnthropicGenerator creates a generator backed by the Anthropic API.
func NewAnthropicGenerator(apiKey, model string) *AnthropicGenerator {
	return &AnthropicGenerator{
		client: anthropic.NewClient(apiKey),
		model:  model,
	}
}

// Generate implements Generator.
func (g *AnthropicGenerator) Generate(ctx context.Context, report *model.QualityReport) (string, error) {
	if report == nil || !report.HasIssues() {
		return "", nil
	}

	resp, err := g.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(g.model),
		System:    SystemPrompt,
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(BuildPrompt(report)),
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("message creation failed: %w", err)
	}

	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(*resp.Content[0].Text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
