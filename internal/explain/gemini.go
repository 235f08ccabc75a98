package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/nao1215/crmscan/internal/model"
)

// GeminiGenerator produces explanations through the Gemini API.
type GeminiGenerator struct {
	// client is the Gemini API client.
	client *genai.Client

	// model is the model name used for content generation.
	model string
}

// NewGeminiGenerator creates a generator backed by the Gemini API.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client creation failed: %w", err)
	}
	return &GeminiGenerator{
		client: client,
		model:  model,
	}, nil
}

// Generate implements Generator.
// Gemini takes the full conversation as one part, so the system framing
// is prepended to the user prompt.
func (g *GeminiGenerator) Generate(ctx context.Context, report *model.QualityReport) (string, error) {
	if report == nil || !report.HasIssues() {
		return "", nil
	}

	generative := g.client.GenerativeModel(g.model)
	resp, err := generative.GenerateContent(ctx, genai.Text(SystemPrompt+"\n\n"+BuildPrompt(report)))
	if err != nil {
		return "", fmt.Errorf("content generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	if txt, ok := resp.Candidates[0].Content.Parts[0].(genai.Text); ok {
		text := strings.TrimSpace(string(txt))
		if text != "" {
			return text, nil
		}
	}
	return "", ErrEmptyResponse
}
