package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/hpungsan/reelcraft/internal/content"
)

// Gemini calls Google's Gemini API, trying each configured model in order.
type Gemini struct {
	client *genai.Client
	models []string
	logger zerolog.Logger
	call   callFunc
}

// NewGemini creates a Gemini client for the given API key.
func NewGemini(ctx context.Context, apiKey string, models []string, logger zerolog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g := &Gemini{client: client, models: models, logger: logger}
	g.call = g.generate
	return g, nil
}

// Invoke implements generate.Model.
func (g *Gemini) Invoke(ctx context.Context, prompt string, image *content.Image) (string, error) {
	return tryModels(ctx, g.logger, g.models, prompt, image, g.call)
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Gemini) generate(ctx context.Context, name, prompt string, image *content.Image) (string, error) {
	model := g.client.GenerativeModel(name)
	model.ResponseMIMEType = "application/json"

	parts := []genai.Part{genai.Text(prompt)}
	if image != nil && len(image.Data) > 0 {
		parts = append(parts, genai.Blob{MIMEType: image.MIMEType, Data: image.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}
