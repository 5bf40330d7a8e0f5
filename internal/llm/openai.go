package llm

import (
	"context"
	"encoding/base64"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"

	"github.com/hpungsan/reelcraft/internal/content"
)

// OpenAI calls an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	opts   []option.RequestOption
	models []string
	logger zerolog.Logger
	call   callFunc
}

// NewOpenAI creates an OpenAI client. baseURL may be empty for the default endpoint.
func NewOpenAI(apiKey, baseURL string, models []string, logger zerolog.Logger) *OpenAI {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	o := &OpenAI{opts: opts, models: models, logger: logger}
	o.call = o.complete
	return o
}

// Invoke implements generate.Model.
func (o *OpenAI) Invoke(ctx context.Context, prompt string, image *content.Image) (string, error) {
	return tryModels(ctx, o.logger, o.models, prompt, image, o.call)
}

// Close is a no-op; the SDK holds no long-lived resources.
func (o *OpenAI) Close() error { return nil }

func (o *OpenAI) complete(ctx context.Context, model, prompt string, image *content.Image) (string, error) {
	client := openai.NewClient(o.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{userMessage(prompt, image)},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func userMessage(prompt string, image *content.Image) openai.ChatCompletionMessageParamUnion {
	if image == nil || len(image.Data) == 0 {
		return openai.UserMessage(prompt)
	}
	return openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL(image),
		}),
	})
}

func dataURL(image *content.Image) string {
	mime := image.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
}
