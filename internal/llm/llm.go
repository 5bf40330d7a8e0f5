// Package llm adapts generative model providers to generate.Model.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hpungsan/reelcraft/internal/config"
	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/errors"
	"github.com/hpungsan/reelcraft/internal/generate"
)

// Client is a model that holds provider resources.
type Client interface {
	generate.Model
	Close() error
}

// FailedError reports that every configured model failed.
type FailedError struct {
	Models []string
	Err    error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("all models failed (%s): %v", strings.Join(e.Models, ", "), e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

// ModelsTried returns the model names attempted, in order.
func (e *FailedError) ModelsTried() []string { return e.Models }

// callFunc invokes a single named model.
type callFunc func(ctx context.Context, model, prompt string, image *content.Image) (string, error)

// tryModels calls each model in order until one returns non-empty text.
func tryModels(ctx context.Context, logger zerolog.Logger, models []string, prompt string, image *content.Image, call callFunc) (string, error) {
	if len(models) == 0 {
		return "", errors.NewTransport(fmt.Errorf("no models configured"))
	}

	tried := make([]string, 0, len(models))
	var lastErr error
	for _, name := range models {
		tried = append(tried, name)
		text, err := call(ctx, name, prompt, image)
		if err == nil && strings.TrimSpace(text) == "" {
			err = fmt.Errorf("empty response from %s", name)
		}
		if err == nil {
			return text, nil
		}
		lastErr = err
		logger.Debug().Err(err).Str("model", name).Msg("model call failed")
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.NewTransport(&FailedError{Models: tried, Err: lastErr})
}

// New builds the client selected by cfg.Provider. A missing API key yields a
// client that always fails, so generation degrades to fallback content.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Client, error) {
	switch cfg.Provider {
	case config.ProviderMock:
		return NewMock(), nil
	case config.ProviderGemini, config.ProviderOpenAI:
	default:
		return nil, errors.NewValidation("unknown provider: " + cfg.Provider)
	}

	key := cfg.APIKey()
	if key == "" {
		logger.Warn().Str("env", cfg.APIKeyEnv).Msg("API key not set, generation will use fallback content")
		return unavailable{reason: cfg.APIKeyEnv + " is not set"}, nil
	}

	if cfg.Provider == config.ProviderOpenAI {
		return NewOpenAI(key, cfg.BaseURL, cfg.Models, logger), nil
	}
	return NewGemini(ctx, key, cfg.Models, logger)
}

// unavailable fails every call.
type unavailable struct {
	reason string
}

func (u unavailable) Invoke(context.Context, string, *content.Image) (string, error) {
	return "", errors.NewTransport(fmt.Errorf("model unavailable: %s", u.reason))
}

func (unavailable) Close() error { return nil }
