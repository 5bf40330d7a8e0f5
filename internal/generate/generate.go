// Package generate runs one generation call: prompt, model, parse, sanitize,
// and the templated fallback when the model cannot deliver.
package generate

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/errors"
	"github.com/hpungsan/reelcraft/internal/fallback"
	"github.com/hpungsan/reelcraft/internal/prompt"
	"github.com/hpungsan/reelcraft/internal/sanitize"
)

// Model is the external generative model.
type Model interface {
	// Invoke sends prompt (and an optional image) and returns the raw answer text.
	Invoke(ctx context.Context, prompt string, image *content.Image) (string, error)
}

// modelsTrier is implemented by adapter errors that know which model names
// were attempted before giving up.
type modelsTrier interface {
	ModelsTried() []string
}

// Result is the outcome of a generation. Fallback marks templated content
// produced without a usable model answer.
type Result struct {
	Content     *content.Content `json:"content"`
	Fallback    bool             `json:"fallback"`
	Notice      string           `json:"notice,omitempty"`
	ModelsTried []string         `json:"models_tried,omitempty"`
	Cause       error            `json:"-"`
}

// Generator turns requests into content.
type Generator struct {
	model     Model
	sanitizer *sanitize.Sanitizer
	logger    zerolog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithSanitizer replaces the default entropy-seeded sanitizer.
func WithSanitizer(s *sanitize.Sanitizer) Option {
	return func(g *Generator) { g.sanitizer = s }
}

// New creates a Generator backed by model.
func New(model Model, opts ...Option) *Generator {
	g := &Generator{model: model, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	if g.sanitizer == nil {
		g.sanitizer = sanitize.New(nil)
	}
	return g
}

// Generate produces content for req. The only error returned is request
// validation; model and parse failures yield fallback content instead.
func (g *Generator) Generate(ctx context.Context, req content.Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Action == "" {
		req.Action = content.ActionNew
	}

	raw, err := g.model.Invoke(ctx, prompt.Build(req), req.Image)
	if err != nil {
		if _, ok := errors.As(err); !ok {
			err = errors.NewTransport(err)
		}
		return g.fallback(req, err), nil
	}

	parsed, err := ParseResponse(raw)
	if err != nil {
		return g.fallback(req, err), nil
	}

	out := g.sanitizer.Sanitize(parsed, req)
	if violations := content.Lint(out); len(violations) > 0 {
		g.logger.Debug().Int("violations", len(violations)).Str("first", violations[0].String()).
			Msg("sanitized content still has lint violations")
	}
	return &Result{Content: out}, nil
}

func (g *Generator) fallback(req content.Request, cause error) *Result {
	var tried []string
	var mt modelsTrier
	if stderrors.As(cause, &mt) {
		tried = mt.ModelsTried()
	}

	g.logger.Warn().Err(cause).
		Str("action", string(req.Action)).
		Str("platform", string(req.Platform)).
		Strs("models_tried", tried).
		Msg("model unavailable, using fallback content")

	return &Result{
		Content:     fallback.Synthesize(req),
		Fallback:    true,
		Notice:      Notice(tried),
		ModelsTried: tried,
		Cause:       cause,
	}
}

// Notice is the user-facing message attached to fallback results.
func Notice(modelsTried []string) string {
	msg := "Fallback content used: the model was unavailable or returned malformed output. Check your quota or model configuration."
	if len(modelsTried) > 0 {
		msg += " Models tried: " + strings.Join(modelsTried, ", ") + "."
	}
	return msg
}
