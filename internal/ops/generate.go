package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/db"
	"github.com/hpungsan/reelcraft/internal/errors"
	"github.com/hpungsan/reelcraft/internal/refine"
)

// GenerateInput contains parameters for the Generate operation.
type GenerateInput struct {
	Platform string // required: YouTube, TikTok, Instagram Reels (or slug)
	Topic    string // required
	Keywords string
	Tone     string
	Duration string
	Language string // default: config default_language
	Image    *content.Image
}

// Generate starts a new session with a fresh bundle. It is the only operation
// that spends NEW quota.
func (s *Service) Generate(ctx context.Context, input GenerateInput) (*SessionOutput, error) {
	req, err := s.newRequest(input)
	if err != nil {
		return nil, err
	}

	user, err := s.plan.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	id, err := db.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	ctrl := refine.New(s.gen, s.plan, s.plan, s.controllerOptions(id)...)
	out, err := ctrl.StartGeneration(ctx, req)
	if err != nil {
		return nil, err
	}

	updatedAt, err := s.createSession(ctx, id, user.ID, out.State)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[id] = &liveSession{ctrl: ctrl}
	s.mu.Unlock()

	s.logger.Info().
		Str("session", id).
		Str("platform", string(req.Platform)).
		Bool("fallback", out.Fallback).
		Msg("session started")

	return &SessionOutput{
		ID:          id,
		State:       out.State,
		Applied:     out.Applied,
		Fallback:    out.Fallback,
		Notice:      out.Notice,
		ModelsTried: out.ModelsTried,
		UpdatedAt:   updatedAt,
	}, nil
}

// newRequest turns surface input into a validated NEW request.
func (s *Service) newRequest(input GenerateInput) (content.Request, error) {
	if strings.TrimSpace(input.Platform) == "" {
		return content.Request{}, errors.NewValidation("platform is required")
	}
	platform, err := content.ParsePlatform(input.Platform)
	if err != nil {
		return content.Request{}, err
	}

	lang := strings.TrimSpace(input.Language)
	if lang == "" && s.cfg != nil {
		lang = s.cfg.DefaultLanguage
	}

	req := content.Request{
		Action:   content.ActionNew,
		Platform: platform,
		Topic:    strings.TrimSpace(input.Topic),
		Keywords: strings.TrimSpace(input.Keywords),
		Tone:     content.Tone(strings.ToLower(strings.TrimSpace(input.Tone))),
		Duration: strings.TrimSpace(input.Duration),
		Language: lang,
		Image:    input.Image,
	}
	if err := req.Validate(); err != nil {
		return content.Request{}, err
	}
	return req, nil
}
