package ops

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hpungsan/reelcraft/internal/db"
	"github.com/hpungsan/reelcraft/internal/errors"
	"github.com/hpungsan/reelcraft/internal/generate"
	"github.com/hpungsan/reelcraft/internal/refine"
)

// maxImportBytes caps the size of an import file.
const maxImportBytes = 1 << 20

// ImportInput contains parameters for the Import operation. The form fields
// describe the imported content for later refinements.
type ImportInput struct {
	Path     string // required, a full JSON export
	Platform string // required
	Topic    string // default: the imported main title
	Keywords string
	Tone     string
	Duration string
	Language string
}

// Import starts a session from a JSON export. The imported bundle becomes
// current and baseline. Import spends no quota and is not logged as a
// generation.
func (s *Service) Import(ctx context.Context, input ImportInput) (*SessionOutput, error) {
	path := strings.TrimSpace(input.Path)
	if err := ValidatePath(path, PathCheckRead, s.cfg); err != nil {
		return nil, err
	}
	if strings.ToLower(filepath.Ext(path)) != ".json" {
		return nil, errors.NewValidation("import reads JSON exports only")
	}

	file, err := openFileNoFollowRead(path)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxImportBytes+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	if len(raw) > maxImportBytes {
		return nil, errors.NewValidation(fmt.Sprintf("import file exceeds %d bytes", maxImportBytes))
	}
	c, err := generate.ParseResponse(string(raw))
	if err != nil {
		return nil, err
	}

	topic := strings.TrimSpace(input.Topic)
	if topic == "" {
		topic = c.MainTitle
	}
	req, err := s.newRequest(GenerateInput{
		Platform: input.Platform,
		Topic:    topic,
		Keywords: input.Keywords,
		Tone:     input.Tone,
		Duration: input.Duration,
		Language: input.Language,
	})
	if err != nil {
		return nil, err
	}
	c.Platform = req.Platform

	user, err := s.plan.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	id, err := db.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	state := refine.NewState(req, c)
	updatedAt, err := s.createSession(ctx, id, user.ID, state)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("session", id).Str("path", path).Msg("session imported")
	return &SessionOutput{
		ID:        id,
		State:     state,
		UpdatedAt: updatedAt,
	}, nil
}
