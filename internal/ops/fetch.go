package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/db"
	"github.com/hpungsan/reelcraft/internal/errors"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID             string // required
	IncludeDeleted bool
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	db.Session                     // embedded (copy, not pointer)
	Violations []content.Violation `json:"violations"`
}

// Fetch retrieves a session with the lint report of its current content.
func (s *Service) Fetch(ctx context.Context, input FetchInput) (*FetchOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewValidation("session id is required")
	}
	sess, err := s.owned(ctx, id, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	return &FetchOutput{
		Session:    *sess,
		Violations: lintState(sess.State.Current),
	}, nil
}
