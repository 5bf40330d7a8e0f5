package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/reelcraft/internal/db"
	"github.com/hpungsan/reelcraft/internal/errors"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string // required
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete soft-deletes a session. Its generation log is kept and still counts
// toward the quota window.
func (s *Service) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewValidation("session id is required")
	}

	// Verify it exists and belongs to the current user
	if _, err := s.owned(ctx, id, false); err != nil {
		return nil, err
	}
	if err := db.SoftDeleteSession(ctx, s.db, id); err != nil {
		return nil, err
	}
	s.forget(id)

	return &DeleteOutput{
		Deleted: true,
		ID:      id,
	}, nil
}
