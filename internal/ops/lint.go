package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/reelcraft/internal/content"
)

// LintInput contains parameters for the Lint operation.
type LintInput struct {
	ID string // required
}

// LintOutput contains the result of the Lint operation.
type LintOutput struct {
	ID         string              `json:"id"`
	Valid      bool                `json:"valid"`
	Violations []content.Violation `json:"violations"`
}

// Lint checks a session's current content against the platform rules.
func (s *Service) Lint(ctx context.Context, input LintInput) (*LintOutput, error) {
	id := strings.TrimSpace(input.ID)
	ls, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}

	violations := lintState(ls.ctrl.Snapshot().Current)
	return &LintOutput{
		ID:         id,
		Valid:      len(violations) == 0,
		Violations: violations,
	}, nil
}

// lintState never returns nil so outputs encode an empty array.
func lintState(c *content.Content) []content.Violation {
	if c == nil {
		return []content.Violation{}
	}
	violations := content.Lint(c)
	if violations == nil {
		violations = []content.Violation{}
	}
	return violations
}
