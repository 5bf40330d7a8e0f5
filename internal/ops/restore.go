package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/errors"
)

// RestoreInput contains parameters for the Restore operation.
type RestoreInput struct {
	ID    string // required
	Field string // required
	Index int    // position in the field history, oldest first
}

// Restore puts a previous value of a field back. The history itself is left
// as it is.
func (s *Service) Restore(ctx context.Context, input RestoreInput) (*SessionOutput, error) {
	if strings.TrimSpace(input.Field) == "" {
		return nil, errors.NewValidation("field is required")
	}
	field, err := content.ParseField(input.Field)
	if err != nil {
		return nil, err
	}

	id := strings.TrimSpace(input.ID)
	ls, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}

	history := ls.ctrl.History(field)
	if input.Index < 0 || input.Index >= len(history) {
		return nil, errors.NewValidation(fmt.Sprintf(
			"history index %d out of range for %s (%d entries)", input.Index, field.Name(), len(history)))
	}
	if _, err := ls.ctrl.RestoreField(field, history[input.Index].Value); err != nil {
		return nil, err
	}

	updatedAt, err := s.save(ctx, id, ls)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{
		ID:        id,
		State:     ls.ctrl.Snapshot(),
		Applied:   []content.Field{field},
		UpdatedAt: updatedAt,
	}, nil
}
