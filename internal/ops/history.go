package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/errors"
	"github.com/hpungsan/reelcraft/internal/refine"
)

// HistoryInput contains parameters for the History operation.
type HistoryInput struct {
	ID    string // required
	Field string // required
}

// HistoryOutput shows one field's previous values next to its current and
// baseline values.
type HistoryOutput struct {
	ID       string                `json:"id"`
	Field    content.Field         `json:"field"`
	Current  content.Value         `json:"current"`
	Baseline content.Value         `json:"baseline"`
	Modified bool                  `json:"modified"`
	Entries  []refine.HistoryEntry `json:"entries"`
}

// History reports the recorded values of a field, oldest first.
func (s *Service) History(ctx context.Context, input HistoryInput) (*HistoryOutput, error) {
	if strings.TrimSpace(input.Field) == "" {
		return nil, errors.NewValidation("field is required")
	}
	field, err := content.ParseField(input.Field)
	if err != nil {
		return nil, err
	}

	ls, err := s.live(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	state := ls.ctrl.Snapshot()

	entries := state.HistoryOf(field)
	if entries == nil {
		entries = []refine.HistoryEntry{}
	}
	out := &HistoryOutput{
		ID:       strings.TrimSpace(input.ID),
		Field:    field,
		Modified: state.IsModified(field),
		Entries:  entries,
	}
	if state.Current != nil {
		out.Current = state.Current.Get(field)
	}
	if state.Baseline != nil {
		out.Baseline = state.Baseline.Get(field)
	}
	return out, nil
}
