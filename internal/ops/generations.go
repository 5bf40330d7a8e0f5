package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/reelcraft/internal/db"
)

// GenerationsInput contains parameters for the Generations operation.
type GenerationsInput struct {
	SessionID string // optional filter
	Limit     int
	Offset    int
}

// GenerationsOutput contains the result of the Generations operation.
type GenerationsOutput struct {
	Items      []db.Generation `json:"items"`
	Pagination Pagination      `json:"pagination"`
	Sort       string          `json:"sort"`
}

// Generations lists the current user's generation log, newest first.
func (s *Service) Generations(ctx context.Context, input GenerationsInput) (*GenerationsOutput, error) {
	user, err := s.plan.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	limit, offset := clampPage(input.Limit, input.Offset)

	items, total, err := db.ListGenerations(ctx, s.db, db.GenerationFilter{
		UserID:    user.ID,
		SessionID: strings.TrimSpace(input.SessionID),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []db.Generation{}
	}

	return &GenerationsOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}
