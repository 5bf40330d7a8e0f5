package ops

import (
	"context"
	"strings"
)

// VariationInput contains parameters for the Variation operation.
type VariationInput struct {
	ID          string // required
	Instruction string // optional, default: seeded variation prompt
}

// Variation regenerates the whole bundle of a session. The result becomes the
// new baseline and field histories start over.
func (s *Service) Variation(ctx context.Context, input VariationInput) (*SessionOutput, error) {
	ls, err := s.live(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	out, err := ls.ctrl.RegenerateVariation(ctx, strings.TrimSpace(input.Instruction))
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, strings.TrimSpace(input.ID), ls, out)
}
