package ops

import (
	"context"

	"github.com/hpungsan/reelcraft/internal/plan"
)

// Usage reports the current user's plan and quota consumption.
func (s *Service) Usage(ctx context.Context) (*plan.Usage, error) {
	return s.plan.Usage(ctx)
}
