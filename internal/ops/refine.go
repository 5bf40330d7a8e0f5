package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/errors"
)

// RefineInput contains parameters for the Refine operation.
type RefineInput struct {
	ID          string // required
	Field       string // required: wire key or snake_case name
	Instruction string // required
}

// Refine rewrites one field of a session following an instruction.
func (s *Service) Refine(ctx context.Context, input RefineInput) (*SessionOutput, error) {
	if strings.TrimSpace(input.Field) == "" {
		return nil, errors.NewValidation("field is required")
	}
	field, err := content.ParseField(input.Field)
	if err != nil {
		return nil, err
	}
	instruction, err := requireInstruction(input.Instruction)
	if err != nil {
		return nil, err
	}

	ls, err := s.live(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	out, err := ls.ctrl.RefineField(ctx, field, instruction)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, strings.TrimSpace(input.ID), ls, out)
}

// RefineBatchInput contains parameters for the RefineBatch operation.
type RefineBatchInput struct {
	ID          string   // required
	Fields      []string // required, at least one
	Instruction string   // required
}

// RefineBatch rewrites several fields of a session with one model call.
func (s *Service) RefineBatch(ctx context.Context, input RefineBatchInput) (*SessionOutput, error) {
	fields, err := content.ParseFields(input.Fields)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errors.NewValidation("at least one field is required")
	}
	instruction, err := requireInstruction(input.Instruction)
	if err != nil {
		return nil, err
	}

	ls, err := s.live(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	out, err := ls.ctrl.RefineBatch(ctx, fields, instruction)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, strings.TrimSpace(input.ID), ls, out)
}

func requireInstruction(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.NewValidation("instruction is required")
	}
	return s, nil
}
