package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/errors"
	"github.com/hpungsan/reelcraft/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	svc *ops.Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *ops.Service) *Handlers {
	return &Handlers{svc: svc}
}

// Request types for each tool

// GenerateRequest represents the arguments for content_generate.
type GenerateRequest struct {
	Platform    string `json:"platform"`
	Topic       string `json:"topic"`
	Keywords    string `json:"keywords,omitempty"`
	Tone        string `json:"tone,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Language    string `json:"language,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	ImageMIME   string `json:"image_mime,omitempty"`
}

// VariationRequest represents the arguments for content_variation.
type VariationRequest struct {
	ID          string `json:"id"`
	Instruction string `json:"instruction,omitempty"`
}

// RefineRequest represents the arguments for content_refine.
type RefineRequest struct {
	ID          string `json:"id"`
	Field       string `json:"field"`
	Instruction string `json:"instruction"`
}

// RefineBatchRequest represents the arguments for content_refine_batch.
type RefineBatchRequest struct {
	ID          string   `json:"id"`
	Fields      []string `json:"fields"`
	Instruction string   `json:"instruction"`
}

// RestoreRequest represents the arguments for content_restore.
type RestoreRequest struct {
	ID    string `json:"id"`
	Field string `json:"field"`
	Index int    `json:"index"`
}

// IDRequest represents tools addressed by session id only.
type IDRequest struct {
	ID string `json:"id"`
}

// ExportRequest represents the arguments for content_export.
type ExportRequest struct {
	ID     string   `json:"id"`
	Format string   `json:"format,omitempty"`
	Fields []string `json:"fields,omitempty"`
	Path   string   `json:"path,omitempty"`
}

// FetchRequest represents the arguments for session_fetch.
type FetchRequest struct {
	ID             string `json:"id"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

// ListRequest represents the arguments for session_list.
type ListRequest struct {
	Limit          int  `json:"limit,omitempty"`
	Offset         int  `json:"offset,omitempty"`
	IncludeDeleted bool `json:"include_deleted,omitempty"`
}

// HistoryRequest represents the arguments for session_history.
type HistoryRequest struct {
	ID    string `json:"id"`
	Field string `json:"field"`
}

// ImportRequest represents the arguments for session_import.
type ImportRequest struct {
	Path     string `json:"path"`
	Platform string `json:"platform"`
	Topic    string `json:"topic,omitempty"`
	Keywords string `json:"keywords,omitempty"`
	Tone     string `json:"tone,omitempty"`
	Duration string `json:"duration,omitempty"`
	Language string `json:"language,omitempty"`
}

// GenerationsRequest represents the arguments for generation_list.
type GenerationsRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// Handler implementations

// HandleGenerate handles the content_generate tool call.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}
	image, err := decodeImage(input.ImageBase64, input.ImageMIME)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := h.svc.Generate(ctx, ops.GenerateInput{
		Platform: input.Platform,
		Topic:    input.Topic,
		Keywords: input.Keywords,
		Tone:     input.Tone,
		Duration: input.Duration,
		Language: input.Language,
		Image:    image,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleVariation handles the content_variation tool call.
func (h *Handlers) HandleVariation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[VariationRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}
	result, err := h.svc.Variation(ctx, ops.VariationInput{ID: input.ID, Instruction: input.Instruction})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRefine handles the content_refine tool call.
func (h *Handlers) HandleRefine(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RefineRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}
	result, err := h.svc.Refine(ctx, ops.RefineInput{
		ID:          input.ID,
		Field:       input.Field,
		Instruction: input.Instruction,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRefineBatch handles the content_refine_batch tool call.
func (h *Handlers) HandleRefineBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RefineBatchRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}
	result, err := h.svc.RefineBatch(ctx, ops.RefineBatchInput{
		ID:          input.ID,
		Fields:      input.Fields,
		Instruction: input.Instruction,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRestore handles the content_restore tool call.
func (h *Handlers) HandleRestore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RestoreRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}
	result, err := h.svc.Restore(ctx, ops.RestoreInput{ID: input.ID, Field: input.Field, Index: input.Index})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLint handles the content_lint tool call.
func (h *Handlers) HandleLint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}
	result, err := h.svc.Lint(ctx, ops.LintInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the content_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}
	result, err := h.svc.Export(ctx, ops.ExportInput{
		ID:     input.ID,
		Format: input.Format,
		Fields: input.Fields,
		Path:   input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFetch handles the session_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}
	result, err := h.svc.Fetch(ctx, ops.FetchInput{ID: input.ID, IncludeDeleted: input.IncludeDeleted})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleList handles the session_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}
	result, err := h.svc.List(ctx, ops.ListInput{
		Limit:          input.Limit,
		Offset:         input.Offset,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleHistory handles the session_history tool call.
func (h *Handlers) HandleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}
	result, err := h.svc.History(ctx, ops.HistoryInput{ID: input.ID, Field: input.Field})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDelete handles the session_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}
	result, err := h.svc.Delete(ctx, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the session_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}
	result, err := h.svc.Import(ctx, ops.ImportInput{
		Path:     input.Path,
		Platform: input.Platform,
		Topic:    input.Topic,
		Keywords: input.Keywords,
		Tone:     input.Tone,
		Duration: input.Duration,
		Language: input.Language,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGenerations handles the generation_list tool call.
func (h *Handlers) HandleGenerations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerationsRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}
	result, err := h.svc.Generations(ctx, ops.GenerationsInput{
		SessionID: input.SessionID,
		Limit:     input.Limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleUsage handles the generation_usage tool call.
func (h *Handlers) HandleUsage(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.svc.Usage(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// decodeImage turns the base64 payload of a tool call into an image. The MIME
// type is sniffed when the caller leaves it out.
func decodeImage(data, mimeType string) (*content.Image, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, errors.NewValidation("image_base64 is not valid base64")
	}
	return content.NewImage(raw, mimeType)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if e, ok := errors.As(err); ok {
		errorObj := map[string]any{
			"code":    e.Code,
			"message": e.Message,
			"status":  e.Status,
		}
		if e.Code != errors.ErrInternal && e.Details != nil {
			errorObj["details"] = e.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	text, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(text)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
