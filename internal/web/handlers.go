package web

import (
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/errors"
	"github.com/hpungsan/reelcraft/internal/ops"
)

// maxBodyBytes bounds API request bodies. Reference images travel base64
// encoded inside them.
const maxBodyBytes = 8 << 20

// Handlers contains HTTP route handlers for the web UI and the JSON API.
type Handlers struct {
	svc      *ops.Service
	renderer *Renderer
	logger   zerolog.Logger
}

// HandleList handles GET /sessions.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	input := ops.ListInput{
		Limit:          parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:         parseIntParam(r, "offset", 0),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	}
	result, err := h.svc.List(r.Context(), input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	usage, err := h.svc.Usage(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData:   h.renderer.page("Sessions", "sessions"),
		Items:      result.Items,
		Pagination: result.Pagination,
		Deleted:    input.IncludeDeleted,
		Usage:      usage,
	})
}

// HandleDetail handles GET /sessions/{id}.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Fetch(r.Context(), ops.FetchInput{
		ID:             r.PathValue("id"),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData: h.renderer.page(displayName(sess.Title, sess.ID), "sessions"),
		Session:  sess,
		Fields:   fieldViews(sess.State),
	})
}

// HandleDelete handles DELETE /sessions/{id} and DELETE /api/sessions/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Delete(r.Context(), ops.DeleteInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/sessions", http.StatusSeeOther)
}

// generateBody is the JSON body of POST /api/sessions.
type generateBody struct {
	Platform    string `json:"platform"`
	Topic       string `json:"topic"`
	Keywords    string `json:"keywords,omitempty"`
	Tone        string `json:"tone,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Language    string `json:"language,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	ImageMIME   string `json:"image_mime,omitempty"`
}

// HandleGenerate handles POST /api/sessions.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateBody
	if err := decodeBody(w, r, &body); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	input := ops.GenerateInput{
		Platform: body.Platform,
		Topic:    body.Topic,
		Keywords: body.Keywords,
		Tone:     body.Tone,
		Duration: body.Duration,
		Language: body.Language,
	}
	if body.ImageBase64 != "" {
		raw, err := base64.StdEncoding.DecodeString(body.ImageBase64)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewValidation("image_base64 is not valid base64"))
			return
		}
		img, err := content.NewImage(raw, body.ImageMIME)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		input.Image = img
	}

	out, err := h.svc.Generate(r.Context(), input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusCreated, out)
}

// HandleAPIList handles GET /api/sessions.
func (h *Handlers) HandleAPIList(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context(), ops.ListInput{
		Limit:          parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:         parseIntParam(r, "offset", 0),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleFetch handles GET /api/sessions/{id}.
func (h *Handlers) HandleFetch(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Fetch(r.Context(), ops.FetchInput{
		ID:             r.PathValue("id"),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleVariation handles POST /api/sessions/{id}/variation. The body is optional.
func (h *Handlers) HandleVariation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Instruction string `json:"instruction"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	out, err := h.svc.Variation(r.Context(), ops.VariationInput{
		ID:          r.PathValue("id"),
		Instruction: body.Instruction,
	})
	h.respond(w, r, out, err)
}

// HandleRefine handles POST /api/sessions/{id}/refine.
func (h *Handlers) HandleRefine(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Field       string `json:"field"`
		Instruction string `json:"instruction"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	out, err := h.svc.Refine(r.Context(), ops.RefineInput{
		ID:          r.PathValue("id"),
		Field:       body.Field,
		Instruction: body.Instruction,
	})
	h.respond(w, r, out, err)
}

// HandleRefineBatch handles POST /api/sessions/{id}/refine-batch.
func (h *Handlers) HandleRefineBatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Fields      []string `json:"fields"`
		Instruction string   `json:"instruction"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	out, err := h.svc.RefineBatch(r.Context(), ops.RefineBatchInput{
		ID:          r.PathValue("id"),
		Fields:      body.Fields,
		Instruction: body.Instruction,
	})
	h.respond(w, r, out, err)
}

// HandleRestore handles POST /api/sessions/{id}/restore.
func (h *Handlers) HandleRestore(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Field string `json:"field"`
		Index int    `json:"index"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	out, err := h.svc.Restore(r.Context(), ops.RestoreInput{
		ID:    r.PathValue("id"),
		Field: body.Field,
		Index: body.Index,
	})
	h.respond(w, r, out, err)
}

// HandleHistory handles GET /api/sessions/{id}/history?field=.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.History(r.Context(), ops.HistoryInput{
		ID:    r.PathValue("id"),
		Field: r.URL.Query().Get("field"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleExport handles GET /api/sessions/{id}/export?format=&fields=. The
// encoded content is sent as a download.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.svc.Render(r.Context(), ops.RenderInput{
		ID:     r.PathValue("id"),
		Format: q.Get("format"),
		Fields: splitList(q.Get("fields")),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	contentType := "application/json"
	if out.Format == content.FormatCSV {
		contentType = "text/csv; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}

// HandleGenerations handles GET /api/generations.
func (h *Handlers) HandleGenerations(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Generations(r.Context(), ops.GenerationsInput{
		SessionID: r.URL.Query().Get("session"),
		Limit:     parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:    parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleUsage handles GET /api/usage.
func (h *Handlers) HandleUsage(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Usage(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, out *ops.SessionOutput, err error) {
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// decodeBody reads a JSON request body into dst. An empty body leaves dst
// untouched; unknown fields are rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.NewValidation("request body too large")
		}
		return errors.NewValidation("invalid JSON body: " + err.Error())
	}
	return nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}

// splitList splits a comma-separated query value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// displayName returns the session title if present, or a truncated ID.
func displayName(title, id string) string {
	if title != "" {
		return title
	}
	if len(id) > 10 {
		return id[:10] + "..."
	}
	return id
}
