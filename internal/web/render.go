package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"

	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/db"
	"github.com/hpungsan/reelcraft/internal/errors"
	"github.com/hpungsan/reelcraft/internal/ops"
	"github.com/hpungsan/reelcraft/internal/plan"
	"github.com/hpungsan/reelcraft/internal/refine"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item
}

// ListPageData is the template data for the session list page.
type ListPageData struct {
	PageData
	Items      []db.SessionSummary
	Pagination ops.Pagination
	Deleted    bool
	Usage      *plan.Usage
}

// FieldView is one content field prepared for display.
type FieldView struct {
	Name      string
	Key       string
	Text      string
	Items     []string
	HTML      template.HTML // set for long-form text fields
	Chars     int
	Modified  bool
	Revisions int
}

// DetailPageData is the template data for the session detail page.
type DetailPageData struct {
	PageData
	Session *ops.FetchOutput
	Fields  []FieldView
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    zerolog.Logger
}

// NewRenderer parses the layout and clones it once per page.
func NewRenderer(templateFS fs.FS, version string, logger zerolog.Logger) *Renderer {
	funcMap := template.FuncMap{
		"add":         func(a, b int) int { return a + b },
		"sub":         func(a, b int) int { return a - b },
		"formatTime":  formatTime,
		"formatChars": formatChars,
		"deref":       deref,
		"hasValue":    hasValue,
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"list":   "list.html",
		"detail": "detail.html",
		"error":  "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		logger:    logger,
	}
}

func (r *Renderer) page(title, nav string) PageData {
	return PageData{Title: title, Version: r.version, Nav: nav}
}

func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus buffers the page so a template failure never leaves a
// half-written response.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error().Str("template", name).Msg("template not found")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error().Err(err).Str("template", name).Msg("template execution failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError writes err as JSON for API callers and as an error page otherwise.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	e, ok := errors.As(err)
	if !ok {
		e = errors.NewInternal(err)
	}
	if e.Code == errors.ErrInternal || e.Code == errors.ErrPersistence {
		r.logger.Error().Err(err).Str("path", req.URL.Path).Msg("request failed")
	}

	message := e.Message
	if e.Code == errors.ErrInternal {
		message = "an internal error occurred"
	}

	if wantsJSON(req) {
		body := map[string]any{
			"code":    string(e.Code),
			"message": message,
			"status":  e.Status,
		}
		if len(e.Details) > 0 && e.Code != errors.ErrInternal {
			body["details"] = e.Details
		}
		renderJSON(w, e.Status, map[string]any{"error": body})
		return
	}

	r.renderPageStatus(w, e.Status, "error", ErrorPageData{
		PageData:   r.page(fmt.Sprintf("Error %d", e.Status), ""),
		StatusCode: e.Status,
		Message:    message,
	})
}

// wantsJSON reports whether the caller expects a JSON response.
func wantsJSON(req *http.Request) bool {
	return strings.HasPrefix(req.URL.Path, "/api/") ||
		strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// fieldViews lists the fields of state's current content in canonical order.
// Unset optional fields are skipped.
func fieldViews(state refine.State) []FieldView {
	if state.Current == nil {
		return nil
	}
	views := make([]FieldView, 0, len(content.AllFields))
	for _, f := range content.AllFields {
		v := state.Current.Get(f)
		if v.IsZero() {
			continue
		}
		fv := FieldView{
			Name:      f.Name(),
			Key:       f.Key(),
			Modified:  state.IsModified(f),
			Revisions: len(state.History[f]),
		}
		if items, ok := v.AsList(); ok {
			fv.Items = items
		} else {
			fv.Text, _ = v.AsText()
			fv.Chars = content.CountChars(fv.Text)
			if f == content.FieldScript || f == content.FieldDescription {
				fv.HTML = renderMarkdown(fv.Text)
			}
		}
		views = append(views, fv)
	}
	return views
}

// renderMarkdown converts markdown text to HTML using goldmark. Raw HTML in
// the source is dropped by goldmark's default renderer.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}

// formatChars formats an integer with dot thousands separators, as written in Portuguese.
func formatChars(n int) string {
	if n < 0 {
		return "-" + formatChars(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte('.')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// deref dereferences a pointer, returning the zero value if nil.
func deref(v any) any {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Zero(rv.Type().Elem()).Interface()
		}
		return rv.Elem().Interface()
	}
	return v
}

// hasValue checks if a pointer value is non-nil.
func hasValue(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return !rv.IsNil()
	}
	return true
}
