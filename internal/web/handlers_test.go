package web

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hpungsan/reelcraft/internal/config"
	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/db"
	"github.com/hpungsan/reelcraft/internal/generate"
	"github.com/hpungsan/reelcraft/internal/llm"
	"github.com/hpungsan/reelcraft/internal/ops"
	"github.com/hpungsan/reelcraft/internal/plan"
	"github.com/hpungsan/reelcraft/internal/refine"
)

func setupTest(t *testing.T, tier string) (http.Handler, *ops.Service) {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.Plan = tier
	pl, err := plan.New(database, cfg)
	if err != nil {
		t.Fatalf("plan.New: %v", err)
	}
	svc := ops.New(database, cfg, generate.New(llm.NewMock()), pl)

	srv, err := NewServer(svc, zerolog.Nop(), "test", "127.0.0.1", 0)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv.Handler, svc
}

// seedSession generates a TikTok session and returns it.
func seedSession(t *testing.T, svc *ops.Service) *ops.SessionOutput {
	t.Helper()
	out, err := svc.Generate(context.Background(), ops.GenerateInput{
		Platform: "tiktok",
		Topic:    "receitas rapidas",
		Keywords: "airfryer, jantar",
		Duration: "30s",
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return out
}

func do(t *testing.T, h http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
	}
	return v
}

// assertError checks the JSON error envelope.
func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, status, rec.Body.String())
	}
	resp := decode[struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Status  int    `json:"status"`
		} `json:"error"`
	}](t, rec)
	if resp.Error.Code != code {
		t.Errorf("error code = %q, want %q (message %q)", resp.Error.Code, code, resp.Error.Message)
	}
	if resp.Error.Status != status {
		t.Errorf("error status = %d, want %d", resp.Error.Status, status)
	}
}

// --- pages ---

func TestRoot_RedirectsToSessions(t *testing.T) {
	h, _ := setupTest(t, config.PlanPro)

	rec := do(t, h, "GET", "/", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/sessions" {
		t.Errorf("Location = %q, want /sessions", loc)
	}
}

func TestHandleList(t *testing.T) {
	h, svc := setupTest(t, config.PlanFree)
	out := seedSession(t, svc)

	rec := do(t, h, "GET", "/sessions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "/sessions/"+out.ID) {
		t.Error("expected a link to the seeded session")
	}
	if !strings.Contains(body, "receitas rapidas") {
		t.Error("expected the session topic")
	}
	if !strings.Contains(body, "1 de 2 gerações em 7 dias") {
		t.Error("expected the free plan usage line")
	}
	if !strings.Contains(body, "refinamento indisponível") {
		t.Error("expected the free plan refinement notice")
	}
}

func TestHandleList_Empty(t *testing.T) {
	h, _ := setupTest(t, config.PlanPro)

	rec := do(t, h, "GET", "/sessions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Nenhuma sessão encontrada") {
		t.Error("expected empty state message")
	}
}

func TestHandleList_Pagination(t *testing.T) {
	h, svc := setupTest(t, config.PlanUnlimited)
	for range 3 {
		seedSession(t, svc)
	}

	rec := do(t, h, "GET", "/sessions?limit=2", nil)
	body := rec.Body.String()
	if !strings.Contains(body, "offset=2&limit=2") {
		t.Error("expected a link to the next page")
	}
	if strings.Contains(body, "Anteriores") {
		t.Error("first page should not link backwards")
	}

	rec = do(t, h, "GET", "/sessions?limit=2&offset=2", nil)
	body = rec.Body.String()
	if !strings.Contains(body, "Anteriores") {
		t.Error("second page should link backwards")
	}
	if strings.Contains(body, "Próximas") {
		t.Error("last page should not link forwards")
	}
}

func TestHandleDetail(t *testing.T) {
	h, svc := setupTest(t, config.PlanPro)
	out := seedSession(t, svc)

	rec := do(t, h, "GET", "/sessions/"+out.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"TITULO_PRINCIPAL",
		"ROTEIRO",
		"HASHTAGS_TAGS",
		"/api/sessions/" + out.ID + "/export?format=csv",
		`data-delete="/sessions/` + out.ID + `"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("detail page missing %q", want)
		}
	}
	if !strings.Contains(body, `<div class="prose"><p>`) {
		t.Error("expected the script rendered as markdown")
	}
	if strings.Contains(body, "editado") {
		t.Error("fresh session should have no modified fields")
	}
}

func TestHandleDetail_ShowsModifiedFields(t *testing.T) {
	h, svc := setupTest(t, config.PlanPro)
	out := seedSession(t, svc)
	_, err := svc.Refine(context.Background(), ops.RefineInput{ID: out.ID, Field: "main_title", Instruction: "mais curto"})
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}

	body := do(t, h, "GET", "/sessions/"+out.ID, nil).Body.String()
	if !strings.Contains(body, "editado") {
		t.Error("expected the modified badge")
	}
	if !strings.Contains(body, "1 versões anteriores") {
		t.Error("expected the revision count")
	}
}

func TestHandleDetail_NotFound(t *testing.T) {
	h, _ := setupTest(t, config.PlanPro)

	rec := do(t, h, "GET", "/sessions/01HZZZZZZZZZZZZZZZZZZZZZZZ", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Error 404") {
		t.Error("expected the error page title")
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "text/html") {
		t.Error("expected an HTML error page")
	}
}

func TestHandleDetail_NotFoundJSON(t *testing.T) {
	h, _ := setupTest(t, config.PlanPro)

	rec := do(t, h, "GET", "/sessions/01HZZZZZZZZZZZZZZZZZZZZZZZ", nil, "Accept", "text/html, application/json")
	assertError(t, rec, http.StatusNotFound, "NOT_FOUND")
}

// --- delete ---

func TestHandleDelete(t *testing.T) {
	h, svc := setupTest(t, config.PlanPro)
	out := seedSession(t, svc)

	rec := do(t, h, "DELETE", "/sessions/"+out.ID, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}

	if rec := do(t, h, "GET", "/sessions/"+out.ID, nil); rec.Code != http.StatusNotFound {
		t.Errorf("deleted session status = %d, want 404", rec.Code)
	}
	body := do(t, h, "GET", "/sessions/"+out.ID+"?include_deleted=true", nil).Body.String()
	if !strings.Contains(body, "Excluída") {
		t.Error("expected the deleted marker with include_deleted")
	}
	if strings.Contains(body, "data-delete") {
		t.Error("deleted session should not offer deletion")
	}
}

func TestAPIDelete(t *testing.T) {
	h, svc := setupTest(t, config.PlanPro)
	out := seedSession(t, svc)

	rec := do(t, h, "DELETE", "/api/sessions/"+out.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	res := decode[ops.DeleteOutput](t, rec)
	if !res.Deleted || res.ID != out.ID {
		t.Errorf("result = %+v", res)
	}

	assertError(t, do(t, h, "DELETE", "/api/sessions/"+out.ID, nil), http.StatusNotFound, "NOT_FOUND")
}

// --- API ---

func TestAPIGenerate(t *testing.T) {
	h, _ := setupTest(t, config.PlanPro)

	rec := do(t, h, "POST", "/api/sessions", map[string]any{
		"platform": "YouTube",
		"topic":    "investimentos para iniciantes",
		"duration": "8 minutos",
		"tone":     "profissional-autoritativo",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201\nbody: %s", rec.Code, rec.Body.String())
	}
	out := decode[ops.SessionOutput](t, rec)
	if len(out.ID) != 26 {
		t.Errorf("ID = %q, want a ULID", out.ID)
	}
	if out.State.Current == nil || out.State.Current.Platform != content.PlatformYouTube {
		t.Errorf("unexpected content: %+v", out.State.Current)
	}
	if out.State.Form.Tone != content.ToneProfessional {
		t.Errorf("Tone = %q", out.State.Form.Tone)
	}

	fetched := decode[ops.FetchOutput](t, do(t, h, "GET", "/api/sessions/"+out.ID, nil))
	if fetched.ID != out.ID || fetched.Platform != content.PlatformYouTube {
		t.Errorf("fetched = %+v", fetched.Session)
	}
}

func TestAPIGenerate_Validation(t *testing.T) {
	h, _ := setupTest(t, config.PlanPro)

	tests := []struct {
		name string
		body any
	}{
		{"missing platform", map[string]any{"topic": "x"}},
		{"missing topic", map[string]any{"platform": "tiktok"}},
		{"unknown platform", map[string]any{"platform": "myspace", "topic": "x"}},
		{"unknown body field", map[string]any{"platform": "tiktok", "topic": "x", "mood": "feliz"}},
		{"malformed json", `{"platform":`},
		{"bad base64", map[string]any{"platform": "tiktok", "topic": "x", "image_base64": "%%%"}},
		{"not an image", map[string]any{"platform": "tiktok", "topic": "x", "image_base64": base64.StdEncoding.EncodeToString([]byte("texto"))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertError(t, do(t, h, "POST", "/api/sessions", tt.body), http.StatusBadRequest, "VALIDATION_ERROR")
		})
	}
}

func TestAPIGenerate_WithImage(t *testing.T) {
	h, _ := setupTest(t, config.PlanPro)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	rec := do(t, h, "POST", "/api/sessions", map[string]any{
		"platform":     "reels",
		"topic":        "moda praia",
		"image_base64": base64.StdEncoding.EncodeToString(png),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201\nbody: %s", rec.Code, rec.Body.String())
	}
}

func TestAPIGenerate_QuotaExceeded(t *testing.T) {
	h, _ := setupTest(t, config.PlanFree)
	body := map[string]any{"platform": "tiktok", "topic": "receitas rapidas"}

	for i := range 2 {
		if rec := do(t, h, "POST", "/api/sessions", body); rec.Code != http.StatusCreated {
			t.Fatalf("generation %d: status = %d", i+1, rec.Code)
		}
	}
	assertError(t, do(t, h, "POST", "/api/sessions", body), http.StatusTooManyRequests, "QUOTA_EXCEEDED")
}

func TestAPIRefineHistoryRestore(t *testing.T) {
	h, svc := setupTest(t, config.PlanPro)
	start := seedSession(t, svc)
	base := "/api/sessions/" + start.ID

	rec := do(t, h, "POST", base+"/refine", map[string]any{"field": "description", "instruction": "mais curta"})
	if rec.Code != http.StatusOK {
		t.Fatalf("refine status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	refined := decode[ops.SessionOutput](t, rec)
	if refined.State.Current.Description == start.State.Current.Description {
		t.Error("description unchanged after refinement")
	}

	rec = do(t, h, "GET", base+"/history?field=DESCRICAO_LEGENDA", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
	hist := decode[ops.HistoryOutput](t, rec)
	if len(hist.Entries) != 1 || !hist.Modified {
		t.Fatalf("history = %+v", hist)
	}

	rec = do(t, h, "POST", base+"/restore", map[string]any{"field": "description", "index": 0})
	if rec.Code != http.StatusOK {
		t.Fatalf("restore status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	restored := decode[ops.SessionOutput](t, rec)
	if restored.State.Current.Description != start.State.Current.Description {
		t.Error("restore did not bring back the generated description")
	}

	assertError(t, do(t, h, "POST", base+"/restore", map[string]any{"field": "description", "index": 9}),
		http.StatusBadRequest, "VALIDATION_ERROR")
	assertError(t, do(t, h, "POST", base+"/refine", map[string]any{"field": "mood", "instruction": "x"}),
		http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestAPIRefine_FreePlanDenied(t *testing.T) {
	h, svc := setupTest(t, config.PlanFree)
	start := seedSession(t, svc)

	rec := do(t, h, "POST", "/api/sessions/"+start.ID+"/refine", map[string]any{"field": "main_title", "instruction": "mais curto"})
	assertError(t, rec, http.StatusForbidden, "AUTHORIZATION_ERROR")
}

func TestAPIRefineBatch(t *testing.T) {
	h, svc := setupTest(t, config.PlanPro)
	start := seedSession(t, svc)

	rec := do(t, h, "POST", "/api/sessions/"+start.ID+"/refine-batch", map[string]any{
		"fields":      []string{"main_title", "key_points"},
		"instruction": "mais chamativo",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	out := decode[ops.SessionOutput](t, rec)
	for _, f := range []content.Field{content.FieldMainTitle, content.FieldKeyPoints} {
		if !slices.Contains(out.Applied, f) {
			t.Errorf("Applied = %v, missing %s", out.Applied, f.Name())
		}
	}
	if slices.Contains(out.Applied, content.FieldScript) {
		t.Error("script applied without being requested")
	}
}

func TestAPIVariation_EmptyBody(t *testing.T) {
	h, svc := setupTest(t, config.PlanPro)
	start := seedSession(t, svc)

	rec := do(t, h, "POST", "/api/sessions/"+start.ID+"/variation", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	out := decode[ops.SessionOutput](t, rec)
	if out.State.Current.MainTitle == start.State.Current.MainTitle {
		t.Error("variation should replace the bundle")
	}
	if len(out.State.Modified) != 0 {
		t.Errorf("variation resets the baseline, Modified = %v", out.State.Modified)
	}
}

func TestAPIExport(t *testing.T) {
	h, svc := setupTest(t, config.PlanPro)
	start := seedSession(t, svc)
	base := "/api/sessions/" + start.ID + "/export"

	rec := do(t, h, "GET", base, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, "receitas-rapidas-") || !strings.Contains(cd, ".json") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	var exported map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &exported); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if exported["TITULO_PRINCIPAL"] != start.State.Current.MainTitle {
		t.Errorf("TITULO_PRINCIPAL = %v", exported["TITULO_PRINCIPAL"])
	}

	rec = do(t, h, "GET", base+"?format=csv&fields=main_title,+hashtags", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("csv status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 || strings.TrimSpace(lines[0]) != "field,value" {
		t.Errorf("csv = %q", rec.Body.String())
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}

	assertError(t, do(t, h, "GET", base+"?format=xml", nil), http.StatusBadRequest, "VALIDATION_ERROR")
	assertError(t, do(t, h, "GET", base+"?fields=mood", nil), http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestAPIListGenerationsUsage(t *testing.T) {
	h, svc := setupTest(t, config.PlanPro)
	start := seedSession(t, svc)
	seedSession(t, svc)

	list := decode[ops.ListOutput](t, do(t, h, "GET", "/api/sessions?limit=1", nil))
	if len(list.Items) != 1 || list.Pagination.Total != 2 || !list.Pagination.HasMore {
		t.Errorf("list = %+v", list)
	}

	gens := decode[ops.GenerationsOutput](t, do(t, h, "GET", "/api/generations?session="+start.ID, nil))
	if len(gens.Items) != 1 || gens.Items[0].SessionID != start.ID || gens.Items[0].Action != content.ActionNew {
		t.Errorf("generations = %+v", gens.Items)
	}

	usage := decode[plan.Usage](t, do(t, h, "GET", "/api/usage", nil))
	if usage.Plan != config.PlanPro || usage.Used != 2 || usage.Limit != 50 || !usage.CanRefine {
		t.Errorf("usage = %+v", usage)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h, _ := setupTest(t, config.PlanPro)

	rec := do(t, h, "GET", "/sessions", nil)
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("Content-Security-Policy"); !strings.Contains(got, "script-src 'self'") {
		t.Errorf("Content-Security-Policy = %q", got)
	}
}

func TestStaticFiles(t *testing.T) {
	h, _ := setupTest(t, config.PlanPro)

	for _, path := range []string{"/static/style.css", "/static/app.js"} {
		if rec := do(t, h, "GET", path, nil); rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", path, rec.Code)
		}
	}
}

// --- helpers ---

func TestFieldViews(t *testing.T) {
	c := &content.Content{
		Platform:    content.PlatformTikTok,
		MainTitle:   "Receita em 5 minutos",
		AltTitles:   []string{"a", "b"},
		Description: "**Rápido** e fácil",
		Hashtags:    []string{"#receita"},
		Script:      "[CENA 1] Abertura",
		KeyPoints:   []string{"ponto"},
	}
	state := refine.NewState(content.Request{Platform: content.PlatformTikTok, Topic: "receitas"}, c)

	views := fieldViews(state)
	if len(views) != 6 {
		t.Fatalf("views = %d, want the 6 set fields", len(views))
	}
	if views[0].Key != "TITULO_PRINCIPAL" || views[0].Text != "Receita em 5 minutos" || views[0].HTML != "" {
		t.Errorf("title view = %+v", views[0])
	}
	if !strings.Contains(string(views[2].HTML), "<strong>Rápido</strong>") {
		t.Errorf("description HTML = %q", views[2].HTML)
	}
	if views[2].Chars != content.CountChars(c.Description) {
		t.Errorf("description chars = %d", views[2].Chars)
	}
	if len(views[3].Items) != 1 {
		t.Errorf("hashtag items = %v", views[3].Items)
	}

	if fieldViews(refine.State{}) != nil {
		t.Error("a state without content has no views")
	}
}

func TestRenderMarkdown_DropsRawHTML(t *testing.T) {
	got := string(renderMarkdown("oi <script>alert(1)</script>"))
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML passed through: %q", got)
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 20},
		{"limit=5", 5},
		{"limit=abc", 20},
		{"limit=-1", -1},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/sessions?"+tt.query, nil)
		if got := parseIntParam(req, "limit", 20); got != tt.want {
			t.Errorf("parseIntParam(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestParseBoolParam(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"", false},
		{"include_deleted=true", true},
		{"include_deleted=1", true},
		{"include_deleted=yes", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/sessions?"+tt.query, nil)
		if got := parseBoolParam(req, "include_deleted"); got != tt.want {
			t.Errorf("parseBoolParam(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" main_title, ,hashtags,")
	if len(got) != 2 || got[0] != "main_title" || got[1] != "hashtags" {
		t.Errorf("splitList = %q", got)
	}
	if splitList("") != nil {
		t.Error("empty input should give nil")
	}
}

func TestDisplayName(t *testing.T) {
	if got := displayName("Receitas", "01ABCDEFGHJKMNPQRSTVWXYZ00"); got != "Receitas" {
		t.Errorf("displayName = %q", got)
	}
	if got := displayName("", "01ABCDEFGHJKMNPQRSTVWXYZ00"); got != "01ABCDEFGH..." {
		t.Errorf("displayName = %q", got)
	}
	if got := displayName("", "short"); got != "short" {
		t.Errorf("displayName = %q", got)
	}
}

func TestFormatChars(t *testing.T) {
	tests := map[int]string{0: "0", 999: "999", 1000: "1.000", 1234567: "1.234.567", -4500: "-4.500"}
	for n, want := range tests {
		if got := formatChars(n); got != want {
			t.Errorf("formatChars(%d) = %q, want %q", n, got, want)
		}
	}
}
