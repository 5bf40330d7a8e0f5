package ops

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/hpungsan/reelcraft/internal/config"
	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/db"
	"github.com/hpungsan/reelcraft/internal/errors"
	"github.com/hpungsan/reelcraft/internal/generate"
	"github.com/hpungsan/reelcraft/internal/llm"
	"github.com/hpungsan/reelcraft/internal/plan"
)

// testService builds a Service over a fresh database with the offline model.
// HOME points at a temp dir so default export paths stay inside the test.
func testService(t *testing.T, tier string) (*Service, *sql.DB) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.Plan = tier
	return newService(t, database, cfg), database
}

func newService(t *testing.T, database *sql.DB, cfg *config.Config) *Service {
	t.Helper()
	pl, err := plan.New(database, cfg)
	if err != nil {
		t.Fatalf("plan.New failed: %v", err)
	}
	return New(database, cfg, generate.New(llm.NewMock()), pl)
}

func startSession(t *testing.T, s *Service) *SessionOutput {
	t.Helper()
	out, err := s.Generate(context.Background(), GenerateInput{
		Platform: "youtube",
		Topic:    "investimentos para iniciantes",
		Keywords: "renda fixa, tesouro direto",
		Tone:     string(content.ToneInformative),
		Duration: "5 minutos",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return out
}

func TestGenerate(t *testing.T) {
	s, _ := testService(t, config.PlanPro)
	ctx := context.Background()

	out := startSession(t, s)
	if len(out.ID) != 26 {
		t.Errorf("ID = %q, want a ULID", out.ID)
	}
	if out.Fallback {
		t.Error("Fallback = true, want false with the offline model")
	}
	if out.State.Current == nil || out.State.Current.MainTitle == "" {
		t.Fatal("expected generated content")
	}
	if out.State.Form.Platform != content.PlatformYouTube {
		t.Errorf("Platform = %q, want YouTube", out.State.Form.Platform)
	}
	if out.State.Form.Language != "pt-BR" {
		t.Errorf("Language = %q, want config default pt-BR", out.State.Form.Language)
	}

	fetched, err := s.Fetch(ctx, FetchInput{ID: out.ID})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if fetched.State.Current.MainTitle != out.State.Current.MainTitle {
		t.Errorf("persisted title = %q, want %q", fetched.State.Current.MainTitle, out.State.Current.MainTitle)
	}
	if fetched.Topic != "investimentos para iniciantes" {
		t.Errorf("Topic = %q", fetched.Topic)
	}

	gens, err := s.Generations(ctx, GenerationsInput{SessionID: out.ID})
	if err != nil {
		t.Fatalf("Generations failed: %v", err)
	}
	if gens.Pagination.Total != 1 || gens.Items[0].Action != content.ActionNew {
		t.Errorf("generation log = %+v, want one NEW entry", gens.Items)
	}
}

func TestGenerate_Validation(t *testing.T) {
	s, _ := testService(t, config.PlanPro)
	ctx := context.Background()

	tests := []struct {
		name  string
		input GenerateInput
	}{
		{"missing platform", GenerateInput{Topic: "x"}},
		{"unknown platform", GenerateInput{Platform: "myspace", Topic: "x"}},
		{"missing topic", GenerateInput{Platform: "tiktok", Topic: "  "}},
		{"unknown tone", GenerateInput{Platform: "tiktok", Topic: "x", Tone: "sarcastico"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Generate(ctx, tc.input)
			if !errors.Is(err, errors.ErrValidation) {
				t.Errorf("expected ErrValidation, got: %v", err)
			}
		})
	}

	u, err := s.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if u.Used != 0 {
		t.Errorf("Used = %d, want 0 after rejected requests", u.Used)
	}
}

func TestGenerate_QuotaExceeded(t *testing.T) {
	s, _ := testService(t, config.PlanFree)

	startSession(t, s)
	startSession(t, s)
	_, err := s.Generate(context.Background(), GenerateInput{Platform: "tiktok", Topic: "receitas"})
	if !errors.Is(err, errors.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got: %v", err)
	}

	list, err := s.List(context.Background(), ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list.Pagination.Total != 2 {
		t.Errorf("Total = %d, want 2 (no session for the refused request)", list.Pagination.Total)
	}
}

func TestRefine(t *testing.T) {
	s, database := testService(t, config.PlanPro)
	ctx := context.Background()
	start := startSession(t, s)

	out, err := s.Refine(ctx, RefineInput{
		ID:          start.ID,
		Field:       "description",
		Instruction: "mais curta e direta",
	})
	if err != nil {
		t.Fatalf("Refine failed: %v", err)
	}
	if !slices.Equal(out.Applied, []content.Field{content.FieldDescription}) {
		t.Errorf("Applied = %v, want [description]", out.Applied)
	}
	if out.State.Current.Description == start.State.Current.Description {
		t.Error("description unchanged after refinement")
	}
	if out.State.Current.MainTitle != start.State.Current.MainTitle {
		t.Error("main title changed by a description refinement")
	}
	if !out.State.IsModified(content.FieldDescription) {
		t.Error("description not marked modified")
	}

	// A cold service over the same database sees the saved state
	cold := newService(t, database, s.Config())
	hist, err := cold.History(ctx, HistoryInput{ID: start.ID, Field: "DESCRICAO_LEGENDA"})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(hist.Entries) != 1 {
		t.Fatalf("history entries = %d, want 1", len(hist.Entries))
	}
	if got, _ := hist.Entries[0].Value.AsText(); got != start.State.Current.Description {
		t.Errorf("history[0] = %q, want the generated description", got)
	}
	if !hist.Modified {
		t.Error("History.Modified = false, want true")
	}
	if hist.Baseline.Equal(hist.Current) {
		t.Error("current should differ from baseline")
	}
}

func TestRefine_Rejected(t *testing.T) {
	s, _ := testService(t, config.PlanPro)
	ctx := context.Background()
	start := startSession(t, s)

	tests := []struct {
		name  string
		input RefineInput
		code  errors.ErrorCode
	}{
		{"missing field", RefineInput{ID: start.ID, Instruction: "x"}, errors.ErrValidation},
		{"unknown field", RefineInput{ID: start.ID, Field: "subtitle", Instruction: "x"}, errors.ErrValidation},
		{"missing instruction", RefineInput{ID: start.ID, Field: "script"}, errors.ErrValidation},
		{"missing id", RefineInput{Field: "script", Instruction: "x"}, errors.ErrValidation},
		{"unknown session", RefineInput{ID: "01HZZZZZZZZZZZZZZZZZZZZZZZ", Field: "script", Instruction: "x"}, errors.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Refine(ctx, tc.input)
			if !errors.Is(err, tc.code) {
				t.Errorf("expected %s, got: %v", tc.code, err)
			}
		})
	}
}

func TestRefine_FreePlanDenied(t *testing.T) {
	s, _ := testService(t, config.PlanFree)
	ctx := context.Background()
	start := startSession(t, s)

	_, err := s.Refine(ctx, RefineInput{ID: start.ID, Field: "script", Instruction: "mais humor"})
	if !errors.Is(err, errors.ErrAuthorization) {
		t.Errorf("Refine: expected ErrAuthorization, got: %v", err)
	}
	_, err = s.RefineBatch(ctx, RefineBatchInput{ID: start.ID, Fields: []string{"script"}, Instruction: "x"})
	if !errors.Is(err, errors.ErrAuthorization) {
		t.Errorf("RefineBatch: expected ErrAuthorization, got: %v", err)
	}
	_, err = s.Variation(ctx, VariationInput{ID: start.ID})
	if !errors.Is(err, errors.ErrAuthorization) {
		t.Errorf("Variation: expected ErrAuthorization, got: %v", err)
	}
}

func TestRefineBatch(t *testing.T) {
	s, _ := testService(t, config.PlanUnlimited)
	ctx := context.Background()
	start := startSession(t, s)

	out, err := s.RefineBatch(ctx, RefineBatchInput{
		ID:          start.ID,
		Fields:      []string{"key_points", "TITULO_PRINCIPAL", "key_points", ""},
		Instruction: "mais impacto",
	})
	if err != nil {
		t.Fatalf("RefineBatch failed: %v", err)
	}
	for _, f := range []content.Field{content.FieldMainTitle, content.FieldKeyPoints} {
		if !slices.Contains(out.Applied, f) {
			t.Errorf("Applied = %v, missing %s", out.Applied, f.Name())
		}
	}
	if slices.Contains(out.Applied, content.FieldScript) {
		t.Error("script applied without being requested")
	}

	_, err = s.RefineBatch(ctx, RefineBatchInput{ID: start.ID, Fields: []string{" "}, Instruction: "x"})
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected ErrValidation for empty field set, got: %v", err)
	}
}

func TestRestore(t *testing.T) {
	s, _ := testService(t, config.PlanPro)
	ctx := context.Background()
	start := startSession(t, s)

	if _, err := s.Refine(ctx, RefineInput{ID: start.ID, Field: "script", Instruction: "mais curto"}); err != nil {
		t.Fatalf("Refine failed: %v", err)
	}

	out, err := s.Restore(ctx, RestoreInput{ID: start.ID, Field: "ROTEIRO", Index: 0})
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if out.State.Current.Script != start.State.Current.Script {
		t.Error("script not restored to the generated value")
	}
	if got := len(out.State.HistoryOf(content.FieldScript)); got != 1 {
		t.Errorf("history length = %d, want 1 (restore does not record)", got)
	}

	fetched, err := s.Fetch(ctx, FetchInput{ID: start.ID})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if fetched.State.Current.Script != start.State.Current.Script {
		t.Error("restored script not persisted")
	}

	for _, idx := range []int{-1, 1} {
		_, err := s.Restore(ctx, RestoreInput{ID: start.ID, Field: "script", Index: idx})
		if !errors.Is(err, errors.ErrValidation) {
			t.Errorf("index %d: expected ErrValidation, got: %v", idx, err)
		}
	}
}

func TestVariation(t *testing.T) {
	s, _ := testService(t, config.PlanPro)
	ctx := context.Background()
	start := startSession(t, s)

	if _, err := s.Refine(ctx, RefineInput{ID: start.ID, Field: "hashtags", Instruction: "menos genericas"}); err != nil {
		t.Fatalf("Refine failed: %v", err)
	}
	out, err := s.Variation(ctx, VariationInput{ID: start.ID})
	if err != nil {
		t.Fatalf("Variation failed: %v", err)
	}
	if len(out.State.Modified) != 0 || len(out.State.History) != 0 {
		t.Errorf("variation should reset modified and history, got %v / %v", out.State.Modified, out.State.History)
	}
	if out.State.Current.MainTitle == start.State.Current.MainTitle {
		t.Error("variation returned the same title")
	}

	gens, err := s.Generations(ctx, GenerationsInput{SessionID: start.ID})
	if err != nil {
		t.Fatalf("Generations failed: %v", err)
	}
	want := []content.Action{content.ActionVariation, content.ActionRefine, content.ActionNew}
	var got []content.Action
	for _, g := range gens.Items {
		got = append(got, g.Action)
	}
	if !slices.Equal(got, want) {
		t.Errorf("actions = %v, want %v", got, want)
	}
}

func TestLint(t *testing.T) {
	s, _ := testService(t, config.PlanPro)
	start := startSession(t, s)

	out, err := s.Lint(context.Background(), LintInput{ID: start.ID})
	if err != nil {
		t.Fatalf("Lint failed: %v", err)
	}
	if out.Violations == nil {
		t.Error("Violations = nil, want an empty slice")
	}
	if out.Valid != (len(out.Violations) == 0) {
		t.Errorf("Valid = %v with %d violations", out.Valid, len(out.Violations))
	}
}

func TestExportAndImport(t *testing.T) {
	s, _ := testService(t, config.PlanPro)
	ctx := context.Background()
	start := startSession(t, s)

	exp, err := s.Export(ctx, ExportInput{ID: start.ID})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	dir, _ := DefaultExportsDir()
	if filepath.Dir(exp.Path) != dir {
		t.Errorf("Path = %q, want it in %q", exp.Path, dir)
	}
	if !strings.HasPrefix(filepath.Base(exp.Path), "investimentos-para-iniciantes-") {
		t.Errorf("file name = %q, want the sanitized topic", filepath.Base(exp.Path))
	}
	data, err := os.ReadFile(exp.Path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(data) != exp.Bytes {
		t.Errorf("Bytes = %d, file has %d", exp.Bytes, len(data))
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}

	imported, err := s.Import(ctx, ImportInput{Path: exp.Path, Platform: "YouTube"})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if imported.ID == start.ID {
		t.Error("import reused the source session id")
	}
	if imported.State.Current.Script != start.State.Current.Script {
		t.Error("imported script differs from the exported one")
	}
	if imported.State.Form.Topic != start.State.Current.MainTitle {
		t.Errorf("Topic = %q, want the main title by default", imported.State.Form.Topic)
	}

	// Import spends no quota and is not logged
	u, _ := s.Usage(ctx)
	if u.Used != 1 {
		t.Errorf("Used = %d, want 1", u.Used)
	}
}

func TestExport_CSVSubset(t *testing.T) {
	s, _ := testService(t, config.PlanPro)
	ctx := context.Background()
	start := startSession(t, s)
	dir, _ := DefaultExportsDir()

	path := filepath.Join(dir, "titulos.csv")
	out, err := s.Export(ctx, ExportInput{
		ID:     start.ID,
		Format: "csv",
		Fields: []string{"alt_titles", "main_title"},
		Path:   path,
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !slices.Equal(out.Fields, []content.Field{content.FieldMainTitle, content.FieldAltTitles}) {
		t.Errorf("Fields = %v, want canonical order", out.Fields)
	}
	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "field,value\n") || !strings.Contains(string(data), "TITULOS_ALTERNATIVOS") {
		t.Errorf("unexpected csv:\n%s", data)
	}

	_, err = s.Export(ctx, ExportInput{ID: start.ID, Format: "csv", Path: filepath.Join(dir, "x.json")})
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("mismatched extension: expected ErrValidation, got: %v", err)
	}
	_, err = s.Export(ctx, ExportInput{ID: start.ID, Format: "xml"})
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("unknown format: expected ErrValidation, got: %v", err)
	}

	// A partial export is not a complete bundle
	_, err = s.Import(ctx, ImportInput{Path: filepath.Join(dir, "titulos.csv"), Platform: "youtube"})
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("csv import: expected ErrValidation, got: %v", err)
	}
}

func TestRender(t *testing.T) {
	s, _ := testService(t, config.PlanPro)
	start := startSession(t, s)

	r, err := s.Render(context.Background(), RenderInput{ID: start.ID, Fields: []string{"hashtags"}})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if r.Format != content.FormatJSON || !strings.HasSuffix(r.Filename, ".json") {
		t.Errorf("Format = %q, Filename = %q", r.Format, r.Filename)
	}
	if !strings.Contains(string(r.Data), "HASHTAGS_TAGS") || strings.Contains(string(r.Data), "ROTEIRO") {
		t.Errorf("unexpected render:\n%s", r.Data)
	}
}

func TestDelete(t *testing.T) {
	s, _ := testService(t, config.PlanPro)
	ctx := context.Background()
	start := startSession(t, s)

	out, err := s.Delete(ctx, DeleteInput{ID: start.ID})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !out.Deleted {
		t.Error("Deleted = false, want true")
	}

	if _, err := s.Fetch(ctx, FetchInput{ID: start.ID}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Fetch after delete: expected ErrNotFound, got: %v", err)
	}
	if _, err := s.Refine(ctx, RefineInput{ID: start.ID, Field: "script", Instruction: "x"}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Refine after delete: expected ErrNotFound, got: %v", err)
	}
	if _, err := s.Fetch(ctx, FetchInput{ID: start.ID, IncludeDeleted: true}); err != nil {
		t.Errorf("Fetch with IncludeDeleted failed: %v", err)
	}
	if _, err := s.Delete(ctx, DeleteInput{ID: start.ID}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second Delete: expected ErrNotFound, got: %v", err)
	}

	// The log still counts toward quota
	u, _ := s.Usage(ctx)
	if u.Used != 1 {
		t.Errorf("Used = %d, want 1", u.Used)
	}
}

func TestSessionsAreScopedToUser(t *testing.T) {
	s, database := testService(t, config.PlanPro)
	ctx := context.Background()
	start := startSession(t, s)

	cfg := config.DefaultConfig()
	cfg.UserID = "someone-else"
	other := newService(t, database, cfg)

	if _, err := other.Fetch(ctx, FetchInput{ID: start.ID}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user's session, got: %v", err)
	}
	list, err := other.List(ctx, ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list.Items) != 0 {
		t.Errorf("other user sees %d sessions, want 0", len(list.Items))
	}
}

func TestList_Pagination(t *testing.T) {
	s, _ := testService(t, config.PlanUnlimited)
	ctx := context.Background()
	for range 3 {
		startSession(t, s)
	}

	out, err := s.List(ctx, ListInput{Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Items) != 2 || !out.Pagination.HasMore || out.Pagination.Total != 3 {
		t.Errorf("page = %d items, pagination %+v", len(out.Items), out.Pagination)
	}
	if out.Sort != "updated_at_desc" {
		t.Errorf("Sort = %q", out.Sort)
	}

	out, err = s.List(ctx, ListInput{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Items) != 1 || out.Pagination.HasMore {
		t.Errorf("last page = %d items, pagination %+v", len(out.Items), out.Pagination)
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		limit, offset int
		wantL, wantO  int
	}{
		{0, 0, DefaultListLimit, 0},
		{-5, -1, DefaultListLimit, 0},
		{500, 10, MaxListLimit, 10},
		{7, 3, 7, 3},
	}
	for _, tc := range tests {
		l, o := clampPage(tc.limit, tc.offset)
		if l != tc.wantL || o != tc.wantO {
			t.Errorf("clampPage(%d, %d) = (%d, %d), want (%d, %d)", tc.limit, tc.offset, l, o, tc.wantL, tc.wantO)
		}
	}
}
