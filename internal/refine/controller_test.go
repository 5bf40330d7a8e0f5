package refine

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/errors"
	"github.com/hpungsan/reelcraft/internal/generate"
)

type fakeGen struct {
	mu      sync.Mutex
	reqs    []content.Request
	respond func(req content.Request) *content.Content
	err     error
}

func (g *fakeGen) Generate(_ context.Context, req content.Request) (*generate.Result, error) {
	g.mu.Lock()
	g.reqs = append(g.reqs, req)
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	if g.respond == nil {
		return &generate.Result{Content: baseContent()}, nil
	}
	return &generate.Result{Content: g.respond(req)}, nil
}

func (g *fakeGen) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.reqs)
}

type staticIdentity struct {
	user User
	err  error
}

func (i staticIdentity) CurrentUser(context.Context) (User, error) { return i.user, i.err }

type staticQuota struct{ allow bool }

func (q staticQuota) CanGenerateNew(context.Context, User) (bool, error) { return q.allow, nil }

type memRecorder struct {
	mu      sync.Mutex
	records []Record
	err     error
}

func (r *memRecorder) RecordGeneration(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

var (
	proUser  = User{ID: "u1", Plan: "pro"}
	freeUser = User{ID: "u2", Plan: "free"}
	fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

func baseContent() *content.Content {
	return &content.Content{
		Platform:    content.PlatformTikTok,
		MainTitle:   "Título base",
		AltTitles:   []string{"Alt 1", "Alt 2"},
		Description: "Descrição base",
		Hashtags:    []string{"a", "b"},
		Script:      "Roteiro base",
		KeyPoints:   []string{"p1", "p2", "p3"},
	}
}

func baseRequest() content.Request {
	return content.Request{Platform: content.PlatformTikTok, Topic: "investir em ações", Duration: "30s"}
}

// withField answers with the existing content and one field replaced.
func withField(f content.Field, v content.Value) func(content.Request) *content.Content {
	return func(req content.Request) *content.Content {
		if req.Existing == nil {
			return baseContent()
		}
		c := req.Existing.Clone()
		if err := c.Set(f, v); err != nil {
			panic(err)
		}
		return c
	}
}

func newController(t *testing.T, gen *fakeGen, user User, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	c := New(gen, staticIdentity{user: user}, staticQuota{allow: true}, opts...)
	_, err := c.StartGeneration(context.Background(), baseRequest())
	require.NoError(t, err)
	return c
}

func TestStartGeneration(t *testing.T) {
	gen := &fakeGen{respond: func(content.Request) *content.Content { return baseContent() }}
	rec := &memRecorder{}
	c := New(gen, staticIdentity{user: proUser}, staticQuota{allow: true}, WithRecorder(rec), WithSessionID("s1"))

	req := baseRequest()
	req.Action = content.ActionBatch
	req.Instruction = "ignored"
	out, err := c.StartGeneration(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, content.ActionNew, gen.reqs[0].Action)
	require.Empty(t, gen.reqs[0].Instruction)
	require.Equal(t, baseContent(), out.State.Current)
	require.Equal(t, baseContent(), out.State.Baseline)
	require.Empty(t, out.State.Modified)
	require.Empty(t, out.State.History)

	require.Len(t, rec.records, 1)
	require.Equal(t, "s1", rec.records[0].SessionID)
	require.Equal(t, "u1", rec.records[0].UserID)
	require.Equal(t, content.ActionNew, rec.records[0].Action)
}

func TestStartGeneration_QuotaExhausted(t *testing.T) {
	gen := &fakeGen{respond: func(content.Request) *content.Content { return baseContent() }}
	c := New(gen, staticIdentity{user: freeUser}, staticQuota{allow: false})

	_, err := c.StartGeneration(context.Background(), baseRequest())
	require.True(t, errors.Is(err, errors.ErrQuotaExceeded))
	e, _ := errors.As(err)
	require.Equal(t, errors.MsgQuotaExceeded, e.Message)
	require.Zero(t, gen.calls())
	require.Nil(t, c.Snapshot().Current)
}

func TestStartGeneration_IdentityFailure(t *testing.T) {
	gen := &fakeGen{}
	c := New(gen, staticIdentity{err: stderrors.New("no session")}, staticQuota{allow: true})

	_, err := c.StartGeneration(context.Background(), baseRequest())
	require.True(t, errors.Is(err, errors.ErrInternal))
	require.Zero(t, gen.calls())
}

func TestStartGeneration_ResetsSession(t *testing.T) {
	gen := &fakeGen{respond: withField(content.FieldDescription, content.Text("Nova"))}
	c := newController(t, gen, proUser)
	_, err := c.RefineField(context.Background(), content.FieldDescription, "mais curto")
	require.NoError(t, err)
	require.NotEmpty(t, c.Snapshot().Modified)

	_, err = c.StartGeneration(context.Background(), baseRequest())
	require.NoError(t, err)
	s := c.Snapshot()
	require.Empty(t, s.Modified)
	require.Empty(t, s.History)
	require.Equal(t, s.Baseline, s.Current)
}

func TestRefinementDeniedOnFreePlan(t *testing.T) {
	gen := &fakeGen{respond: func(content.Request) *content.Content { return baseContent() }}
	c := newController(t, gen, freeUser)
	before := c.Snapshot()

	calls := []struct {
		name string
		run  func() error
	}{
		{"field", func() error {
			_, err := c.RefineField(context.Background(), content.FieldMainTitle, "x")
			return err
		}},
		{"batch", func() error {
			_, err := c.RefineBatch(context.Background(), []content.Field{content.FieldScript}, "x")
			return err
		}},
		{"variation", func() error {
			_, err := c.RegenerateVariation(context.Background(), "")
			return err
		}},
	}
	for _, tt := range calls {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.True(t, errors.Is(err, errors.ErrAuthorization))
			require.Contains(t, err.Error(), errors.MsgRefinementDenied)
		})
	}
	require.Equal(t, 1, gen.calls())
	require.Equal(t, before, c.Snapshot())
}

func TestRefineWithoutContent(t *testing.T) {
	gen := &fakeGen{}
	c := New(gen, staticIdentity{user: proUser}, staticQuota{allow: true})

	_, err := c.RefineField(context.Background(), content.FieldScript, "x")
	require.True(t, errors.Is(err, errors.ErrValidation))
	_, err = c.RefineField(context.Background(), content.Field(0), "x")
	require.True(t, errors.Is(err, errors.ErrValidation))
	require.Zero(t, gen.calls())
}

func TestRefineField_TwiceRecordsTwoEntries(t *testing.T) {
	titles := []string{"Mais provocativo 1", "Mais provocativo 2"}
	gen := &fakeGen{}
	c := newController(t, gen, proUser)
	for i, title := range titles {
		gen.respond = withField(content.FieldMainTitle, content.Text(title))
		out, err := c.RefineField(context.Background(), content.FieldMainTitle, "more provocative")
		require.NoError(t, err)
		require.Equal(t, title, out.State.Current.MainTitle)
		require.Len(t, out.State.History[content.FieldMainTitle], i+1)
	}

	last := gen.reqs[len(gen.reqs)-1]
	require.Equal(t, content.ActionRefine, last.Action)
	require.Equal(t, content.FieldMainTitle, last.TargetField)
	require.Equal(t, "Mais provocativo 1", last.Existing.MainTitle)

	h := c.History(content.FieldMainTitle)
	require.Len(t, h, 2)
	require.Equal(t, "Título base", h[0].Value.String())
	require.Equal(t, "Mais provocativo 1", h[1].Value.String())
	require.False(t, h[0].Value.Equal(h[1].Value))
	require.Equal(t, fixedNow, h[0].Timestamp)
}

func TestHistoryNeverRepeatsConsecutively(t *testing.T) {
	answers := []string{"B", "B", "B", "C", "C", "B"}
	gen := &fakeGen{}
	c := newController(t, gen, proUser)

	prevLen := 0
	for _, a := range answers {
		gen.respond = withField(content.FieldDescription, content.Text(a))
		_, err := c.RefineField(context.Background(), content.FieldDescription, "x")
		require.NoError(t, err)

		h := c.History(content.FieldDescription)
		require.GreaterOrEqual(t, len(h), prevLen)
		prevLen = len(h)
		for i := 1; i < len(h); i++ {
			require.False(t, h[i].Value.Equal(h[i-1].Value), "entries %d and %d repeat", i-1, i)
		}
	}

	var got []string
	for _, e := range c.History(content.FieldDescription) {
		got = append(got, e.Value.String())
	}
	require.Equal(t, []string{"Descrição base", "B", "C"}, got)
}

func TestModifiedIsBaselineRelative(t *testing.T) {
	gen := &fakeGen{respond: withField(content.FieldDescription, content.Text("Outra"))}
	c := newController(t, gen, proUser)

	out, err := c.RefineField(context.Background(), content.FieldDescription, "x")
	require.NoError(t, err)
	require.Equal(t, []content.Field{content.FieldDescription}, out.State.Modified)
	require.True(t, out.State.IsModified(content.FieldDescription))

	gen.respond = withField(content.FieldDescription, content.Text("Descrição base"))
	out, err = c.RefineField(context.Background(), content.FieldDescription, "volta")
	require.NoError(t, err)
	require.Empty(t, out.State.Modified)
	require.Len(t, out.State.History[content.FieldDescription], 2)
}

func TestRefineMainTitleAppliesAltTitles(t *testing.T) {
	gen := &fakeGen{respond: func(req content.Request) *content.Content {
		c := req.Existing.Clone()
		c.MainTitle = "Novo título"
		c.AltTitles = []string{"Nova alt 1", "Nova alt 2"}
		c.Script = "ignored"
		return c
	}}
	c := newController(t, gen, proUser)

	out, err := c.RefineField(context.Background(), content.FieldMainTitle, "x")
	require.NoError(t, err)
	require.Equal(t, []content.Field{content.FieldMainTitle, content.FieldAltTitles}, out.Applied)
	require.Equal(t, []string{"Nova alt 1", "Nova alt 2"}, out.State.Current.AltTitles)
	require.Equal(t, "Roteiro base", out.State.Current.Script)
	require.Equal(t, []content.Field{content.FieldMainTitle, content.FieldAltTitles}, out.State.Modified)
	require.Len(t, out.State.History[content.FieldAltTitles], 1)
}

func TestRefineMainTitleKeepsUnchangedAltTitles(t *testing.T) {
	gen := &fakeGen{respond: withField(content.FieldMainTitle, content.Text("Novo"))}
	c := newController(t, gen, proUser)

	out, err := c.RefineField(context.Background(), content.FieldMainTitle, "x")
	require.NoError(t, err)
	require.Equal(t, []content.Field{content.FieldMainTitle}, out.Applied)
	require.Empty(t, out.State.History[content.FieldAltTitles])
}

func TestRefineBatch(t *testing.T) {
	gen := &fakeGen{respond: func(req content.Request) *content.Content {
		c := req.Existing.Clone()
		c.Description = "Descrição nova"
		c.Hashtags = []string{"x", "y"}
		c.ThumbnailText = ""
		return c
	}}
	c := newController(t, gen, proUser)

	fields := []content.Field{content.FieldThumbnail, content.FieldHashtags, content.FieldDescription, content.FieldHashtags}
	out, err := c.RefineBatch(context.Background(), fields, "mais direto")
	require.NoError(t, err)

	req := gen.reqs[len(gen.reqs)-1]
	require.Equal(t, content.ActionBatch, req.Action)
	require.Equal(t, []content.Field{content.FieldDescription, content.FieldHashtags, content.FieldThumbnail}, req.TargetFields)

	require.Equal(t, []content.Field{content.FieldDescription, content.FieldHashtags}, out.Applied)
	require.Equal(t, []content.Field{content.FieldDescription, content.FieldHashtags}, out.State.Modified)
	require.Empty(t, out.State.Current.ThumbnailText)
	require.Empty(t, out.State.History[content.FieldThumbnail])
	require.Equal(t, "Título base", out.State.Current.MainTitle)
}

func TestRefineBatch_Validation(t *testing.T) {
	gen := &fakeGen{respond: func(content.Request) *content.Content { return baseContent() }}
	c := newController(t, gen, proUser)

	_, err := c.RefineBatch(context.Background(), nil, "x")
	require.True(t, errors.Is(err, errors.ErrValidation))
	_, err = c.RefineBatch(context.Background(), []content.Field{content.FieldScript, content.Field(42)}, "x")
	require.True(t, errors.Is(err, errors.ErrValidation))
	require.Equal(t, 1, gen.calls())
}

func TestFailureLeavesStateIntact(t *testing.T) {
	gen := &fakeGen{respond: withField(content.FieldScript, content.Text("Roteiro 2"))}
	c := newController(t, gen, proUser)
	_, err := c.RefineField(context.Background(), content.FieldScript, "x")
	require.NoError(t, err)
	before := c.Snapshot()

	gen.err = errors.NewValidation("bad request")
	_, err = c.RefineField(context.Background(), content.FieldScript, "y")
	require.Error(t, err)
	_, err = c.RegenerateVariation(context.Background(), "")
	require.Error(t, err)
	require.Equal(t, before, c.Snapshot())
}

func TestRegenerateVariation(t *testing.T) {
	gen := &fakeGen{respond: withField(content.FieldScript, content.Text("Roteiro refinado"))}
	rec := &memRecorder{}
	c := newController(t, gen, proUser, WithRecorder(rec), WithSeed(func() string { return "abc123" }))
	_, err := c.RefineField(context.Background(), content.FieldScript, "x")
	require.NoError(t, err)

	gen.respond = func(req content.Request) *content.Content {
		c := req.Existing.Clone()
		c.MainTitle = "Outro ângulo"
		return c
	}
	out, err := c.RegenerateVariation(context.Background(), "")
	require.NoError(t, err)

	req := gen.reqs[len(gen.reqs)-1]
	require.Equal(t, content.ActionVariation, req.Action)
	require.Equal(t, "Gerar variação diferente. Seed: abc123", req.Instruction)
	require.Equal(t, "Roteiro refinado", req.Existing.Script)
	require.Equal(t, "investir em ações", req.Topic)

	require.Equal(t, "Outro ângulo", out.State.Baseline.MainTitle)
	require.Equal(t, out.State.Baseline, out.State.Current)
	require.Empty(t, out.State.Modified)
	require.Empty(t, out.State.History)

	require.Len(t, rec.records, 3)
	require.Equal(t, content.ActionVariation, rec.records[2].Action)
	require.Nil(t, rec.records[2].Request.Existing)
}

func TestRegenerateVariation_ExplicitInstruction(t *testing.T) {
	gen := &fakeGen{respond: func(req content.Request) *content.Content { return baseContent() }}
	c := newController(t, gen, proUser)

	_, err := c.RegenerateVariation(context.Background(), "tom mais leve")
	require.NoError(t, err)
	require.Equal(t, "tom mais leve", gen.reqs[len(gen.reqs)-1].Instruction)
}

func TestRestoreField(t *testing.T) {
	gen := &fakeGen{}
	c := newController(t, gen, proUser)
	for _, title := range []string{"T1", "T2"} {
		gen.respond = withField(content.FieldMainTitle, content.Text(title))
		_, err := c.RefineField(context.Background(), content.FieldMainTitle, "x")
		require.NoError(t, err)
	}
	before := c.Snapshot()
	old := before.History[content.FieldMainTitle][0].Value

	s, err := c.RestoreField(content.FieldMainTitle, old)
	require.NoError(t, err)
	require.Equal(t, "Título base", s.Current.MainTitle)
	require.Equal(t, before.History, s.History)
	require.Equal(t, before.Modified, s.Modified)

	_, err = c.RestoreField(content.FieldMainTitle, content.List([]string{"x"}))
	require.True(t, errors.Is(err, errors.ErrValidation))
	require.Equal(t, "Título base", c.Snapshot().Current.MainTitle)
}

func TestRestoreField_NoContent(t *testing.T) {
	c := New(&fakeGen{}, staticIdentity{user: proUser}, staticQuota{allow: true})
	_, err := c.RestoreField(content.FieldMainTitle, content.Text("x"))
	require.True(t, errors.Is(err, errors.ErrValidation))
}

func TestRecorderFailureIgnored(t *testing.T) {
	gen := &fakeGen{respond: func(content.Request) *content.Content { return baseContent() }}
	rec := &memRecorder{err: stderrors.New("disk full")}
	c := New(gen, staticIdentity{user: proUser}, staticQuota{allow: true}, WithRecorder(rec))

	out, err := c.StartGeneration(context.Background(), baseRequest())
	require.NoError(t, err)
	require.Equal(t, baseContent(), out.State.Current)
}

func TestOutcomeCarriesFallback(t *testing.T) {
	gen := &fallbackGen{}
	c := New(gen, staticIdentity{user: proUser}, staticQuota{allow: true})

	out, err := c.StartGeneration(context.Background(), baseRequest())
	require.NoError(t, err)
	require.True(t, out.Fallback)
	require.Equal(t, []string{"m1"}, out.ModelsTried)
	require.NotEmpty(t, out.Notice)
}

type fallbackGen struct{}

func (fallbackGen) Generate(_ context.Context, req content.Request) (*generate.Result, error) {
	return &generate.Result{
		Content:     baseContent(),
		Fallback:    true,
		Notice:      generate.Notice([]string{"m1"}),
		ModelsTried: []string{"m1"},
	}, nil
}

func TestConcurrentRefinementsOnDifferentFields(t *testing.T) {
	gen := &fakeGen{respond: func(req content.Request) *content.Content {
		c := req.Existing.Clone()
		switch req.TargetField {
		case content.FieldDescription:
			c.Description = "D2"
		case content.FieldScript:
			c.Script = "S2"
		case content.FieldHashtags:
			c.Hashtags = []string{"h2"}
		}
		return c
	}}
	c := newController(t, gen, proUser)

	fields := []content.Field{content.FieldDescription, content.FieldScript, content.FieldHashtags}
	var wg sync.WaitGroup
	errs := make([]error, len(fields))
	for i, f := range fields {
		wg.Add(1)
		go func(i int, f content.Field) {
			defer wg.Done()
			_, errs[i] = c.RefineField(context.Background(), f, "x")
		}(i, f)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	s := c.Snapshot()
	require.Equal(t, "D2", s.Current.Description)
	require.Equal(t, "S2", s.Current.Script)
	require.Equal(t, []string{"h2"}, s.Current.Hashtags)
	require.Equal(t, []content.Field{content.FieldDescription, content.FieldHashtags, content.FieldScript}, s.Modified)
	for _, f := range fields {
		require.Len(t, s.History[f], 1, fmt.Sprintf("history of %s", f.Key()))
	}
}

func TestStateSurvivesJSON(t *testing.T) {
	gen := &fakeGen{respond: withField(content.FieldHashtags, content.List([]string{"x"}))}
	c := newController(t, gen, proUser)
	_, err := c.RefineField(context.Background(), content.FieldHashtags, "x")
	require.NoError(t, err)

	data, err := json.Marshal(c.Snapshot())
	require.NoError(t, err)
	require.Contains(t, string(data), `"HASHTAGS_TAGS":[{"value":["a","b"]`)

	var restored State
	require.NoError(t, json.Unmarshal(data, &restored))
	again, err := json.Marshal(restored)
	require.NoError(t, err)
	require.JSONEq(t, string(data), string(again))

	resumed := New(gen, staticIdentity{user: proUser}, staticQuota{allow: true}, WithState(restored))
	require.Equal(t, []content.Field{content.FieldHashtags}, resumed.Snapshot().Modified)
	require.Len(t, resumed.History(content.FieldHashtags), 1)
}
