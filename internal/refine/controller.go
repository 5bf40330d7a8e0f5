// Package refine owns an editing session: full generations, variations and
// per-field refinements with history and a baseline-relative modified set.
package refine

import (
	"context"
	"math/rand/v2"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hpungsan/reelcraft/internal/config"
	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/errors"
	"github.com/hpungsan/reelcraft/internal/generate"
)

// User is the caller as seen by the plan gate.
type User struct {
	ID   string `json:"id"`
	Plan string `json:"plan"`
}

// Identity resolves the current user.
type Identity interface {
	CurrentUser(ctx context.Context) (User, error)
}

// Quota decides whether a NEW generation is allowed.
type Quota interface {
	CanGenerateNew(ctx context.Context, user User) (bool, error)
}

// Record is one successful generation or refinement.
type Record struct {
	SessionID string           `json:"session_id"`
	UserID    string           `json:"user_id"`
	Action    content.Action   `json:"action"`
	Request   content.Request  `json:"request"`
	Content   *content.Content `json:"content"`
	Fallback  bool             `json:"fallback"`
	CreatedAt time.Time        `json:"created_at"`
}

// Recorder stores generation records. Failures never affect the caller.
type Recorder interface {
	RecordGeneration(ctx context.Context, rec Record) error
}

// Generator produces content for a request.
type Generator interface {
	Generate(ctx context.Context, req content.Request) (*generate.Result, error)
}

// Outcome is the result of a state transition.
type Outcome struct {
	State       State           `json:"state"`
	Applied     []content.Field `json:"applied,omitempty"`
	Fallback    bool            `json:"fallback"`
	Notice      string          `json:"notice,omitempty"`
	ModelsTried []string        `json:"models_tried,omitempty"`
}

// Controller serializes transitions over one session State.
type Controller struct {
	mu    sync.Mutex
	state State
	epoch int

	gen       Generator
	identity  Identity
	quota     Quota
	recorder  Recorder
	logger    zerolog.Logger
	now       func() time.Time
	seed      func() string
	sessionID string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock overrides the history timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithSeed overrides the random token appended to default variation instructions.
func WithSeed(seed func() string) Option {
	return func(c *Controller) { c.seed = seed }
}

// WithRecorder sets where successful generations are recorded.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithSessionID tags records with the session they belong to.
func WithSessionID(id string) Option {
	return func(c *Controller) { c.sessionID = id }
}

// WithState resumes a previously saved session.
func WithState(s State) Option {
	return func(c *Controller) { c.state = s.Clone() }
}

// New creates a Controller with an empty session.
func New(gen Generator, identity Identity, quota Quota, opts ...Option) *Controller {
	c := &Controller{
		gen:      gen,
		identity: identity,
		quota:    quota,
		logger:   zerolog.Nop(),
		now:      time.Now,
		seed:     randomSeed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// History returns the recorded values of f, oldest first.
func (c *Controller) History(f content.Field) []HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.HistoryOf(f)
}

// StartGeneration runs a NEW generation and makes the result the baseline.
// The quota is consulted first; when it is exhausted no model call is made.
func (c *Controller) StartGeneration(ctx context.Context, req content.Request) (*Outcome, error) {
	user, err := c.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	ok, err := c.quota.CanGenerateNew(ctx, user)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !ok {
		return nil, errors.NewQuotaExceeded(user.Plan)
	}

	req.Action = content.ActionNew
	req.Existing = nil
	req.TargetField = 0
	req.TargetFields = nil
	req.Instruction = ""

	res, err := c.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	next := State{Form: req}
	next.reset(res.Content)
	c.state = next
	c.epoch++
	snapshot := next.Clone()
	c.mu.Unlock()

	c.record(ctx, user, req, res)
	return outcome(snapshot, nil, res), nil
}

// RegenerateVariation regenerates the whole bundle, asking the model to
// diverge from the current content. The result becomes the new baseline.
func (c *Controller) RegenerateVariation(ctx context.Context, instruction string) (*Outcome, error) {
	user, err := c.authorizeRefinement(ctx)
	if err != nil {
		return nil, err
	}
	if instruction == "" {
		instruction = "Gerar variação diferente. Seed: " + c.seed()
	}

	req, epoch, err := c.nextRequest(content.ActionVariation, instruction)
	if err != nil {
		return nil, err
	}

	res, err := c.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return nil, errors.NewCancelled("variation superseded by a newer generation")
	}
	next := State{Form: c.state.Form}
	next.reset(res.Content)
	c.state = next
	c.epoch++
	snapshot := next.Clone()
	c.mu.Unlock()

	c.record(ctx, user, req, res)
	return outcome(snapshot, nil, res), nil
}

// RefineField asks the model to rewrite one field of the current content.
func (c *Controller) RefineField(ctx context.Context, field content.Field, instruction string) (*Outcome, error) {
	if !field.Valid() {
		return nil, errors.NewValidation("refinement requires a target field")
	}
	return c.refine(ctx, content.ActionRefine, []content.Field{field}, instruction)
}

// RefineBatch asks the model to rewrite several fields in one call. Fields
// the response does not carry are left untouched.
func (c *Controller) RefineBatch(ctx context.Context, fields []content.Field, instruction string) (*Outcome, error) {
	if len(fields) == 0 {
		return nil, errors.NewValidation("batch refinement requires at least one field")
	}
	for _, f := range fields {
		if !f.Valid() {
			return nil, errors.NewValidation("batch refinement names an unknown field")
		}
	}
	fields = slices.Clone(fields)
	slices.Sort(fields)
	return c.refine(ctx, content.ActionBatch, slices.Compact(fields), instruction)
}

// RestoreField puts a previously recorded value back into the current
// content. History and the modified set are left as they are.
func (c *Controller) RestoreField(field content.Field, v content.Value) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Current == nil {
		return State{}, errors.NewValidation("no content to restore into")
	}
	next := c.state.Clone()
	if err := next.Current.Set(field, v); err != nil {
		return State{}, err
	}
	c.state = next
	return next.Clone(), nil
}

func (c *Controller) refine(ctx context.Context, action content.Action, fields []content.Field, instruction string) (*Outcome, error) {
	user, err := c.authorizeRefinement(ctx)
	if err != nil {
		return nil, err
	}

	req, epoch, err := c.nextRequest(action, instruction)
	if err != nil {
		return nil, err
	}
	if action == content.ActionRefine {
		req.TargetField = fields[0]
	} else {
		req.TargetFields = fields
	}

	res, err := c.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return nil, errors.NewCancelled("refinement superseded by a newer generation")
	}
	next := c.state.Clone()
	applied, err := applyResponse(&next, fields, res.Content, c.now())
	if err != nil {
		c.mu.Unlock()
		return nil, errors.NewInternal(err)
	}
	c.state = next
	snapshot := next.Clone()
	c.mu.Unlock()

	c.logger.Debug().
		Str("action", string(action)).
		Int("applied", len(applied)).
		Bool("fallback", res.Fallback).
		Msg("refinement applied")

	c.record(ctx, user, req, res)
	return outcome(snapshot, applied, res), nil
}

// applyResponse copies the requested fields present in resp into s. A refined
// main title brings the returned alternative titles along with it.
func applyResponse(s *State, fields []content.Field, resp *content.Content, at time.Time) ([]content.Field, error) {
	var applied []content.Field
	for _, f := range fields {
		v := resp.Get(f)
		if v.IsZero() {
			continue
		}
		if err := s.apply(f, v, at); err != nil {
			return nil, err
		}
		applied = append(applied, f)

		if f != content.FieldMainTitle || slices.Contains(fields, content.FieldAltTitles) {
			continue
		}
		alts := resp.Get(content.FieldAltTitles)
		if alts.IsZero() || alts.Equal(s.Current.Get(content.FieldAltTitles)) {
			continue
		}
		if err := s.apply(content.FieldAltTitles, alts, at); err != nil {
			return nil, err
		}
		applied = append(applied, content.FieldAltTitles)
	}
	return applied, nil
}

// nextRequest builds a request against the current content.
func (c *Controller) nextRequest(action content.Action, instruction string) (content.Request, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Current == nil {
		return content.Request{}, 0, errors.NewValidation("no content yet; run a generation first")
	}
	req := c.state.Form
	req.Action = action
	req.Existing = c.state.Current.Clone()
	req.Instruction = instruction
	req.TargetField = 0
	req.TargetFields = nil
	return req, c.epoch, nil
}

func (c *Controller) currentUser(ctx context.Context) (User, error) {
	user, err := c.identity.CurrentUser(ctx)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return User{}, err
		}
		return User{}, errors.NewInternal(err)
	}
	return user, nil
}

// authorizeRefinement denies every non-NEW action on the free plan.
func (c *Controller) authorizeRefinement(ctx context.Context) (User, error) {
	user, err := c.currentUser(ctx)
	if err != nil {
		return User{}, err
	}
	if user.Plan == config.PlanFree {
		return User{}, errors.NewRefinementDenied(user.Plan)
	}
	return user, nil
}

func (c *Controller) record(ctx context.Context, user User, req content.Request, res *generate.Result) {
	if c.recorder == nil {
		return
	}
	req.Existing = nil
	rec := Record{
		SessionID: c.sessionID,
		UserID:    user.ID,
		Action:    req.Action,
		Request:   req,
		Content:   res.Content,
		Fallback:  res.Fallback,
		CreatedAt: c.now(),
	}
	if err := c.recorder.RecordGeneration(ctx, rec); err != nil {
		c.logger.Warn().
			Err(errors.NewPersistence(err)).
			Str("session", c.sessionID).
			Str("action", string(req.Action)).
			Msg("failed to record generation")
	}
}

func outcome(s State, applied []content.Field, res *generate.Result) *Outcome {
	return &Outcome{
		State:       s,
		Applied:     applied,
		Fallback:    res.Fallback,
		Notice:      res.Notice,
		ModelsTried: res.ModelsTried,
	}
}

func randomSeed() string {
	return strconv.FormatUint(rand.Uint64(), 36)
}
