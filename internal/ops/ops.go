package ops

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hpungsan/reelcraft/internal/config"
	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/db"
	"github.com/hpungsan/reelcraft/internal/errors"
	"github.com/hpungsan/reelcraft/internal/plan"
	"github.com/hpungsan/reelcraft/internal/refine"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Service runs session operations. Live controllers are cached per session so
// concurrent refinements of one session merge in memory before being saved.
type Service struct {
	db     *sql.DB
	cfg    *config.Config
	gen    refine.Generator
	plan   *plan.Local
	logger zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*liveSession
}

type liveSession struct {
	ctrl *refine.Controller

	// saveMu orders writes so the last write carries the newest snapshot.
	saveMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service. The plan capability provides identity, quota and the
// generation log.
func New(database *sql.DB, cfg *config.Config, gen refine.Generator, pl *plan.Local, opts ...Option) *Service {
	s := &Service{
		db:       database,
		cfg:      cfg,
		gen:      gen,
		plan:     pl,
		logger:   zerolog.Nop(),
		sessions: make(map[string]*liveSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// SessionOutput is the result of an operation that changes a session.
type SessionOutput struct {
	ID          string          `json:"id"`
	State       refine.State    `json:"state"`
	Applied     []content.Field `json:"applied,omitempty"`
	Fallback    bool            `json:"fallback"`
	Notice      string          `json:"notice,omitempty"`
	ModelsTried []string        `json:"models_tried,omitempty"`
	UpdatedAt   int64           `json:"updated_at"`
}

func (s *Service) controllerOptions(id string, extra ...refine.Option) []refine.Option {
	return append([]refine.Option{
		refine.WithLogger(s.logger),
		refine.WithRecorder(s.plan),
		refine.WithSessionID(id),
	}, extra...)
}

// live returns the cached controller of a session, loading it on first use.
func (s *Service) live(ctx context.Context, id string) (*liveSession, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewValidation("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ls, ok := s.sessions[id]; ok {
		return ls, nil
	}

	sess, err := s.owned(ctx, id, false)
	if err != nil {
		return nil, err
	}
	ls := &liveSession{
		ctrl: refine.New(s.gen, s.plan, s.plan, s.controllerOptions(id, refine.WithState(sess.State))...),
	}
	s.sessions[id] = ls
	return ls, nil
}

// owned loads a session that belongs to the current user. Sessions of other
// users are reported as missing.
func (s *Service) owned(ctx context.Context, id string, includeDeleted bool) (*db.Session, error) {
	user, err := s.plan.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := db.GetSession(ctx, s.db, id, includeDeleted)
	if err != nil {
		return nil, err
	}
	if sess.UserID != user.ID {
		return nil, errors.NewNotFound("session", id)
	}
	return sess, nil
}

// save persists the controller's latest state.
func (s *Service) save(ctx context.Context, id string, ls *liveSession) (int64, error) {
	ls.saveMu.Lock()
	defer ls.saveMu.Unlock()

	updatedAt, err := db.UpdateSessionState(ctx, s.db, id, ls.ctrl.Snapshot())
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			s.forget(id)
		}
		return 0, err
	}
	return updatedAt, nil
}

func (s *Service) forget(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// commit saves the session after a transition and builds the output.
func (s *Service) commit(ctx context.Context, id string, ls *liveSession, out *refine.Outcome) (*SessionOutput, error) {
	updatedAt, err := s.save(ctx, id, ls)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{
		ID:          id,
		State:       ls.ctrl.Snapshot(),
		Applied:     out.Applied,
		Fallback:    out.Fallback,
		Notice:      out.Notice,
		ModelsTried: out.ModelsTried,
		UpdatedAt:   updatedAt,
	}, nil
}

// createSession stores a new session holding state.
func (s *Service) createSession(ctx context.Context, id, userID string, state refine.State) (int64, error) {
	now := time.Now().Unix()
	err := db.InsertSession(ctx, s.db, &db.Session{
		ID:        id,
		UserID:    userID,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return 0, err
	}
	return now, nil
}

// clampPage applies list defaults and bounds.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return limit, max(offset, 0)
}
