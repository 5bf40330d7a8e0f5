// Package plan provides the local user's identity, the NEW-generation quota
// for their plan tier and the generation log recorder.
package plan

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/reelcraft/internal/config"
	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/db"
	"github.com/hpungsan/reelcraft/internal/errors"
	"github.com/hpungsan/reelcraft/internal/refine"
)

// Window is a rolling quota: at most Limit NEW generations per Period.
type Window struct {
	Limit  int
	Period time.Duration
}

const day = 24 * time.Hour

// WindowFor returns the quota window of a plan tier. Unlimited plans have none.
func WindowFor(tier string) (Window, bool) {
	switch tier {
	case config.PlanFree:
		return Window{Limit: 2, Period: 7 * day}, true
	case config.PlanPro:
		return Window{Limit: 50, Period: 30 * day}, true
	}
	return Window{}, false
}

// Usage reports how much of the current window has been spent.
type Usage struct {
	Plan       string `json:"plan"`
	Used       int    `json:"used"`
	Limit      int    `json:"limit,omitempty"`
	WindowDays int    `json:"window_days,omitempty"`
	Unlimited  bool   `json:"unlimited"`
	CanRefine  bool   `json:"can_refine"`
}

// Local serves a single configured user backed by the generation log.
type Local struct {
	db   *sql.DB
	user refine.User
	now  func() time.Time
}

// Option configures Local.
type Option func(*Local)

// WithClock overrides the time source used for quota windows and records.
func WithClock(now func() time.Time) Option {
	return func(l *Local) { l.now = now }
}

// New creates the local plan capability from config.
func New(database *sql.DB, cfg *config.Config, opts ...Option) (*Local, error) {
	tier := strings.ToLower(strings.TrimSpace(cfg.Plan))
	switch tier {
	case "":
		tier = config.PlanFree
	case config.PlanFree, config.PlanPro, config.PlanUnlimited:
	default:
		return nil, errors.NewValidation("unknown plan: " + cfg.Plan)
	}
	userID := strings.TrimSpace(cfg.UserID)
	if userID == "" {
		userID = "local"
	}

	l := &Local{
		db:   database,
		user: refine.User{ID: userID, Plan: tier},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// CurrentUser implements refine.Identity.
func (l *Local) CurrentUser(context.Context) (refine.User, error) {
	return l.user, nil
}

// CanGenerateNew implements refine.Quota.
func (l *Local) CanGenerateNew(ctx context.Context, user refine.User) (bool, error) {
	w, limited := WindowFor(user.Plan)
	if !limited {
		return true, nil
	}
	used, err := l.used(ctx, user.ID, w)
	if err != nil {
		return false, err
	}
	return used < w.Limit, nil
}

// Usage reports the current user's quota state.
func (l *Local) Usage(ctx context.Context) (*Usage, error) {
	u := &Usage{Plan: l.user.Plan, CanRefine: l.user.Plan != config.PlanFree}
	w, limited := WindowFor(l.user.Plan)
	if !limited {
		u.Unlimited = true
		used, err := db.CountGenerations(ctx, l.db, l.user.ID, content.ActionNew, 0)
		if err != nil {
			return nil, err
		}
		u.Used = used
		return u, nil
	}
	used, err := l.used(ctx, l.user.ID, w)
	if err != nil {
		return nil, err
	}
	u.Used = used
	u.Limit = w.Limit
	u.WindowDays = int(w.Period / day)
	return u, nil
}

// RecordGeneration implements refine.Recorder.
func (l *Local) RecordGeneration(ctx context.Context, rec refine.Record) error {
	id, err := db.NewID()
	if err != nil {
		return errors.NewInternal(err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = l.now()
	}
	return db.InsertGeneration(ctx, l.db, &db.Generation{
		ID:          id,
		SessionID:   rec.SessionID,
		UserID:      rec.UserID,
		Action:      rec.Action,
		Platform:    rec.Request.Platform,
		Topic:       rec.Request.Topic,
		Keywords:    rec.Request.Keywords,
		Tone:        rec.Request.Tone,
		Duration:    rec.Request.Duration,
		Instruction: rec.Request.Instruction,
		Content:     rec.Content,
		Fallback:    rec.Fallback,
		CreatedAt:   createdAt.Unix(),
	})
}

func (l *Local) used(ctx context.Context, userID string, w Window) (int, error) {
	since := l.now().Add(-w.Period).Unix()
	return db.CountGenerations(ctx, l.db, userID, content.ActionNew, since)
}
