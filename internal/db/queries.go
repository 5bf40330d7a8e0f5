package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/errors"
	"github.com/hpungsan/reelcraft/internal/refine"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.Error{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// Session is a persisted editing session.
type Session struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Platform  content.Platform `json:"platform"`
	Topic     string           `json:"topic"`
	Title     string           `json:"title,omitempty"`
	State     refine.State     `json:"state"`
	CreatedAt int64            `json:"created_at"`
	UpdatedAt int64            `json:"updated_at"`
	DeletedAt *int64           `json:"deleted_at,omitempty"`
}

// SessionSummary is a session without its state, for listings.
type SessionSummary struct {
	ID        string           `json:"id"`
	Platform  content.Platform `json:"platform"`
	Topic     string           `json:"topic"`
	Title     string           `json:"title,omitempty"`
	CreatedAt int64            `json:"created_at"`
	UpdatedAt int64            `json:"updated_at"`
}

// Generation is one entry of the generation log.
type Generation struct {
	ID          string           `json:"id"`
	SessionID   string           `json:"session_id,omitempty"`
	UserID      string           `json:"user_id"`
	Action      content.Action   `json:"action"`
	Platform    content.Platform `json:"platform"`
	Topic       string           `json:"topic"`
	Keywords    string           `json:"keywords,omitempty"`
	Tone        content.Tone     `json:"tone,omitempty"`
	Duration    string           `json:"duration,omitempty"`
	Instruction string           `json:"instruction,omitempty"`
	Content     *content.Content `json:"content"`
	Fallback    bool             `json:"fallback"`
	CreatedAt   int64            `json:"created_at"`
}

// GenerationFilter narrows ListGenerations. Empty fields match everything.
type GenerationFilter struct {
	UserID    string
	SessionID string
	Limit     int
	Offset    int
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// InsertSession stores a new session. Platform, topic and title are taken
// from the state.
func InsertSession(ctx context.Context, db *sql.DB, s *Session) error {
	stateJSON, err := json.Marshal(s.State)
	if err != nil {
		return errors.NewInternal(err)
	}
	s.Platform, s.Topic, s.Title = describe(s.State)

	query := `
		INSERT INTO sessions (
			id, user_id, platform, topic, title, state_json,
			created_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`
	_, err = db.ExecContext(ctx, query,
		s.ID, s.UserID, string(s.Platform), s.Topic, nullIfEmpty(s.Title), string(stateJSON),
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewPersistence(err)
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetSession retrieves a session by its ULID.
// If includeDeleted is false, soft-deleted sessions are excluded.
func GetSession(ctx context.Context, db *sql.DB, id string, includeDeleted bool) (*Session, error) {
	query := `
		SELECT id, user_id, platform, topic, title, state_json,
			created_at, updated_at, deleted_at
		FROM sessions
		WHERE id = ?
	`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	s, err := scanSession(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("session", id)
	}
	if err != nil {
		return nil, errors.NewPersistence(err)
	}
	return s, nil
}

// UpdateSessionState replaces the stored state of an active session and
// returns the new updated_at.
func UpdateSessionState(ctx context.Context, db *sql.DB, id string, state refine.State) (int64, error) {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	platform, topic, title := describe(state)
	now := time.Now().Unix()

	query := `
		UPDATE sessions
		SET platform = ?, topic = ?, title = ?, state_json = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := db.ExecContext(ctx, query,
		string(platform), topic, nullIfEmpty(title), string(stateJSON), now, id,
	)
	if err != nil {
		return 0, errors.NewPersistence(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewPersistence(err)
	}
	if rowsAffected == 0 {
		return 0, errors.NewNotFound("session", id)
	}
	return now, nil
}

// SoftDeleteSession marks a session as deleted by setting deleted_at.
// Its generation log entries are kept; they still count against the quota.
func SoftDeleteSession(ctx context.Context, db *sql.DB, id string) error {
	query := `
		UPDATE sessions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := db.ExecContext(ctx, query, time.Now().Unix(), id)
	if err != nil {
		return errors.NewPersistence(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewPersistence(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("session", id)
	}
	return nil
}

// ListSessions returns a user's sessions, most recently updated first, and
// the total number of matching sessions.
func ListSessions(ctx context.Context, db *sql.DB, userID string, limit, offset int, includeDeleted bool) ([]SessionSummary, int, error) {
	where := "WHERE user_id = ?"
	if !includeDeleted {
		where += " AND deleted_at IS NULL"
	}

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions "+where, userID).Scan(&total); err != nil {
		return nil, 0, errors.NewPersistence(err)
	}

	query := `
		SELECT id, platform, topic, title, created_at, updated_at
		FROM sessions ` + where + `
		ORDER BY updated_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, errors.NewPersistence(err)
	}
	defer rows.Close()

	var items []SessionSummary
	for rows.Next() {
		var (
			s        SessionSummary
			platform string
			title    sql.NullString
		)
		if err := rows.Scan(&s.ID, &platform, &s.Topic, &title, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, errors.NewPersistence(err)
		}
		s.Platform = content.Platform(platform)
		s.Title = title.String
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewPersistence(err)
	}
	return items, total, nil
}

// InsertGeneration appends to the generation log.
func InsertGeneration(ctx context.Context, db *sql.DB, g *Generation) error {
	contentJSON, err := json.Marshal(g.Content)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO generations (
			id, session_id, user_id, action, platform, topic, keywords,
			tone, duration, instruction, content_json, fallback, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.ExecContext(ctx, query,
		g.ID, nullIfEmpty(g.SessionID), g.UserID, string(g.Action), string(g.Platform), g.Topic,
		nullIfEmpty(g.Keywords), nullIfEmpty(string(g.Tone)), nullIfEmpty(g.Duration),
		nullIfEmpty(g.Instruction), string(contentJSON), g.Fallback, g.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewPersistence(err)
	}
	return nil
}

// ListGenerations returns log entries, newest first, and the total count.
func ListGenerations(ctx context.Context, db *sql.DB, f GenerationFilter) ([]Generation, int, error) {
	var (
		conds []string
		args  []any
	)
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.SessionID != "" {
		conds = append(conds, "session_id = ?")
		args = append(args, f.SessionID)
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM generations "+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewPersistence(err)
	}

	query := `
		SELECT id, session_id, user_id, action, platform, topic, keywords,
			tone, duration, instruction, content_json, fallback, created_at
		FROM generations ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := db.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, errors.NewPersistence(err)
	}
	defer rows.Close()

	var items []Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, 0, errors.NewPersistence(err)
		}
		items = append(items, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewPersistence(err)
	}
	return items, total, nil
}

// CountGenerations counts a user's log entries of one action since the given
// unix time (inclusive).
func CountGenerations(ctx context.Context, db *sql.DB, userID string, action content.Action, since int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM generations
		WHERE user_id = ? AND action = ? AND created_at >= ?
	`
	var n int
	if err := db.QueryRowContext(ctx, query, userID, string(action), since).Scan(&n); err != nil {
		return 0, errors.NewPersistence(err)
	}
	return n, nil
}

func scanSession(row rowScanner) (*Session, error) {
	var (
		s         Session
		platform  string
		title     sql.NullString
		stateJSON string
		deletedAt sql.NullInt64
	)
	err := row.Scan(
		&s.ID, &s.UserID, &platform, &s.Topic, &title, &stateJSON,
		&s.CreatedAt, &s.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Platform = content.Platform(platform)
	s.Title = title.String
	if deletedAt.Valid {
		s.DeletedAt = &deletedAt.Int64
	}
	if err := json.Unmarshal([]byte(stateJSON), &s.State); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanGeneration(row rowScanner) (*Generation, error) {
	var (
		g           Generation
		sessionID   sql.NullString
		action      string
		platform    string
		keywords    sql.NullString
		tone        sql.NullString
		duration    sql.NullString
		instruction sql.NullString
		contentJSON string
	)
	err := row.Scan(
		&g.ID, &sessionID, &g.UserID, &action, &platform, &g.Topic, &keywords,
		&tone, &duration, &instruction, &contentJSON, &g.Fallback, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.SessionID = sessionID.String
	g.Action = content.Action(action)
	g.Platform = content.Platform(platform)
	g.Keywords = keywords.String
	g.Tone = content.Tone(tone.String)
	g.Duration = duration.String
	g.Instruction = instruction.String
	if err := json.Unmarshal([]byte(contentJSON), &g.Content); err != nil {
		return nil, err
	}
	return &g, nil
}

// describe pulls the listing columns out of a state.
func describe(s refine.State) (content.Platform, string, string) {
	title := ""
	if s.Current != nil {
		title = s.Current.MainTitle
	}
	return s.Form.Platform, s.Form.Topic, title
}

// nullIfEmpty stores empty strings as NULL.
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
