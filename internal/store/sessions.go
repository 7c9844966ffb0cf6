package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	apperrors "github.com/p-blackswan/outreach-agent/internal/errors"
)

// Session statuses as persisted. A paused session keeps is_active = 1; only
// an emergency stop clears the flag.
const (
	StatusActive  = "active"
	StatusPaused  = "paused"
	StatusStopped = "stopped"
)

// Session is the persisted record of one automation run. Story, plan and
// settings are snapshots captured at creation (plan and settings as JSON);
// they are never re-derived.
type Session struct {
	ID        string
	UserID    string
	Story     string
	Plan      string
	Settings  string
	Status    string
	IsActive  bool
	CreatedAt int64
	UpdatedAt int64
}

// CreateSessionIfNoneActive inserts a new active session for sess.UserID in a
// single transaction, failing with ErrConflict when the user already has an
// active one. The partial unique index on (user_id) WHERE is_active backs
// this up at the schema level.
func (s *Store) CreateSessionIfNoneActive(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if sess.CreatedAt == 0 {
		sess.CreatedAt = now
	}
	if sess.UpdatedAt == 0 {
		sess.UpdatedAt = now
	}
	sess.Status = StatusActive
	sess.IsActive = true

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError("begin_tx", err)
	}
	defer tx.Rollback()

	var active int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM automation_sessions WHERE user_id = ? AND is_active = 1`,
		sess.UserID,
	).Scan(&active)
	if err != nil {
		return apperrors.NewStoreError("check_active", err)
	}
	if active > 0 {
		return fmt.Errorf("user %s already has an active session: %w", sess.UserID, apperrors.ErrConflict)
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO automation_sessions (
		id, user_id, story, plan, settings, status, is_active, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		sess.ID, sess.UserID, sess.Story, sess.Plan, sess.Settings,
		sess.Status, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewStoreError("insert_session", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreError("commit", err)
	}
	return nil
}

// GetActiveSession returns the user's most recently created active session,
// or nil if there is none.
func (s *Store) GetActiveSession(ctx context.Context, userID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args, err := builder().
		Select("id", "user_id", "story", "plan", "settings", "status", "is_active", "created_at", "updated_at").
		From("automation_sessions").
		Where(sq.Eq{"user_id": userID, "is_active": 1}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, apperrors.NewStoreError("build_query", err)
	}

	return s.scanSession(s.db.QueryRowContext(ctx, query, args...))
}

// GetSession returns a session by ID, or nil if it does not exist.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args, err := builder().
		Select("id", "user_id", "story", "plan", "settings", "status", "is_active", "created_at", "updated_at").
		From("automation_sessions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, apperrors.NewStoreError("build_query", err)
	}

	return s.scanSession(s.db.QueryRowContext(ctx, query, args...))
}

func (s *Store) scanSession(row *sql.Row) (*Session, error) {
	sess := &Session{}
	var isActive int
	err := row.Scan(
		&sess.ID, &sess.UserID, &sess.Story, &sess.Plan, &sess.Settings,
		&sess.Status, &isActive, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreError("scan_session", err)
	}
	sess.IsActive = isActive == 1
	return sess, nil
}

// TransitionStatus atomically moves the user's active session from one status
// to another in a single conditional update. ErrNotFound when no active
// session is in the expected status; is_active is left untouched.
func (s *Store) TransitionStatus(ctx context.Context, userID, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
	UPDATE automation_sessions SET status = ?, updated_at = ?
	WHERE user_id = ? AND is_active = 1 AND status = ?`,
		to, time.Now().UnixMilli(), userID, from,
	)
	if err != nil {
		return apperrors.NewStoreError("transition_status", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewStoreError("rows_affected", err)
	}
	if rows == 0 {
		return fmt.Errorf("no active session in status %q for user %s: %w", from, userID, apperrors.ErrNotFound)
	}
	return nil
}

// StopActiveSessions deactivates every active session the user has in one
// bulk update and returns how many were stopped. Zero is a valid result.
func (s *Store) StopActiveSessions(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
	UPDATE automation_sessions SET status = ?, is_active = 0, updated_at = ?
	WHERE user_id = ? AND is_active = 1`,
		StatusStopped, time.Now().UnixMilli(), userID,
	)
	if err != nil {
		return 0, apperrors.NewStoreError("stop_sessions", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.NewStoreError("rows_affected", err)
	}
	return rows, nil
}
