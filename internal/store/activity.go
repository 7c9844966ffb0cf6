package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	apperrors "github.com/p-blackswan/outreach-agent/internal/errors"
)

// ActivityEntry is one row of the append-only activity log. Entries are never
// updated or deleted by this service; retention is an operator concern.
type ActivityEntry struct {
	ID        int64
	UserID    string
	Action    string
	Target    string
	Result    string
	Metadata  string
	CreatedAt int64
}

// AppendActivity inserts one activity-log entry.
func (s *Store) AppendActivity(ctx context.Context, e *ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UnixMilli()
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO activity_log (user_id, action, target, result, metadata, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Action, e.Target, e.Result, e.Metadata, e.CreatedAt,
	)
	if err != nil {
		return apperrors.NewStoreError("append_activity", err)
	}
	return nil
}

// CountActivitySince counts the user's activity entries created at or after
// the given unix-millisecond timestamp.
func (s *Store) CountActivitySince(ctx context.Context, userID string, since int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args, err := builder().
		Select("COUNT(*)").
		From("activity_log").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"created_at": since}).
		ToSql()
	if err != nil {
		return 0, apperrors.NewStoreError("build_query", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewStoreError("count_activity", err)
	}
	return count, nil
}

// ListActivity returns the user's most recent activity entries, newest first.
func (s *Store) ListActivity(ctx context.Context, userID string, limit int) ([]ActivityEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	query, args, err := builder().
		Select("id", "user_id", "action", "target", "result", "metadata", "created_at").
		From("activity_log").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, apperrors.NewStoreError("build_query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("list_activity", err)
	}
	defer rows.Close()

	var entries []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Target, &e.Result, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, apperrors.NewStoreError("scan_activity", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("iterate_activity", err)
	}
	return entries, nil
}
