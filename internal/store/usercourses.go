package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SetIndexingOptOut records whether a user's course is excluded from search
// indexing. The row is created on first use.
func (s *Store) SetIndexingOptOut(ctx context.Context, userID string, courseID int64, optOut bool) error {
	flag := 0
	if optOut {
		flag = 1
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO user_courses (user_id, course_id, indexing_opt_out, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, course_id) DO UPDATE SET
			indexing_opt_out = excluded.indexing_opt_out,
			updated_at = excluded.updated_at`,
		userID, courseID, flag, nowString(),
	)
	if err != nil {
		return fmt.Errorf("failed to set opt-out for user %s course %d: %w", userID, courseID, err)
	}
	return nil
}

// IsOptedOut reports whether the user has excluded the course from
// indexing. An absent row means not opted out.
func (s *Store) IsOptedOut(ctx context.Context, userID string, courseID int64) (bool, error) {
	var flag int
	err := s.conn.QueryRowContext(ctx,
		`SELECT indexing_opt_out FROM user_courses WHERE user_id = ? AND course_id = ?`,
		userID, courseID,
	).Scan(&flag)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check opt-out for user %s course %d: %w", userID, courseID, err)
	}
	return flag != 0, nil
}
