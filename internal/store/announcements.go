package store

import (
	"context"
	"database/sql"
	"fmt"
)

// PersistAnnouncements upserts one course's announcements in a single
// transaction. A failure anywhere rolls back the whole batch.
func (s *Store) PersistAnnouncements(ctx context.Context, courseID int64, announcements []Announcement) (int, error) {
	if len(announcements) == 0 {
		return 0, nil
	}

	count := 0
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		now := nowString()
		for _, a := range announcements {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO announcements
					(course_id, canvas_announcement_id, title, content, posted_by, posted_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(course_id, canvas_announcement_id) DO UPDATE SET
					title = excluded.title,
					content = excluded.content,
					posted_by = excluded.posted_by,
					posted_at = excluded.posted_at,
					updated_at = excluded.updated_at`,
				courseID, a.CanvasAnnouncementID, a.Title, nullString(a.Content),
				nullString(a.PostedBy), timeToNullString(a.PostedAt), now,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert announcement %d in course %d: %w",
					a.CanvasAnnouncementID, courseID, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListAnnouncements returns a course's announcements newest first. A limit
// of 0 means no limit; numWeeks of 0 means no recency cutoff.
func (s *Store) ListAnnouncements(ctx context.Context, courseID int64, limit, numWeeks int) ([]Announcement, error) {
	query := `
		SELECT id, course_id, canvas_announcement_id, title, content, posted_by, posted_at
		FROM announcements
		WHERE course_id = ?`
	args := []any{courseID}

	if numWeeks > 0 {
		query += ` AND posted_at >= ?`
		args = append(args, weeksAgoString(numWeeks))
	}
	query += ` ORDER BY posted_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements for course %d: %w", courseID, err)
	}
	defer rows.Close()

	var announcements []Announcement
	for rows.Next() {
		var a Announcement
		var content, postedBy, postedAt sql.NullString
		err := rows.Scan(&a.ID, &a.CourseID, &a.CanvasAnnouncementID, &a.Title,
			&content, &postedBy, &postedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		a.Content = fromNullString(content)
		a.PostedBy = fromNullString(postedBy)
		a.PostedAt = nullStringToTime(postedAt)
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}
