package store

import (
	"context"
	"database/sql"
	"fmt"
)

// PersistConversations upserts inbox conversations keyed by remote id.
// Conversations are not course-scoped at the remote side, so the whole
// batch shares one transaction.
func (s *Store) PersistConversations(ctx context.Context, conversations []Conversation) (int, error) {
	if len(conversations) == 0 {
		return 0, nil
	}

	count := 0
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		now := nowString()
		for _, c := range conversations {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO conversations
					(course_id, canvas_conversation_id, title, content, posted_by, posted_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(canvas_conversation_id) DO UPDATE SET
					course_id = excluded.course_id,
					title = excluded.title,
					content = excluded.content,
					posted_by = excluded.posted_by,
					posted_at = excluded.posted_at,
					updated_at = excluded.updated_at`,
				nullInt(c.CourseID), c.CanvasConversationID, nullString(c.Title),
				nullString(c.Content), nullString(c.PostedBy),
				timeToNullString(c.PostedAt), now,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert conversation %d: %w", c.CanvasConversationID, err)
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

// ListConversations returns conversations newest first. A limit of 0 means
// no limit; numWeeks of 0 means no recency cutoff.
func (s *Store) ListConversations(ctx context.Context, limit, numWeeks int) ([]Conversation, error) {
	query := `
		SELECT id, course_id, canvas_conversation_id, title, content, posted_by, posted_at
		FROM conversations
		WHERE 1 = 1`
	var args []any

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
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []Conversation
	for rows.Next() {
		var c Conversation
		var courseID sql.NullInt64
		var title, content, postedBy, postedAt sql.NullString
		err := rows.Scan(&c.ID, &courseID, &c.CanvasConversationID,
			&title, &content, &postedBy, &postedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		if courseID.Valid {
			c.CourseID = &courseID.Int64
		}
		c.Title = fromNullString(title)
		c.Content = fromNullString(content)
		c.PostedBy = fromNullString(postedBy)
		c.PostedAt = nullStringToTime(postedAt)
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}
