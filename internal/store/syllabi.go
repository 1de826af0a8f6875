package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetSyllabus returns the most recently updated syllabus row for a course.
// Older duplicate rows are ignored here and collapsed by maintenance.
func (s *Store) GetSyllabus(ctx context.Context, courseID int64) (*Syllabus, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, course_id, content, content_type, parsed_content, is_parsed
		FROM syllabi
		WHERE course_id = ?
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`, courseID)

	var syl Syllabus
	var content, contentType, parsed sql.NullString
	var isParsed int
	err := row.Scan(&syl.ID, &syl.CourseID, &content, &contentType, &parsed, &isParsed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get syllabus for course %d: %w", courseID, err)
	}
	syl.Content = fromNullString(content)
	syl.ContentType = contentType.String
	syl.ParsedContent = fromNullString(parsed)
	syl.IsParsed = isParsed != 0
	return &syl, nil
}

// SetParsedSyllabus stores extracted plain text for a course's most recent
// syllabus row and flags it as parsed.
func (s *Store) SetParsedSyllabus(ctx context.Context, courseID int64, parsed string) error {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE syllabi
		SET parsed_content = ?, is_parsed = 1, updated_at = ?
		WHERE id = (
			SELECT id FROM syllabi WHERE course_id = ?
			ORDER BY updated_at DESC, id DESC LIMIT 1
		)`, parsed, nowString(), courseID)
	if err != nil {
		return fmt.Errorf("failed to set parsed syllabus for course %d: %w", courseID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
