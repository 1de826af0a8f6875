package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// optOutFilter excludes courses the user has opted out of indexing. With an
// empty userID every course is searchable.
const optOutFilter = `
	c.id NOT IN (
		SELECT course_id FROM user_courses
		WHERE user_id = ? AND indexing_opt_out = 1
	)`

// SearchContent runs a case-insensitive substring search across
// assignments, modules, module items, syllabi, and announcements. A
// non-zero courseID restricts the search to one course.
func (s *Store) SearchContent(ctx context.Context, needle, userID string, courseID int64) ([]SearchResult, error) {
	pattern := "%" + needle + "%"

	type section struct {
		query string
		args  []any
	}

	buildSection := func(baseQuery string, baseArgs []any) section {
		q := baseQuery
		args := baseArgs
		if userID != "" {
			q += ` AND ` + optOutFilter
			args = append(args, userID)
		}
		if courseID != 0 {
			q += ` AND c.id = ?`
			args = append(args, courseID)
		}
		return section{query: q, args: args}
	}

	sections := []section{
		buildSection(`
			SELECT c.course_code, c.course_name, a.title, a.description, 'assignment', a.id
			FROM assignments a
			JOIN courses c ON a.course_id = c.id
			WHERE (a.title LIKE ? OR a.description LIKE ?)`,
			[]any{pattern, pattern}),
		buildSection(`
			SELECT c.course_code, c.course_name, m.name, m.description, 'module', m.id
			FROM modules m
			JOIN courses c ON m.course_id = c.id
			WHERE (m.name LIKE ? OR m.description LIKE ?)`,
			[]any{pattern, pattern}),
		buildSection(`
			SELECT c.course_code, c.course_name, mi.title, mi.content_details, 'module_item', mi.id
			FROM module_items mi
			JOIN modules m ON mi.module_id = m.id
			JOIN courses c ON m.course_id = c.id
			WHERE (mi.title LIKE ? OR mi.content_details LIKE ?)`,
			[]any{pattern, pattern}),
		buildSection(`
			SELECT c.course_code, c.course_name, c.course_name || ' syllabus', NULL, 'syllabus', sy.id
			FROM syllabi sy
			JOIN courses c ON sy.course_id = c.id
			WHERE (sy.content LIKE ? OR sy.parsed_content LIKE ?)`,
			[]any{pattern, pattern}),
		buildSection(`
			SELECT c.course_code, c.course_name, an.title, an.content, 'announcement', an.id
			FROM announcements an
			JOIN courses c ON an.course_id = c.id
			WHERE (an.title LIKE ? OR an.content LIKE ?)`,
			[]any{pattern, pattern}),
	}

	var results []SearchResult
	for _, sec := range sections {
		rows, err := s.conn.QueryContext(ctx, sec.query, sec.args...)
		if err != nil {
			return nil, fmt.Errorf("failed to search content: %w", err)
		}
		for rows.Next() {
			var r SearchResult
			var description sql.NullString
			err := rows.Scan(&r.CourseCode, &r.CourseName, &r.Title, &description,
				&r.ContentType, &r.ContentID)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan search result: %w", err)
			}
			r.Description = fromNullString(description)
			results = append(results, r)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return results, nil
}

// UpcomingDeadlines returns assignments due inside [now, now+days], soonest
// first. A non-zero courseID restricts to one course; limit of 0 means no
// cap.
func (s *Store) UpcomingDeadlines(ctx context.Context, days int, courseID int64, limit int) ([]Deadline, error) {
	now := time.Now().UTC()
	horizon := now.AddDate(0, 0, days)

	query := `
		SELECT c.course_code, c.course_name, a.title, a.assignment_type, a.due_date, a.points_possible
		FROM assignments a
		JOIN courses c ON a.course_id = c.id
		WHERE a.due_date IS NOT NULL
		  AND a.due_date >= ?
		  AND a.due_date <= ?`
	args := []any{now.Format(time.RFC3339), horizon.Format(time.RFC3339)}

	if courseID != 0 {
		query += ` AND c.id = ?`
		args = append(args, courseID)
	}
	query += ` ORDER BY a.due_date ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming deadlines: %w", err)
	}
	defer rows.Close()

	var deadlines []Deadline
	for rows.Next() {
		var d Deadline
		var assignmentType, dueDate sql.NullString
		var points sql.NullFloat64
		err := rows.Scan(&d.CourseCode, &d.CourseName, &d.AssignmentTitle,
			&assignmentType, &dueDate, &points)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deadline: %w", err)
		}
		d.AssignmentType = assignmentType.String
		d.DueDate = nullStringToTime(dueDate)
		d.PointsPossible = fromNullFloat(points)
		deadlines = append(deadlines, d)
	}
	return deadlines, rows.Err()
}

// Communications returns announcements and conversations merged into one
// feed, newest first. numWeeks of 0 means no recency cutoff; limit of 0
// means no cap.
func (s *Store) Communications(ctx context.Context, numWeeks, limit int) ([]Communication, error) {
	query := `
		SELECT 'announcement' AS source_type, an.id, an.title, an.content, an.posted_by, an.posted_at, c.course_name
		FROM announcements an
		JOIN courses c ON an.course_id = c.id`
	var args []any
	if numWeeks > 0 {
		query += ` WHERE an.posted_at >= ?`
		args = append(args, weeksAgoString(numWeeks))
	}
	query += `
		UNION ALL
		SELECT 'conversation', co.id, co.title, co.content, co.posted_by, co.posted_at, c.course_name
		FROM conversations co
		LEFT JOIN courses c ON co.course_id = c.id`
	if numWeeks > 0 {
		query += ` WHERE co.posted_at >= ?`
		args = append(args, weeksAgoString(numWeeks))
	}
	query += ` ORDER BY posted_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query communications: %w", err)
	}
	defer rows.Close()

	var comms []Communication
	for rows.Next() {
		var cm Communication
		var title, content, postedBy, postedAt, courseName sql.NullString
		err := rows.Scan(&cm.SourceType, &cm.ID, &title, &content, &postedBy, &postedAt, &courseName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan communication: %w", err)
		}
		cm.Title = fromNullString(title)
		cm.Content = fromNullString(content)
		cm.PostedBy = fromNullString(postedBy)
		cm.PostedAt = nullStringToTime(postedAt)
		cm.CourseName = fromNullString(courseName)
		comms = append(comms, cm)
	}
	return comms, rows.Err()
}
