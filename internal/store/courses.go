package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CourseRecord is one validated course plus its syllabus body, ready to persist.
type CourseRecord struct {
	Course              Course
	SyllabusBody        *string
	SyllabusContentType string
}

// PersistCourses upserts the batch of courses (matched by canvas_course_id)
// and their syllabi inside one transaction, and returns the local course ids
// in batch order. Existing rows get every mapped column updated; new rows
// are inserted and their generated ids captured.
func (s *Store) PersistCourses(ctx context.Context, records []CourseRecord) ([]int64, error) {
	var localIDs []int64

	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		now := nowString()
		for i := range records {
			rec := &records[i]
			c := &rec.Course

			var localID int64
			err := tx.QueryRowContext(ctx,
				`SELECT id FROM courses WHERE canvas_course_id = ?`, c.CanvasCourseID,
			).Scan(&localID)

			switch {
			case err == nil:
				_, err = tx.ExecContext(ctx, `
					UPDATE courses
					SET course_code = ?, course_name = ?, instructor = ?, description = ?,
					    start_date = ?, end_date = ?, term_id = ?, updated_at = ?
					WHERE id = ?`,
					c.CourseCode, c.CourseName, nullString(c.Instructor), nullString(c.Description),
					timeToNullString(c.StartDate), timeToNullString(c.EndDate), nullInt(c.TermID), now,
					localID,
				)
				if err != nil {
					return fmt.Errorf("failed to update course %d: %w", c.CanvasCourseID, err)
				}
			case errors.Is(err, sql.ErrNoRows):
				res, insErr := tx.ExecContext(ctx, `
					INSERT INTO courses
						(canvas_course_id, course_code, course_name, instructor, description,
						 start_date, end_date, term_id, updated_at)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					c.CanvasCourseID, c.CourseCode, c.CourseName, nullString(c.Instructor),
					nullString(c.Description), timeToNullString(c.StartDate),
					timeToNullString(c.EndDate), nullInt(c.TermID), now,
				)
				if insErr != nil {
					return fmt.Errorf("failed to insert course %d: %w", c.CanvasCourseID, insErr)
				}
				localID, insErr = res.LastInsertId()
				if insErr != nil {
					return fmt.Errorf("failed to read inserted course id: %w", insErr)
				}
			default:
				return fmt.Errorf("failed to look up course %d: %w", c.CanvasCourseID, err)
			}

			localIDs = append(localIDs, localID)

			if rec.SyllabusBody != nil {
				if err := upsertSyllabus(ctx, tx, localID, *rec.SyllabusBody, rec.SyllabusContentType, now); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return localIDs, nil
}

// upsertSyllabus updates the most recent syllabus row for the course, or
// inserts one when the course has none.
func upsertSyllabus(ctx context.Context, tx *sql.Tx, courseID int64, content, contentType, now string) error {
	var syllabusID int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM syllabi WHERE course_id = ? ORDER BY updated_at DESC, id DESC LIMIT 1`,
		courseID,
	).Scan(&syllabusID)

	switch {
	case err == nil:
		_, err = tx.ExecContext(ctx,
			`UPDATE syllabi SET content = ?, content_type = ?, updated_at = ? WHERE id = ?`,
			content, contentType, now, syllabusID,
		)
		if err != nil {
			return fmt.Errorf("failed to update syllabus for course %d: %w", courseID, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO syllabi (course_id, content, content_type, is_parsed, updated_at)
			 VALUES (?, ?, ?, 0, ?)`,
			courseID, content, contentType, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert syllabus for course %d: %w", courseID, err)
		}
	default:
		return fmt.Errorf("failed to look up syllabus for course %d: %w", courseID, err)
	}
	return nil
}

const courseColumns = `id, canvas_course_id, course_code, course_name, instructor,
	description, start_date, end_date, term_id`

func scanCourse(row interface{ Scan(...any) error }) (*Course, error) {
	var c Course
	var instructor, description, startDate, endDate sql.NullString
	var termID sql.NullInt64
	err := row.Scan(&c.ID, &c.CanvasCourseID, &c.CourseCode, &c.CourseName,
		&instructor, &description, &startDate, &endDate, &termID)
	if err != nil {
		return nil, err
	}
	c.Instructor = fromNullString(instructor)
	c.Description = fromNullString(description)
	c.StartDate = nullStringToTime(startDate)
	c.EndDate = nullStringToTime(endDate)
	if termID.Valid {
		v := termID.Int64
		c.TermID = &v
	}
	return &c, nil
}

// GetCourse retrieves one course by local id. Returns ErrNotFound when the
// id matches no row.
func (s *Store) GetCourse(ctx context.Context, id int64) (*Course, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course %d: %w", id, err)
	}
	return c, nil
}

// ListCourses returns all courses ordered by start date, newest first.
// When userID is non-empty, courses the user has opted out of indexing are
// excluded.
func (s *Store) ListCourses(ctx context.Context, userID string) ([]Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses c`
	var args []any
	if userID != "" {
		query += ` WHERE c.id NOT IN (
			SELECT course_id FROM user_courses WHERE user_id = ? AND indexing_opt_out = 1)`
		args = append(args, userID)
	}
	query += ` ORDER BY c.start_date DESC, c.id ASC`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// CanvasCourseIDs resolves local course ids back to their Canvas ids,
// preserving the order of the input slice. Unknown ids are skipped.
func (s *Store) CanvasCourseIDs(ctx context.Context, localIDs []int64) ([]CoursePair, error) {
	if len(localIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(localIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(localIDs))
	for i, id := range localIDs {
		args[i] = id
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, canvas_course_id FROM courses WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve canvas course ids: %w", err)
	}
	defer rows.Close()

	byLocal := make(map[int64]int64, len(localIDs))
	for rows.Next() {
		var local, canvas int64
		if err := rows.Scan(&local, &canvas); err != nil {
			return nil, fmt.Errorf("failed to scan course id pair: %w", err)
		}
		byLocal[local] = canvas
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pairs := make([]CoursePair, 0, len(localIDs))
	for _, localID := range localIDs {
		if canvasID, ok := byLocal[localID]; ok {
			pairs = append(pairs, CoursePair{LocalID: localID, CanvasID: canvasID})
		}
	}
	return pairs, nil
}

// CoursePair links a local course id to its Canvas id.
type CoursePair struct {
	LocalID  int64
	CanvasID int64
}

// FindCourseByCode returns the first course whose code loosely matches the
// given code (case-insensitive substring). Returns ErrNotFound on no match.
func (s *Store) FindCourseByCode(ctx context.Context, code string) (*Course, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses
		 WHERE LOWER(course_code) LIKE ? ORDER BY id ASC LIMIT 1`,
		"%"+strings.ToLower(code)+"%")
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find course by code %q: %w", code, err)
	}
	return c, nil
}

// CourseNames returns all (local id, name) pairs, used to match
// conversations to courses by context name.
func (s *Store) CourseNames(ctx context.Context) (map[string]int64, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, course_name FROM courses`)
	if err != nil {
		return nil, fmt.Errorf("failed to list course names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan course name: %w", err)
		}
		names[name] = id
	}
	return names, rows.Err()
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
