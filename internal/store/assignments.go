package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PersistAssignments upserts one course's assignment batch inside a single
// transaction. Assignments with a due date also produce a calendar event
// keyed on (source_type='assignment', source_id). Returns the number of
// records persisted; on any failure the whole course batch is rolled back.
func (s *Store) PersistAssignments(ctx context.Context, courseID int64, assignments []Assignment) (int, error) {
	if len(assignments) == 0 {
		return 0, nil
	}

	count := 0
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		now := nowString()
		for i := range assignments {
			a := &assignments[i]

			_, err := tx.ExecContext(ctx, `
				INSERT INTO assignments
					(course_id, canvas_assignment_id, title, description, assignment_type,
					 due_date, available_from, available_until, points_possible,
					 submission_types, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(course_id, canvas_assignment_id) DO UPDATE SET
					title = excluded.title,
					description = excluded.description,
					assignment_type = excluded.assignment_type,
					due_date = excluded.due_date,
					available_from = excluded.available_from,
					available_until = excluded.available_until,
					points_possible = excluded.points_possible,
					submission_types = excluded.submission_types,
					updated_at = excluded.updated_at`,
				courseID, a.CanvasAssignmentID, a.Title, nullString(a.Description),
				a.AssignmentType, timeToNullString(a.DueDate), timeToNullString(a.AvailableFrom),
				timeToNullString(a.AvailableUntil), nullFloat(a.PointsPossible),
				nullString(a.SubmissionTypes), now,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert assignment %d in course %d: %w",
					a.CanvasAssignmentID, courseID, err)
			}

			var localID int64
			err = tx.QueryRowContext(ctx,
				`SELECT id FROM assignments WHERE course_id = ? AND canvas_assignment_id = ?`,
				courseID, a.CanvasAssignmentID,
			).Scan(&localID)
			if err != nil {
				return fmt.Errorf("failed to resolve assignment %d local id: %w", a.CanvasAssignmentID, err)
			}
			a.ID = localID
			a.CourseID = courseID

			if a.DueDate != nil {
				description := "Due date for assignment: " + a.Title
				_, err = tx.ExecContext(ctx, `
					INSERT INTO calendar_events
						(course_id, title, description, event_type, source_type, source_id,
						 event_date, updated_at)
					VALUES (?, ?, ?, ?, 'assignment', ?, ?, ?)
					ON CONFLICT(source_type, source_id) DO UPDATE SET
						course_id = excluded.course_id,
						title = excluded.title,
						description = excluded.description,
						event_type = excluded.event_type,
						event_date = excluded.event_date,
						updated_at = excluded.updated_at`,
					courseID, a.Title, description, a.AssignmentType, localID,
					timeToNullString(a.DueDate), now,
				)
				if err != nil {
					return fmt.Errorf("failed to upsert calendar event for assignment %d: %w", localID, err)
				}
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

const assignmentColumns = `id, course_id, canvas_assignment_id, title, description,
	assignment_type, due_date, available_from, available_until, points_possible,
	submission_types`

func scanAssignment(row interface{ Scan(...any) error }) (*Assignment, error) {
	var a Assignment
	var description, assignmentType, dueDate, availableFrom, availableUntil, submissionTypes sql.NullString
	var points sql.NullFloat64
	err := row.Scan(&a.ID, &a.CourseID, &a.CanvasAssignmentID, &a.Title, &description,
		&assignmentType, &dueDate, &availableFrom, &availableUntil, &points, &submissionTypes)
	if err != nil {
		return nil, err
	}
	a.Description = fromNullString(description)
	if assignmentType.Valid {
		a.AssignmentType = assignmentType.String
	}
	a.DueDate = nullStringToTime(dueDate)
	a.AvailableFrom = nullStringToTime(availableFrom)
	a.AvailableUntil = nullStringToTime(availableUntil)
	a.PointsPossible = fromNullFloat(points)
	a.SubmissionTypes = fromNullString(submissionTypes)
	return &a, nil
}

// ListAssignments returns all assignments for a course ordered by due date.
func (s *Store) ListAssignments(ctx context.Context, courseID int64) ([]Assignment, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE course_id = ?
		 ORDER BY due_date IS NULL, due_date ASC, id ASC`, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments for course %d: %w", courseID, err)
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// FindAssignment returns the best title/description match for needle within
// a course, preferring title matches and earlier due dates. Returns
// ErrNotFound when nothing matches.
func (s *Store) FindAssignment(ctx context.Context, courseID int64, needle string) (*Assignment, error) {
	pattern := "%" + needle + "%"
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE course_id = ? AND (title LIKE ? OR description LIKE ?)
		 ORDER BY CASE WHEN title LIKE ? THEN 0 ELSE 1 END,
		          due_date IS NULL, due_date ASC
		 LIMIT 1`,
		courseID, pattern, pattern, pattern)
	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find assignment %q in course %d: %w", needle, courseID, err)
	}
	return a, nil
}
