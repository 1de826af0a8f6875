package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CleanupReport summarizes one maintenance pass.
type CleanupReport struct {
	OrphanAssignments    int64 `json:"orphan_assignments"`
	DuplicateAssignments int64 `json:"duplicate_assignments"`
	DuplicateSyllabi     int64 `json:"duplicate_syllabi"`
}

// Cleanup removes rows that regular syncing never touches: assignments
// whose course is gone, duplicate assignment rows left by older ingest
// paths, and stale syllabus rows. Runs only when explicitly requested,
// never as part of a sync pass.
func (s *Store) Cleanup(ctx context.Context) (*CleanupReport, error) {
	report := &CleanupReport{}

	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM assignments
			WHERE course_id NOT IN (SELECT id FROM courses)`)
		if err != nil {
			return fmt.Errorf("failed to delete orphan assignments: %w", err)
		}
		report.OrphanAssignments, _ = res.RowsAffected()

		// For each (course_id, canvas_assignment_id) group keep the row
		// with the lowest local id and drop the rest.
		res, err = tx.ExecContext(ctx, `
			DELETE FROM assignments
			WHERE id NOT IN (
				SELECT MIN(id) FROM assignments
				GROUP BY course_id, canvas_assignment_id
			)`)
		if err != nil {
			return fmt.Errorf("failed to collapse duplicate assignments: %w", err)
		}
		report.DuplicateAssignments, _ = res.RowsAffected()

		// Syllabi have no unique constraint; keep the freshest row per
		// course.
		res, err = tx.ExecContext(ctx, `
			DELETE FROM syllabi
			WHERE id NOT IN (
				SELECT id FROM (
					SELECT id, ROW_NUMBER() OVER (
						PARTITION BY course_id
						ORDER BY updated_at DESC, id DESC
					) AS rn
					FROM syllabi
				) WHERE rn = 1
			)`)
		if err != nil {
			return fmt.Errorf("failed to collapse duplicate syllabi: %w", err)
		}
		report.DuplicateSyllabi, _ = res.RowsAffected()

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("orphan_assignments", report.OrphanAssignments).
		Int64("duplicate_assignments", report.DuplicateAssignments).
		Int64("duplicate_syllabi", report.DuplicateSyllabi).
		Msg("database cleanup complete")
	return report, nil
}
