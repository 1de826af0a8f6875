package sync

import (
	"context"
	"strings"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/store"
)

// SyncAssignments fetches and persists assignments for each course. A
// fetch or persist failure affects only that course; the loop continues
// and the count reflects what actually landed.
func (s *Service) SyncAssignments(ctx context.Context, courseIDs []int64) (int, error) {
	pairs, err := s.store.CanvasCourseIDs(ctx, courseIDs)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, pair := range pairs {
		remote := s.adapter.FetchAssignments(ctx, pair.CanvasID)

		assignments := make([]store.Assignment, 0, len(remote))
		for i := range remote {
			ra := &remote[i]
			if err := ra.Validate(); err != nil {
				s.log.Warn().Err(err).
					Int64("canvas_assignment_id", ra.ID).
					Int64("course_id", pair.LocalID).
					Msg("dropping malformed assignment")
				continue
			}

			var submissionTypes *string
			if len(ra.SubmissionTypes) > 0 {
				joined := strings.Join(ra.SubmissionTypes, ",")
				submissionTypes = &joined
			}

			assignments = append(assignments, store.Assignment{
				CanvasAssignmentID: ra.ID,
				Title:              ra.Name,
				Description:        ra.Description,
				AssignmentType:     classifyAssignment(ra.SubmissionTypes, ra.Name),
				DueDate:            ra.DueAt,
				AvailableFrom:      ra.UnlockAt,
				AvailableUntil:     ra.LockAt,
				PointsPossible:     ra.PointsPossible,
				SubmissionTypes:    submissionTypes,
			})
		}

		count, err := s.store.PersistAssignments(ctx, pair.LocalID, assignments)
		if err != nil {
			s.log.Error().Err(err).Int64("course_id", pair.LocalID).Msg("failed to persist assignments")
			continue
		}
		total += count
	}
	return total, nil
}

// classifyAssignment derives the local assignment type. Submission-type
// metadata takes precedence over title keywords, and the rule order is
// load-bearing: an online quiz titled "Final Exam" is a quiz.
func classifyAssignment(submissionTypes []string, title string) string {
	for _, st := range submissionTypes {
		if st == "online_quiz" {
			return "quiz"
		}
	}
	for _, st := range submissionTypes {
		if st == "discussion_topic" {
			return "discussion"
		}
	}
	lower := strings.ToLower(title)
	for _, kw := range []string{"exam", "midterm", "final"} {
		if strings.Contains(lower, kw) {
			return "exam"
		}
	}
	return "assignment"
}
