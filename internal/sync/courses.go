package sync

import (
	"context"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/canvas"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/content"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/store"
)

// SyncCourses fetches the user's actively enrolled courses, applies the
// term filter, and upserts the survivors. Returns the local course ids
// touched in this run, in fetch order; that list drives every per-course
// sync that follows.
func (s *Service) SyncCourses(ctx context.Context, termID *int64) ([]int64, error) {
	if !s.adapter.IsAvailable() {
		return nil, ErrAdapterUnavailable
	}

	remote := s.adapter.FetchCourses(ctx, "active")
	remote = filterByTerm(remote, termID)
	if len(remote) == 0 {
		s.log.Info().Msg("no courses to sync")
		return nil, nil
	}

	records := make([]store.CourseRecord, 0, len(remote))
	for i := range remote {
		rc := &remote[i]
		if err := rc.Validate(); err != nil {
			s.log.Warn().Err(err).Int64("canvas_course_id", rc.ID).Msg("dropping malformed course")
			continue
		}

		// The list endpoint omits syllabus and teacher fields; the detail
		// endpoint fills them in. A detail fetch failure degrades to the
		// list fields.
		if detail := s.adapter.FetchCourseDetail(ctx, rc.ID); detail != nil {
			if detail.SyllabusBody != nil {
				rc.SyllabusBody = detail.SyllabusBody
			}
			if detail.TeacherName != nil {
				rc.TeacherName = detail.TeacherName
			}
			if detail.Description != nil {
				rc.Description = detail.Description
			}
		}

		records = append(records, store.CourseRecord{
			Course: store.Course{
				CanvasCourseID: rc.ID,
				CourseCode:     rc.CourseCode,
				CourseName:     rc.Name,
				Instructor:     rc.TeacherName,
				Description:    rc.Description,
				StartDate:      rc.StartAt,
				EndDate:        rc.EndAt,
				TermID:         rc.EnrollmentTermID,
			},
			SyllabusBody:        rc.SyllabusBody,
			SyllabusContentType: content.Detect(rc.SyllabusBody),
		})
	}
	if len(records) == 0 {
		return nil, nil
	}

	localIDs, err := s.store.PersistCourses(ctx, records)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("count", len(localIDs)).Msg("courses synced")
	return localIDs, nil
}

// filterByTerm applies the term selection rules. A nil termID keeps every
// course. TermMostRecent keeps only courses in the highest enrollment term
// seen; when no fetched course carries a term id the filter is skipped
// entirely rather than emptying the run. Any other value filters on
// equality.
func filterByTerm(courses []canvas.RemoteCourse, termID *int64) []canvas.RemoteCourse {
	if termID == nil {
		return courses
	}

	target := *termID
	if target == TermMostRecent {
		found := false
		var max int64
		for _, c := range courses {
			if c.EnrollmentTermID == nil {
				continue
			}
			if !found || *c.EnrollmentTermID > max {
				max = *c.EnrollmentTermID
				found = true
			}
		}
		if !found {
			return courses
		}
		target = max
	}

	var kept []canvas.RemoteCourse
	for _, c := range courses {
		if c.EnrollmentTermID != nil && *c.EnrollmentTermID == target {
			kept = append(kept, c)
		}
	}
	return kept
}
