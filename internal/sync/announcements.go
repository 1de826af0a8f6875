package sync

import (
	"context"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/store"
)

// SyncAnnouncements fetches and persists announcements for each course.
func (s *Service) SyncAnnouncements(ctx context.Context, courseIDs []int64) (int, error) {
	pairs, err := s.store.CanvasCourseIDs(ctx, courseIDs)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, pair := range pairs {
		remote := s.adapter.FetchAnnouncements(ctx, pair.CanvasID)

		announcements := make([]store.Announcement, 0, len(remote))
		for i := range remote {
			ra := &remote[i]
			if err := ra.Validate(); err != nil {
				s.log.Warn().Err(err).
					Int64("canvas_announcement_id", ra.ID).
					Int64("course_id", pair.LocalID).
					Msg("dropping malformed announcement")
				continue
			}
			announcements = append(announcements, store.Announcement{
				CanvasAnnouncementID: ra.ID,
				Title:                ra.Title,
				Content:              ra.Message,
				PostedBy:             ra.AuthorName,
				PostedAt:             ra.PostedAt,
			})
		}

		count, err := s.store.PersistAnnouncements(ctx, pair.LocalID, announcements)
		if err != nil {
			s.log.Error().Err(err).Int64("course_id", pair.LocalID).Msg("failed to persist announcements")
			continue
		}
		total += count
	}
	return total, nil
}
