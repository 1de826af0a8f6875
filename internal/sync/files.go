package sync

import (
	"context"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/store"
)

// SyncFiles fetches and persists each course's file references.
func (s *Service) SyncFiles(ctx context.Context, courseIDs []int64) (int, error) {
	pairs, err := s.store.CanvasCourseIDs(ctx, courseIDs)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, pair := range pairs {
		remote := s.adapter.FetchFiles(ctx, pair.CanvasID)

		files := make([]store.File, 0, len(remote))
		for i := range remote {
			rf := &remote[i]
			if err := rf.Validate(); err != nil {
				s.log.Warn().Err(err).
					Int64("canvas_file_id", rf.ID).
					Int64("course_id", pair.LocalID).
					Msg("dropping malformed file")
				continue
			}
			name := rf.Name()
			files = append(files, store.File{
				CanvasFileID: rf.ID,
				FileName:     rf.Filename,
				DisplayName:  &name,
				ContentType:  rf.ContentType,
				FileSize:     rf.Size,
				URL:          rf.URL,
			})
		}

		count, err := s.store.PersistFiles(ctx, pair.LocalID, files)
		if err != nil {
			s.log.Error().Err(err).Int64("course_id", pair.LocalID).Msg("failed to persist files")
			continue
		}
		total += count
	}
	return total, nil
}
