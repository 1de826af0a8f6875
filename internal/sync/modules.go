package sync

import (
	"context"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/content"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/store"
)

// SyncModules fetches each course's modules and their items, converting
// page bodies to Markdown so they are searchable as plain text.
func (s *Service) SyncModules(ctx context.Context, courseIDs []int64) (int, error) {
	pairs, err := s.store.CanvasCourseIDs(ctx, courseIDs)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, pair := range pairs {
		remote := s.adapter.FetchModules(ctx, pair.CanvasID)

		modules := make([]store.Module, 0, len(remote))
		for i := range remote {
			rm := &remote[i]
			if err := rm.Validate(); err != nil {
				s.log.Warn().Err(err).
					Int64("canvas_module_id", rm.ID).
					Int64("course_id", pair.LocalID).
					Msg("dropping malformed module")
				continue
			}

			m := store.Module{
				CanvasModuleID: rm.ID,
				Name:           rm.Name,
				UnlockDate:     rm.UnlockAt,
				Position:       rm.Position,
			}

			for _, ri := range s.adapter.FetchModuleItems(ctx, pair.CanvasID, rm.ID) {
				if err := ri.Validate(); err != nil {
					s.log.Warn().Err(err).
						Int64("canvas_item_id", ri.ID).
						Int64("canvas_module_id", rm.ID).
						Msg("dropping malformed module item")
					continue
				}
				item := store.ModuleItem{
					CanvasItemID: ri.ID,
					Title:        ri.Title,
					ItemType:     ri.Type,
					Position:     ri.Position,
					URL:          ri.URL,
					PageURL:      ri.PageURL,
				}
				if ri.Content != nil && *ri.Content != "" {
					md := content.ToMarkdown(*ri.Content)
					item.ContentDetails = &md
				}
				m.Items = append(m.Items, item)
			}

			modules = append(modules, m)
		}

		count, err := s.store.PersistModules(ctx, pair.LocalID, modules)
		if err != nil {
			s.log.Error().Err(err).Int64("course_id", pair.LocalID).Msg("failed to persist modules")
			continue
		}
		total += count
	}
	return total, nil
}
