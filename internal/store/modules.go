package store

import (
	"context"
	"database/sql"
	"fmt"
)

// PersistModules upserts one course's modules and their items inside a
// single transaction. Returns the number of modules persisted.
func (s *Store) PersistModules(ctx context.Context, courseID int64, modules []Module) (int, error) {
	if len(modules) == 0 {
		return 0, nil
	}

	count := 0
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		now := nowString()
		for i := range modules {
			m := &modules[i]

			_, err := tx.ExecContext(ctx, `
				INSERT INTO modules
					(course_id, canvas_module_id, name, description, unlock_date, position, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(course_id, canvas_module_id) DO UPDATE SET
					name = excluded.name,
					description = excluded.description,
					unlock_date = excluded.unlock_date,
					position = excluded.position,
					updated_at = excluded.updated_at`,
				courseID, m.CanvasModuleID, m.Name, nullString(m.Description),
				timeToNullString(m.UnlockDate), m.Position, now,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert module %d in course %d: %w", m.CanvasModuleID, courseID, err)
			}

			var moduleID int64
			err = tx.QueryRowContext(ctx,
				`SELECT id FROM modules WHERE course_id = ? AND canvas_module_id = ?`,
				courseID, m.CanvasModuleID,
			).Scan(&moduleID)
			if err != nil {
				return fmt.Errorf("failed to resolve module %d local id: %w", m.CanvasModuleID, err)
			}
			m.ID = moduleID
			m.CourseID = courseID

			for j := range m.Items {
				item := &m.Items[j]
				_, err := tx.ExecContext(ctx, `
					INSERT INTO module_items
						(module_id, canvas_item_id, title, item_type, position, url, page_url,
						 content_details, updated_at)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
					ON CONFLICT(module_id, canvas_item_id) DO UPDATE SET
						title = excluded.title,
						item_type = excluded.item_type,
						position = excluded.position,
						url = excluded.url,
						page_url = excluded.page_url,
						content_details = excluded.content_details,
						updated_at = excluded.updated_at`,
					moduleID, item.CanvasItemID, item.Title, item.ItemType, item.Position,
					nullString(item.URL), nullString(item.PageURL),
					nullString(item.ContentDetails), now,
				)
				if err != nil {
					return fmt.Errorf("failed to upsert module item %d in module %d: %w",
						item.CanvasItemID, moduleID, err)
				}
				item.ModuleID = moduleID
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

// ListModules returns a course's modules ordered by position. When
// includeItems is set, each module carries its items ordered by position.
func (s *Store) ListModules(ctx context.Context, courseID int64, includeItems bool) ([]Module, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, course_id, canvas_module_id, name, description, unlock_date, position
		FROM modules
		WHERE course_id = ?
		ORDER BY position ASC, id ASC`, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules for course %d: %w", courseID, err)
	}
	defer rows.Close()

	var modules []Module
	for rows.Next() {
		var m Module
		var description, unlockDate sql.NullString
		var position sql.NullInt64
		err := rows.Scan(&m.ID, &m.CourseID, &m.CanvasModuleID, &m.Name,
			&description, &unlockDate, &position)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		m.Description = fromNullString(description)
		m.UnlockDate = nullStringToTime(unlockDate)
		m.Position = int(position.Int64)
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if includeItems {
		for i := range modules {
			items, err := s.ListModuleItems(ctx, modules[i].ID)
			if err != nil {
				return nil, err
			}
			modules[i].Items = items
		}
	}
	return modules, nil
}

// ListModuleItems returns a module's items ordered by position.
func (s *Store) ListModuleItems(ctx context.Context, moduleID int64) ([]ModuleItem, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, module_id, canvas_item_id, title, item_type, position, url, page_url, content_details
		FROM module_items
		WHERE module_id = ?
		ORDER BY position ASC, id ASC`, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for module %d: %w", moduleID, err)
	}
	defer rows.Close()

	var items []ModuleItem
	for rows.Next() {
		var item ModuleItem
		var position sql.NullInt64
		var url, pageURL, contentDetails sql.NullString
		err := rows.Scan(&item.ID, &item.ModuleID, &item.CanvasItemID, &item.Title,
			&item.ItemType, &position, &url, &pageURL, &contentDetails)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module item: %w", err)
		}
		item.Position = int(position.Int64)
		item.URL = fromNullString(url)
		item.PageURL = fromNullString(pageURL)
		item.ContentDetails = fromNullString(contentDetails)
		items = append(items, item)
	}
	return items, rows.Err()
}
