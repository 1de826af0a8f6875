package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PersistFiles upserts one course's file references in a single transaction.
func (s *Store) PersistFiles(ctx context.Context, courseID int64, files []File) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}

	count := 0
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		now := nowString()
		for _, f := range files {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO files
					(course_id, canvas_file_id, file_name, display_name, content_type, file_size, url, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(course_id, canvas_file_id) DO UPDATE SET
					file_name = excluded.file_name,
					display_name = excluded.display_name,
					content_type = excluded.content_type,
					file_size = excluded.file_size,
					url = excluded.url,
					updated_at = excluded.updated_at`,
				courseID, f.CanvasFileID, f.FileName, nullString(f.DisplayName),
				nullString(f.ContentType), nullInt(f.FileSize), nullString(f.URL), now,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert file %d in course %d: %w", f.CanvasFileID, courseID, err)
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

// ListFiles returns a course's files, optionally filtered by a
// case-insensitive extension suffix such as ".pdf".
func (s *Store) ListFiles(ctx context.Context, courseID int64, extension string) ([]File, error) {
	query := `
		SELECT id, course_id, canvas_file_id, file_name, display_name, content_type, file_size, url
		FROM files
		WHERE course_id = ?`
	args := []any{courseID}

	if extension != "" {
		query += ` AND LOWER(file_name) LIKE ?`
		args = append(args, "%"+strings.ToLower(extension))
	}
	query += ` ORDER BY file_name ASC`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list files for course %d: %w", courseID, err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		var displayName, contentType, url sql.NullString
		var fileSize sql.NullInt64
		err := rows.Scan(&f.ID, &f.CourseID, &f.CanvasFileID, &f.FileName,
			&displayName, &contentType, &fileSize, &url)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		f.DisplayName = fromNullString(displayName)
		f.ContentType = fromNullString(contentType)
		if fileSize.Valid {
			f.FileSize = &fileSize.Int64
		}
		f.URL = fromNullString(url)
		files = append(files, f)
	}
	return files, rows.Err()
}
