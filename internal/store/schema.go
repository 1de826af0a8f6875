package store

import (
	"context"
	"fmt"
)

// InitSchema creates all tables, indexes, and views if they do not exist.
// Idempotent.
func (s *Store) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS courses (
		id INTEGER PRIMARY KEY,
		canvas_course_id INTEGER UNIQUE NOT NULL,
		course_code TEXT NOT NULL,
		course_name TEXT NOT NULL,
		instructor TEXT,
		description TEXT,
		start_date TEXT,
		end_date TEXT,
		term_id INTEGER,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS syllabi (
		id INTEGER PRIMARY KEY,
		course_id INTEGER NOT NULL,
		content TEXT,
		content_type TEXT,
		parsed_content TEXT,
		is_parsed INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS assignments (
		id INTEGER PRIMARY KEY,
		course_id INTEGER NOT NULL,
		canvas_assignment_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		assignment_type TEXT,
		due_date TEXT,
		available_from TEXT,
		available_until TEXT,
		points_possible REAL,
		submission_types TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE,
		UNIQUE (course_id, canvas_assignment_id)
	);

	CREATE TABLE IF NOT EXISTS modules (
		id INTEGER PRIMARY KEY,
		course_id INTEGER NOT NULL,
		canvas_module_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		unlock_date TEXT,
		position INTEGER,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE,
		UNIQUE (course_id, canvas_module_id)
	);

	CREATE TABLE IF NOT EXISTS module_items (
		id INTEGER PRIMARY KEY,
		module_id INTEGER NOT NULL,
		canvas_item_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		item_type TEXT NOT NULL,
		position INTEGER,
		url TEXT,
		page_url TEXT,
		content_details TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		FOREIGN KEY (module_id) REFERENCES modules(id) ON DELETE CASCADE,
		UNIQUE (module_id, canvas_item_id)
	);

	CREATE TABLE IF NOT EXISTS calendar_events (
		id INTEGER PRIMARY KEY,
		course_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		event_type TEXT NOT NULL,
		source_type TEXT,
		source_id INTEGER,
		event_date TEXT NOT NULL,
		end_date TEXT,
		all_day INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE,
		UNIQUE (source_type, source_id)
	);

	CREATE TABLE IF NOT EXISTS user_courses (
		id INTEGER PRIMARY KEY,
		user_id TEXT NOT NULL,
		course_id INTEGER NOT NULL,
		indexing_opt_out INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE,
		UNIQUE (user_id, course_id)
	);

	CREATE TABLE IF NOT EXISTS announcements (
		id INTEGER PRIMARY KEY,
		course_id INTEGER NOT NULL,
		canvas_announcement_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		content TEXT,
		posted_by TEXT,
		posted_at TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE,
		UNIQUE (course_id, canvas_announcement_id)
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id INTEGER PRIMARY KEY,
		course_id INTEGER,
		canvas_conversation_id INTEGER UNIQUE NOT NULL,
		title TEXT,
		content TEXT,
		posted_by TEXT,
		posted_at TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS discussions (
		id INTEGER PRIMARY KEY,
		course_id INTEGER NOT NULL,
		canvas_discussion_id INTEGER,
		title TEXT,
		content TEXT,
		posted_by TEXT,
		posted_at TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS grades (
		id INTEGER PRIMARY KEY,
		course_id INTEGER NOT NULL,
		assignment_id INTEGER,
		student_id TEXT NOT NULL,
		grade REAL,
		feedback TEXT,
		graded_at TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE,
		FOREIGN KEY (assignment_id) REFERENCES assignments(id) ON DELETE SET NULL,
		UNIQUE (assignment_id, student_id)
	);

	CREATE TABLE IF NOT EXISTS lectures (
		id INTEGER PRIMARY KEY,
		course_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		lecture_date TEXT,
		location TEXT,
		content TEXT,
		recording_url TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY,
		course_id INTEGER NOT NULL,
		canvas_file_id INTEGER NOT NULL,
		file_name TEXT NOT NULL,
		display_name TEXT,
		content_type TEXT,
		file_size INTEGER,
		url TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE,
		UNIQUE (course_id, canvas_file_id)
	);

	CREATE INDEX IF NOT EXISTS idx_courses_canvas_id ON courses(canvas_course_id);
	CREATE INDEX IF NOT EXISTS idx_syllabi_course_id ON syllabi(course_id);
	CREATE INDEX IF NOT EXISTS idx_assignments_course_id ON assignments(course_id);
	CREATE INDEX IF NOT EXISTS idx_assignments_due_date ON assignments(due_date);
	CREATE INDEX IF NOT EXISTS idx_modules_course_id ON modules(course_id);
	CREATE INDEX IF NOT EXISTS idx_module_items_module_id ON module_items(module_id);
	CREATE INDEX IF NOT EXISTS idx_module_items_item_type ON module_items(item_type);
	CREATE INDEX IF NOT EXISTS idx_calendar_events_course_id ON calendar_events(course_id);
	CREATE INDEX IF NOT EXISTS idx_calendar_events_event_date ON calendar_events(event_date);
	CREATE INDEX IF NOT EXISTS idx_user_courses_user_id ON user_courses(user_id);
	CREATE INDEX IF NOT EXISTS idx_user_courses_opt_out ON user_courses(indexing_opt_out);
	CREATE INDEX IF NOT EXISTS idx_announcements_course_id ON announcements(course_id);
	CREATE INDEX IF NOT EXISTS idx_announcements_posted_at ON announcements(posted_at);
	CREATE INDEX IF NOT EXISTS idx_conversations_posted_at ON conversations(posted_at);
	CREATE INDEX IF NOT EXISTS idx_files_course_id ON files(course_id);

	CREATE VIEW IF NOT EXISTS upcoming_deadlines AS
	SELECT
		c.course_code,
		c.course_name,
		a.title AS assignment_title,
		a.assignment_type,
		a.due_date,
		a.points_possible
	FROM assignments a
	JOIN courses c ON a.course_id = c.id
	WHERE a.due_date IS NOT NULL
	ORDER BY a.due_date ASC;

	CREATE VIEW IF NOT EXISTS course_summary AS
	SELECT
		c.id AS course_id,
		c.course_code,
		c.course_name,
		c.instructor,
		COUNT(DISTINCT a.id) AS assignment_count,
		COUNT(DISTINCT m.id) AS module_count,
		MIN(a.due_date) AS next_due_date
	FROM courses c
	LEFT JOIN assignments a ON c.id = a.course_id
	LEFT JOIN modules m ON c.id = m.course_id
	GROUP BY c.id;
	`

	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
