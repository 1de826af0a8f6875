package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ListCalendarEvents returns a course's dated events in chronological order.
func (s *Store) ListCalendarEvents(ctx context.Context, courseID int64) ([]CalendarEvent, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, course_id, title, description, event_type, source_type, source_id, event_date, end_date
		FROM calendar_events
		WHERE course_id = ?
		ORDER BY event_date ASC`, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events for course %d: %w", courseID, err)
	}
	defer rows.Close()

	var events []CalendarEvent
	for rows.Next() {
		var e CalendarEvent
		var description, sourceType, eventDate, endDate sql.NullString
		var sourceID sql.NullInt64
		err := rows.Scan(&e.ID, &e.CourseID, &e.Title, &description, &e.EventType,
			&sourceType, &sourceID, &eventDate, &endDate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar event: %w", err)
		}
		e.Description = fromNullString(description)
		e.SourceType = fromNullString(sourceType)
		if sourceID.Valid {
			e.SourceID = &sourceID.Int64
		}
		if t := nullStringToTime(eventDate); t != nil {
			e.EventDate = *t
		}
		e.EndDate = nullStringToTime(endDate)
		events = append(events, e)
	}
	return events, rows.Err()
}
