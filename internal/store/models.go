package store

import "time"

// Course is a locally mirrored Canvas course.
type Course struct {
	ID             int64      `json:"id"`
	CanvasCourseID int64      `json:"canvas_course_id"`
	CourseCode     string     `json:"course_code"`
	CourseName     string     `json:"course_name"`
	Instructor     *string    `json:"instructor,omitempty"`
	Description    *string    `json:"description,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	TermID         *int64     `json:"term_id,omitempty"`
}

// Syllabus is the stored syllabus content for a course.
type Syllabus struct {
	ID            int64   `json:"id"`
	CourseID      int64   `json:"course_id"`
	Content       *string `json:"content,omitempty"`
	ContentType   string  `json:"content_type"`
	ParsedContent *string `json:"parsed_content,omitempty"`
	IsParsed      bool    `json:"is_parsed"`
}

// Assignment is a locally mirrored assignment. The natural key is
// (CourseID, CanvasAssignmentID).
type Assignment struct {
	ID                 int64      `json:"id"`
	CourseID           int64      `json:"course_id"`
	CanvasAssignmentID int64      `json:"canvas_assignment_id"`
	Title              string     `json:"title"`
	Description        *string    `json:"description,omitempty"`
	AssignmentType     string     `json:"assignment_type"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	AvailableFrom      *time.Time `json:"available_from,omitempty"`
	AvailableUntil     *time.Time `json:"available_until,omitempty"`
	PointsPossible     *float64   `json:"points_possible,omitempty"`
	SubmissionTypes    *string    `json:"submission_types,omitempty"`
}

// Module is a course module; Position defines iteration order.
type Module struct {
	ID             int64      `json:"id"`
	CourseID       int64      `json:"course_id"`
	CanvasModuleID int64      `json:"canvas_module_id"`
	Name           string     `json:"name"`
	Description    *string    `json:"description,omitempty"`
	UnlockDate     *time.Time `json:"unlock_date,omitempty"`
	Position       int        `json:"position"`
	Items          []ModuleItem `json:"items,omitempty"`
}

// ModuleItem is a single item inside a module. ContentDetails may hold
// Markdown-converted page content for searchability.
type ModuleItem struct {
	ID             int64   `json:"id"`
	ModuleID       int64   `json:"module_id"`
	CanvasItemID   int64   `json:"canvas_item_id"`
	Title          string  `json:"title"`
	ItemType       string  `json:"item_type"`
	Position       int     `json:"position"`
	URL            *string `json:"url,omitempty"`
	PageURL        *string `json:"page_url,omitempty"`
	ContentDetails *string `json:"content_details,omitempty"`
}

// Announcement is a locally mirrored course announcement.
type Announcement struct {
	ID                   int64      `json:"id"`
	CourseID             int64      `json:"course_id"`
	CanvasAnnouncementID int64      `json:"canvas_announcement_id"`
	Title                string     `json:"title"`
	Content              *string    `json:"content,omitempty"`
	PostedBy             *string    `json:"posted_by,omitempty"`
	PostedAt             *time.Time `json:"posted_at,omitempty"`
}

// Conversation is a locally mirrored inbox conversation. PostedAt reflects
// the remote system's message timestamp, never the local insert time.
type Conversation struct {
	ID                   int64      `json:"id"`
	CourseID             *int64     `json:"course_id,omitempty"`
	CanvasConversationID int64      `json:"canvas_conversation_id"`
	Title                *string    `json:"title,omitempty"`
	Content              *string    `json:"content,omitempty"`
	PostedBy             *string    `json:"posted_by,omitempty"`
	PostedAt             *time.Time `json:"posted_at,omitempty"`
}

// CalendarEvent is a dated event derived from synced content (currently
// assignment due dates).
type CalendarEvent struct {
	ID          int64      `json:"id"`
	CourseID    int64      `json:"course_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	EventType   string     `json:"event_type"`
	SourceType  *string    `json:"source_type,omitempty"`
	SourceID    *int64     `json:"source_id,omitempty"`
	EventDate   time.Time  `json:"event_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// File is a locally mirrored course file reference.
type File struct {
	ID           int64   `json:"id"`
	CourseID     int64   `json:"course_id"`
	CanvasFileID int64   `json:"canvas_file_id"`
	FileName     string  `json:"file_name"`
	DisplayName  *string `json:"display_name,omitempty"`
	ContentType  *string `json:"content_type,omitempty"`
	FileSize     *int64  `json:"file_size,omitempty"`
	URL          *string `json:"url,omitempty"`
}

// SearchResult is one free-text match, tagged with the table it came from.
type SearchResult struct {
	CourseCode  string  `json:"course_code"`
	CourseName  string  `json:"course_name"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	ContentType string  `json:"content_type"`
	ContentID   int64   `json:"content_id"`
}

// Deadline is one row of the upcoming-deadlines query.
type Deadline struct {
	CourseCode      string     `json:"course_code"`
	CourseName      string     `json:"course_name"`
	AssignmentTitle string     `json:"assignment_title"`
	AssignmentType  string     `json:"assignment_type"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	PointsPossible  *float64   `json:"points_possible,omitempty"`
}

// Communication is one row of the merged announcement/conversation feed.
type Communication struct {
	SourceType string     `json:"source_type"`
	ID         int64      `json:"id"`
	Title      *string    `json:"title,omitempty"`
	Content    *string    `json:"content,omitempty"`
	PostedBy   *string    `json:"posted_by,omitempty"`
	PostedAt   *time.Time `json:"posted_at,omitempty"`
	CourseName *string    `json:"course_name,omitempty"`
}
