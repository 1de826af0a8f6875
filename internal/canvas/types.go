// Package canvas provides the remote-fetch layer for the Canvas LMS API.
//
// Remote objects are decoded into explicit typed structs with optional
// fields as pointers, and validated once at the fetch boundary. Consumers
// never poke at loosely-typed maps.
package canvas

import (
	"fmt"
	"time"
)

// RemoteCourse is a course as returned by the Canvas courses endpoint.
type RemoteCourse struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	CourseCode       string     `json:"course_code"`
	EnrollmentTermID *int64     `json:"enrollment_term_id,omitempty"`
	StartAt          *time.Time `json:"start_at,omitempty"`
	EndAt            *time.Time `json:"end_at,omitempty"`
	TeacherName      *string    `json:"teacher_name,omitempty"`
	Description      *string    `json:"public_description,omitempty"`
	SyllabusBody     *string    `json:"syllabus_body,omitempty"`
}

// Validate checks that the course carries the fields the sync engine needs.
func (c *RemoteCourse) Validate() error {
	if c.ID == 0 {
		return fmt.Errorf("course id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("course name is required")
	}
	return nil
}

// RemoteAssignment is an assignment as returned by the assignments endpoint.
type RemoteAssignment struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Description     *string    `json:"description,omitempty"`
	DueAt           *time.Time `json:"due_at,omitempty"`
	UnlockAt        *time.Time `json:"unlock_at,omitempty"`
	LockAt          *time.Time `json:"lock_at,omitempty"`
	PointsPossible  *float64   `json:"points_possible,omitempty"`
	SubmissionTypes []string   `json:"submission_types,omitempty"`
}

func (a *RemoteAssignment) Validate() error {
	if a.ID == 0 {
		return fmt.Errorf("assignment id is required")
	}
	if a.Name == "" {
		return fmt.Errorf("assignment name is required")
	}
	return nil
}

// RemoteModule is a course module with its ordering position.
type RemoteModule struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	UnlockAt *time.Time `json:"unlock_at,omitempty"`
}

func (m *RemoteModule) Validate() error {
	if m.ID == 0 {
		return fmt.Errorf("module id is required")
	}
	if m.Name == "" {
		return fmt.Errorf("module name is required")
	}
	return nil
}

// RemoteModuleItem is a single item inside a module.
type RemoteModuleItem struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Type     string  `json:"type"`
	Position int     `json:"position"`
	URL      *string `json:"url,omitempty"`
	PageURL  *string `json:"page_url,omitempty"`
	Content  *string `json:"content,omitempty"`
}

func (i *RemoteModuleItem) Validate() error {
	if i.ID == 0 {
		return fmt.Errorf("module item id is required")
	}
	if i.Title == "" {
		return fmt.Errorf("module item title is required")
	}
	return nil
}

// RemoteAnnouncement is a course announcement.
type RemoteAnnouncement struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Message    *string    `json:"message,omitempty"`
	AuthorName *string    `json:"author_name,omitempty"`
	PostedAt   *time.Time `json:"posted_at,omitempty"`
}

func (a *RemoteAnnouncement) Validate() error {
	if a.ID == 0 {
		return fmt.Errorf("announcement id is required")
	}
	if a.Title == "" {
		return fmt.Errorf("announcement title is required")
	}
	return nil
}

// RemoteMessage is one message inside a conversation, most recent first.
type RemoteMessage struct {
	Body       string     `json:"body"`
	AuthorName *string    `json:"author_name,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// RemoteConversation is an inbox conversation summary plus its messages.
type RemoteConversation struct {
	ID            int64           `json:"id"`
	Subject       string          `json:"subject"`
	ContextName   *string         `json:"context_name,omitempty"`
	LastMessageAt *time.Time      `json:"last_message_at,omitempty"`
	CreatedAt     *time.Time      `json:"created_at,omitempty"`
	Messages      []RemoteMessage `json:"messages,omitempty"`
}

func (c *RemoteConversation) Validate() error {
	if c.ID == 0 {
		return fmt.Errorf("conversation id is required")
	}
	return nil
}

// Timestamp returns the best-known time for the conversation.
// Priority: last_message_at, then created_at, then the first message's
// created_at. Nil when nothing is known.
func (c *RemoteConversation) Timestamp() *time.Time {
	if c.LastMessageAt != nil {
		return c.LastMessageAt
	}
	if c.CreatedAt != nil {
		return c.CreatedAt
	}
	if len(c.Messages) > 0 && c.Messages[0].CreatedAt != nil {
		return c.Messages[0].CreatedAt
	}
	return nil
}

// RemoteFile is a file attachment in a course.
type RemoteFile struct {
	ID          int64   `json:"id"`
	Filename    string  `json:"filename"`
	DisplayName *string `json:"display_name,omitempty"`
	ContentType *string `json:"content-type,omitempty"`
	Size        *int64  `json:"size,omitempty"`
	URL         *string `json:"url,omitempty"`
}

func (f *RemoteFile) Validate() error {
	if f.ID == 0 {
		return fmt.Errorf("file id is required")
	}
	if f.Filename == "" {
		return fmt.Errorf("file name is required")
	}
	return nil
}

// Name returns the display name, falling back to the raw filename.
func (f *RemoteFile) Name() string {
	if f.DisplayName != nil && *f.DisplayName != "" {
		return *f.DisplayName
	}
	return f.Filename
}

// RemoteEnrollment carries the caller's computed grade for one course.
type RemoteEnrollment struct {
	ComputedCurrentScore *float64 `json:"computed_current_score,omitempty"`
	ComputedCurrentGrade *string  `json:"computed_current_grade,omitempty"`
}
