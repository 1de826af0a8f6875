package canvas

import (
	"context"

	"github.com/rs/zerolog"
)

// Adapter wraps a Client with fetch-level fault isolation: any transport or
// API failure is logged with its entity type and course id, and an empty
// result is returned instead of an error. A single failing course therefore
// never aborts a batch sync across many courses.
type Adapter struct {
	client Client
	log    zerolog.Logger
}

// NewAdapter creates an adapter around the given client. A nil client yields
// an adapter whose IsAvailable reports false.
func NewAdapter(client Client, log zerolog.Logger) *Adapter {
	return &Adapter{
		client: client,
		log:    log.With().Str("component", "canvas").Logger(),
	}
}

// IsAvailable reports whether the adapter has a usable client.
func (a *Adapter) IsAvailable() bool {
	return a != nil && a.client != nil
}

// FetchCurrentUserID returns the current user's Canvas id, or 0 on failure.
func (a *Adapter) FetchCurrentUserID(ctx context.Context) int64 {
	if !a.IsAvailable() {
		return 0
	}
	id, err := a.client.CurrentUserID(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to fetch current user")
		return 0
	}
	return id
}

// FetchCourses returns the current user's courses in the given enrollment
// state, or an empty slice on failure.
func (a *Adapter) FetchCourses(ctx context.Context, enrollmentState string) []RemoteCourse {
	if !a.IsAvailable() {
		return nil
	}
	if enrollmentState == "" {
		enrollmentState = "active"
	}
	courses, err := a.client.Courses(ctx, enrollmentState)
	if err != nil {
		a.log.Error().Err(err).Str("entity", "courses").Msg("fetch failed")
		return nil
	}
	return courses
}

// FetchCourseDetail returns the detailed course (syllabus body, instructor),
// or nil on failure.
func (a *Adapter) FetchCourseDetail(ctx context.Context, courseID int64) *RemoteCourse {
	if !a.IsAvailable() {
		return nil
	}
	course, err := a.client.CourseDetail(ctx, courseID)
	if err != nil {
		a.log.Error().Err(err).Str("entity", "course").Int64("course_id", courseID).Msg("fetch failed")
		return nil
	}
	return course
}

// FetchAssignments returns a course's assignments, or an empty slice on failure.
func (a *Adapter) FetchAssignments(ctx context.Context, courseID int64) []RemoteAssignment {
	if !a.IsAvailable() {
		return nil
	}
	assignments, err := a.client.Assignments(ctx, courseID)
	if err != nil {
		a.log.Error().Err(err).Str("entity", "assignments").Int64("course_id", courseID).Msg("fetch failed")
		return nil
	}
	return assignments
}

// FetchModules returns a course's modules, or an empty slice on failure.
func (a *Adapter) FetchModules(ctx context.Context, courseID int64) []RemoteModule {
	if !a.IsAvailable() {
		return nil
	}
	modules, err := a.client.Modules(ctx, courseID)
	if err != nil {
		a.log.Error().Err(err).Str("entity", "modules").Int64("course_id", courseID).Msg("fetch failed")
		return nil
	}
	return modules
}

// FetchModuleItems returns a module's items, or an empty slice on failure.
func (a *Adapter) FetchModuleItems(ctx context.Context, courseID, moduleID int64) []RemoteModuleItem {
	if !a.IsAvailable() {
		return nil
	}
	items, err := a.client.ModuleItems(ctx, courseID, moduleID)
	if err != nil {
		a.log.Error().Err(err).Str("entity", "module_items").
			Int64("course_id", courseID).Int64("module_id", moduleID).Msg("fetch failed")
		return nil
	}
	return items
}

// FetchAnnouncements returns a course's announcements, or an empty slice on failure.
func (a *Adapter) FetchAnnouncements(ctx context.Context, courseID int64) []RemoteAnnouncement {
	if !a.IsAvailable() {
		return nil
	}
	announcements, err := a.client.Announcements(ctx, courseID)
	if err != nil {
		a.log.Error().Err(err).Str("entity", "announcements").Int64("course_id", courseID).Msg("fetch failed")
		return nil
	}
	return announcements
}

// FetchConversations returns the user's conversation summaries, or an empty
// slice on failure.
func (a *Adapter) FetchConversations(ctx context.Context) []RemoteConversation {
	if !a.IsAvailable() {
		return nil
	}
	conversations, err := a.client.Conversations(ctx)
	if err != nil {
		a.log.Error().Err(err).Str("entity", "conversations").Msg("fetch failed")
		return nil
	}
	return conversations
}

// FetchConversationDetail returns one conversation with messages, or nil on failure.
func (a *Adapter) FetchConversationDetail(ctx context.Context, conversationID int64) *RemoteConversation {
	if !a.IsAvailable() {
		return nil
	}
	conversation, err := a.client.ConversationDetail(ctx, conversationID)
	if err != nil {
		a.log.Error().Err(err).Str("entity", "conversation").
			Int64("conversation_id", conversationID).Msg("fetch failed")
		return nil
	}
	return conversation
}

// FetchFiles returns a course's files, or an empty slice on failure.
func (a *Adapter) FetchFiles(ctx context.Context, courseID int64) []RemoteFile {
	if !a.IsAvailable() {
		return nil
	}
	files, err := a.client.Files(ctx, courseID)
	if err != nil {
		a.log.Error().Err(err).Str("entity", "files").Int64("course_id", courseID).Msg("fetch failed")
		return nil
	}
	return files
}

// FetchEnrollment returns the caller's enrollment grades for a course, or
// nil on failure or when no enrollment exists.
func (a *Adapter) FetchEnrollment(ctx context.Context, courseID int64) *RemoteEnrollment {
	if !a.IsAvailable() {
		return nil
	}
	enrollment, err := a.client.Enrollment(ctx, courseID)
	if err != nil {
		a.log.Error().Err(err).Str("entity", "enrollment").Int64("course_id", courseID).Msg("fetch failed")
		return nil
	}
	return enrollment
}
