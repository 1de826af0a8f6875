package sync

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/canvas"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/store"
)

// fakeClient is an in-memory Client serving canned data, with per-course
// failure injection.
type fakeClient struct {
	courses       []canvas.RemoteCourse
	details       map[int64]*canvas.RemoteCourse
	assignments   map[int64][]canvas.RemoteAssignment
	modules       map[int64][]canvas.RemoteModule
	moduleItems   map[int64][]canvas.RemoteModuleItem
	announcements map[int64][]canvas.RemoteAnnouncement
	conversations []canvas.RemoteConversation
	files         map[int64][]canvas.RemoteFile

	// failAssignments makes Assignments error for the given course ids.
	failAssignments map[int64]bool
}

func (f *fakeClient) CurrentUserID(ctx context.Context) (int64, error) { return 42, nil }

func (f *fakeClient) Courses(ctx context.Context, state string) ([]canvas.RemoteCourse, error) {
	return f.courses, nil
}

func (f *fakeClient) CourseDetail(ctx context.Context, id int64) (*canvas.RemoteCourse, error) {
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return nil, errors.New("no detail")
}

func (f *fakeClient) Assignments(ctx context.Context, courseID int64) ([]canvas.RemoteAssignment, error) {
	if f.failAssignments[courseID] {
		return nil, errors.New("boom")
	}
	return f.assignments[courseID], nil
}

func (f *fakeClient) Modules(ctx context.Context, courseID int64) ([]canvas.RemoteModule, error) {
	return f.modules[courseID], nil
}

func (f *fakeClient) ModuleItems(ctx context.Context, courseID, moduleID int64) ([]canvas.RemoteModuleItem, error) {
	return f.moduleItems[moduleID], nil
}

func (f *fakeClient) Announcements(ctx context.Context, courseID int64) ([]canvas.RemoteAnnouncement, error) {
	return f.announcements[courseID], nil
}

func (f *fakeClient) Conversations(ctx context.Context) ([]canvas.RemoteConversation, error) {
	return f.conversations, nil
}

func (f *fakeClient) ConversationDetail(ctx context.Context, id int64) (*canvas.RemoteConversation, error) {
	for i := range f.conversations {
		if f.conversations[i].ID == id {
			return &f.conversations[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeClient) Files(ctx context.Context, courseID int64) ([]canvas.RemoteFile, error) {
	return f.files[courseID], nil
}

func (f *fakeClient) Enrollment(ctx context.Context, courseID int64) (*canvas.RemoteEnrollment, error) {
	return nil, errors.New("not enrolled")
}

func int64Ptr(v int64) *int64       { return &v }
func strPtr(s string) *string       { return &s }
func timePtr(t time.Time) *time.Time { return &t }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.InitSchema(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return st
}

func newTestService(t *testing.T, client canvas.Client) (*Service, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	adapter := canvas.NewAdapter(client, zerolog.Nop())
	return NewService(st, adapter, zerolog.Nop()), st
}

func twoCoursesClient() *fakeClient {
	due := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	return &fakeClient{
		courses: []canvas.RemoteCourse{
			{ID: 101, Name: "Analysis of Algorithms", CourseCode: "CS570", EnrollmentTermID: int64Ptr(7)},
			{ID: 102, Name: "Linear Algebra", CourseCode: "MATH225", EnrollmentTermID: int64Ptr(7)},
		},
		details: map[int64]*canvas.RemoteCourse{
			101: {ID: 101, Name: "Analysis of Algorithms", CourseCode: "CS570",
				SyllabusBody: strPtr("<p>Welcome to CS570</p>"), TeacherName: strPtr("Prof. Rivers")},
		},
		assignments: map[int64][]canvas.RemoteAssignment{
			101: {
				{ID: 1001, Name: "Homework 1", DueAt: timePtr(due)},
				{ID: 1002, Name: "Final Exam", SubmissionTypes: []string{"online_quiz"}},
			},
			102: {
				{ID: 2001, Name: "Problem Set 1"},
			},
		},
		modules: map[int64][]canvas.RemoteModule{
			101: {{ID: 11, Name: "Week 1", Position: 1}},
		},
		moduleItems: map[int64][]canvas.RemoteModuleItem{
			11: {{ID: 111, Title: "Intro slides", Type: "Page", Position: 1,
				Content: strPtr("<h1>Intro</h1>")}},
		},
		announcements: map[int64][]canvas.RemoteAnnouncement{
			102: {{ID: 21, Title: "Midterm moved", Message: strPtr("Now on Friday")}},
		},
		conversations: []canvas.RemoteConversation{
			{ID: 31, Subject: "Office hours", ContextName: strPtr("Linear Algebra - Fall"),
				LastMessageAt: timePtr(time.Now().Add(-24 * time.Hour)),
				Messages: []canvas.RemoteMessage{{Body: "Moved to 4pm", AuthorName: strPtr("Prof. Chen")}}},
		},
		files: map[int64][]canvas.RemoteFile{
			101: {{ID: 41, Filename: "syllabus.pdf"}},
		},
		failAssignments: map[int64]bool{},
	}
}

func TestSyncAll_TwoCourses(t *testing.T) {
	svc, st := newTestService(t, twoCoursesClient())
	ctx := context.Background()

	summary := svc.SyncAll(ctx, nil)
	if summary.Status != "complete" {
		t.Fatalf("status = %q, errors = %v", summary.Status, summary.Errors)
	}
	if summary.Courses != 2 {
		t.Errorf("courses = %d, want 2", summary.Courses)
	}
	if summary.Assignments != 3 {
		t.Errorf("assignments = %d, want 3", summary.Assignments)
	}
	if summary.Modules != 1 {
		t.Errorf("modules = %d, want 1", summary.Modules)
	}
	if summary.Announcements != 1 {
		t.Errorf("announcements = %d, want 1", summary.Announcements)
	}
	if summary.Conversations != 1 {
		t.Errorf("conversations = %d, want 1", summary.Conversations)
	}
	if summary.Files != 1 {
		t.Errorf("files = %d, want 1", summary.Files)
	}

	// Detail-fetch enrichment landed.
	course, err := st.FindCourseByCode(ctx, "cs570")
	if err != nil {
		t.Fatalf("find course: %v", err)
	}
	if course.Instructor == nil || *course.Instructor != "Prof. Rivers" {
		t.Errorf("instructor = %v, want Prof. Rivers", course.Instructor)
	}
	syl, err := st.GetSyllabus(ctx, course.ID)
	if err != nil {
		t.Fatalf("get syllabus: %v", err)
	}
	if syl.ContentType != "html" {
		t.Errorf("syllabus content_type = %q, want html", syl.ContentType)
	}

	// Conversation matched its course by context name.
	convs, err := st.ListConversations(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list conversations: %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("got %d conversations, want 1", len(convs))
	}
	if convs[0].CourseID == nil {
		t.Error("conversation not linked to a course")
	}

	// Assignment due dates became calendar events.
	events, err := st.ListCalendarEvents(ctx, course.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d calendar events, want 1", len(events))
	}
}

func TestSyncAll_Idempotent(t *testing.T) {
	svc, st := newTestService(t, twoCoursesClient())
	ctx := context.Background()

	first := svc.SyncAll(ctx, nil)
	second := svc.SyncAll(ctx, nil)

	if second.Courses != first.Courses || second.Assignments != first.Assignments {
		t.Errorf("second run counts differ: %+v vs %+v", second, first)
	}

	var rows int
	err := st.RawDB().QueryRow("SELECT COUNT(*) FROM assignments").Scan(&rows)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 3 {
		t.Errorf("assignment rows = %d after two runs, want 3", rows)
	}
}

func TestSyncAssignments_FaultIsolation(t *testing.T) {
	client := twoCoursesClient()
	client.failAssignments[101] = true
	svc, st := newTestService(t, client)
	ctx := context.Background()

	courseIDs, err := svc.SyncCourses(ctx, nil)
	if err != nil {
		t.Fatalf("sync courses: %v", err)
	}
	count, err := svc.SyncAssignments(ctx, courseIDs)
	if err != nil {
		t.Fatalf("sync assignments: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (only the healthy course)", count)
	}

	course, err := st.FindCourseByCode(ctx, "math225")
	if err != nil {
		t.Fatalf("find course: %v", err)
	}
	assignments, err := st.ListAssignments(ctx, course.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(assignments) != 1 {
		t.Errorf("healthy course has %d assignments, want 1", len(assignments))
	}
}

func TestSyncCourses_MalformedCourseDropped(t *testing.T) {
	client := twoCoursesClient()
	client.courses = append(client.courses, canvas.RemoteCourse{ID: 103}) // no name
	svc, _ := newTestService(t, client)

	courseIDs, err := svc.SyncCourses(context.Background(), nil)
	if err != nil {
		t.Fatalf("sync courses: %v", err)
	}
	if len(courseIDs) != 2 {
		t.Errorf("got %d courses, want 2 (malformed dropped)", len(courseIDs))
	}
}

func TestSyncAll_AdapterUnavailable(t *testing.T) {
	st := newTestStore(t)
	adapter := canvas.NewAdapter(nil, zerolog.Nop())
	svc := NewService(st, adapter, zerolog.Nop())

	summary := svc.SyncAll(context.Background(), nil)
	if summary.Status != "error" {
		t.Errorf("status = %q, want error", summary.Status)
	}
	if len(summary.Errors) == 0 {
		t.Error("expected recorded error")
	}
}
