package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/canvas"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/extract"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/search"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/store"
	syncsvc "github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/sync"
)

// Deps carries everything the tool handlers need.
type Deps struct {
	Store     *store.Store
	Sync      *syncsvc.Service
	Search    *search.Service
	Adapter   *canvas.Adapter
	Extractor *extract.Extractor
	UserID    string
}

// RegisterAll wires every tool into the registry.
func RegisterAll(r *Registry, d Deps) {
	r.Register("sync_canvas_data", d.syncCanvasData)
	r.Register("get_course_list", d.getCourseList)
	r.Register("get_course_assignments", d.getCourseAssignments)
	r.Register("get_course_modules", d.getCourseModules)
	r.Register("get_syllabus", d.getSyllabus)
	r.Register("get_course_announcements", d.getCourseAnnouncements)
	r.Register("get_course_calendar_events", d.getCourseCalendarEvents)
	r.Register("search_course_content", d.searchCourseContent)
	r.Register("get_assignment_details", d.getAssignmentDetails)
	r.Register("opt_out_course", d.optOutCourse)
	r.Register("extract_text_from_course_file", d.extractTextFromCourseFile)
	r.Register("get_course_grade", d.getCourseGrade)
	r.Register("get_upcoming_deadlines", d.getUpcomingDeadlines)
	r.Register("get_communications", d.getCommunications)
}

func decode(args json.RawMessage, into any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, into); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (d Deps) syncCanvasData(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		TermID *int64 `json:"term_id"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if in.TermID == nil {
		recent := syncsvc.TermMostRecent
		in.TermID = &recent
	}
	summary := d.Sync.SyncAll(ctx, in.TermID)
	d.Search.InvalidateCache()
	return summary, nil
}

func (d Deps) getCourseList(ctx context.Context, args json.RawMessage) (any, error) {
	courses, err := d.Search.ListCourses(ctx, d.UserID)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []store.Course{}
	}
	return courses, nil
}

type courseArgs struct {
	CourseID int64 `json:"course_id"`
}

func (a courseArgs) validate() error {
	if a.CourseID == 0 {
		return errors.New("course_id is required")
	}
	return nil
}

func (d Deps) getCourseAssignments(ctx context.Context, args json.RawMessage) (any, error) {
	var in courseArgs
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	assignments, err := d.Search.ListAssignments(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}
	if assignments == nil {
		assignments = []store.Assignment{}
	}
	return assignments, nil
}

func (d Deps) getCourseModules(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		courseArgs
		IncludeItems bool `json:"include_items"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	modules, err := d.Search.ListModules(ctx, in.CourseID, in.IncludeItems)
	if err != nil {
		return nil, err
	}
	if modules == nil {
		modules = []store.Module{}
	}
	return modules, nil
}

func (d Deps) getSyllabus(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		courseArgs
		Format string `json:"format"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	syl, err := d.Search.GetSyllabus(ctx, in.CourseID, in.Format)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("course %d not found", in.CourseID)
		}
		return nil, err
	}
	return syl, nil
}

func (d Deps) getCourseAnnouncements(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		courseArgs
		Limit    int `json:"limit"`
		NumWeeks int `json:"num_weeks"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Limit == 0 {
		in.Limit = 10
	}
	announcements, err := d.Store.ListAnnouncements(ctx, in.CourseID, in.Limit, in.NumWeeks)
	if err != nil {
		return nil, err
	}
	if announcements == nil {
		announcements = []store.Announcement{}
	}
	return announcements, nil
}

func (d Deps) getCourseCalendarEvents(ctx context.Context, args json.RawMessage) (any, error) {
	var in courseArgs
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	events, err := d.Store.ListCalendarEvents(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []store.CalendarEvent{}
	}
	return events, nil
}

func (d Deps) searchCourseContent(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Query    string `json:"query"`
		CourseID int64  `json:"course_id"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if in.Query == "" {
		return nil, errors.New("query is required")
	}
	results, err := d.Search.Search(ctx, in.Query, d.UserID, in.CourseID)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []store.SearchResult{}
	}
	return results, nil
}

func (d Deps) getAssignmentDetails(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		CourseID int64  `json:"course_id"`
		Query    string `json:"query"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if in.Query == "" {
		return nil, errors.New("query is required")
	}
	details, err := d.Search.ResolveAssignment(ctx, in.Query, in.CourseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("could not resolve an assignment from %q", in.Query)
		}
		return nil, err
	}
	return details, nil
}

func (d Deps) optOutCourse(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		courseArgs
		UserID string `json:"user_id"`
		OptOut bool   `json:"opt_out"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	userID := in.UserID
	if userID == "" {
		userID = d.UserID
	}
	if userID == "" {
		return nil, errors.New("user_id is required")
	}
	if err := d.Store.SetIndexingOptOut(ctx, userID, in.CourseID, in.OptOut); err != nil {
		return nil, err
	}
	d.Search.InvalidateCache()
	return map[string]any{
		"success":   true,
		"course_id": in.CourseID,
		"user_id":   userID,
		"opted_out": in.OptOut,
	}, nil
}

func (d Deps) extractTextFromCourseFile(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		FileURL string `json:"file_url"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if in.FileURL == "" {
		return nil, errors.New("file_url is required")
	}
	return d.Extractor.ExtractText(ctx, in.FileURL), nil
}

func (d Deps) getCourseGrade(ctx context.Context, args json.RawMessage) (any, error) {
	var in courseArgs
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	course, err := d.Store.GetCourse(ctx, in.CourseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("course %d not found", in.CourseID)
		}
		return nil, err
	}

	enrollment := d.Adapter.FetchEnrollment(ctx, course.CanvasCourseID)
	if enrollment == nil {
		return nil, fmt.Errorf("no grade available for course %d", in.CourseID)
	}
	return map[string]any{
		"course_code": course.CourseCode,
		"course_name": course.CourseName,
		"score":       enrollment.ComputedCurrentScore,
		"grade":       enrollment.ComputedCurrentGrade,
	}, nil
}

func (d Deps) getUpcomingDeadlines(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Days      int    `json:"days"`
		DateRange string `json:"date_range"`
		CourseID  int64  `json:"course_id"`
		Limit     int    `json:"limit"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if in.Days == 0 {
		in.Days = 7
	}
	deadlines, err := d.Search.UpcomingDeadlines(ctx, in.Days, in.DateRange, in.CourseID, in.Limit)
	if err != nil {
		return nil, err
	}
	if deadlines == nil {
		deadlines = []store.Deadline{}
	}
	return deadlines, nil
}

func (d Deps) getCommunications(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Limit    int `json:"limit"`
		NumWeeks int `json:"num_weeks"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if in.Limit == 0 {
		in.Limit = 50
	}
	if in.NumWeeks == 0 {
		in.NumWeeks = 3
	}
	comms, err := d.Search.Communications(ctx, in.NumWeeks, in.Limit)
	if err != nil {
		return nil, err
	}
	if comms == nil {
		comms = []store.Communication{}
	}
	return comms, nil
}
