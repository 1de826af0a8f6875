// Package search is the read side of the mirror: listing, lookups, free
// text search, and natural-language assignment resolution over rows the
// sync engine wrote.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/rs/zerolog"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/content"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/query"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/store"
)

// Service answers read queries against the local store.
type Service struct {
	store *store.Store
	cache *Cache
	dates *when.Parser
	log   zerolog.Logger
}

// NewService builds a search service. cacheSize and cacheTTL size the
// result cache; zero values get sane defaults.
func NewService(st *store.Store, cacheSize int, cacheTTL time.Duration, log zerolog.Logger) *Service {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	dates := when.New(nil)
	dates.Add(en.All...)
	dates.Add(common.All...)
	return &Service{
		store: st,
		cache: NewCache(cacheSize, cacheTTL),
		dates: dates,
		log:   log.With().Str("component", "search").Logger(),
	}
}

// InvalidateCache drops cached results. The sync engine calls this after
// every run.
func (s *Service) InvalidateCache() {
	s.cache.Invalidate()
}

// ListCourses returns all courses, excluding any the user opted out of
// indexing when userID is non-empty.
func (s *Service) ListCourses(ctx context.Context, userID string) ([]store.Course, error) {
	key := "courses:" + userID
	if v, ok := s.cache.Get(key); ok {
		return v.([]store.Course), nil
	}
	courses, err := s.store.ListCourses(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, courses)
	return courses, nil
}

// ListAssignments returns a course's assignments ordered by due date.
func (s *Service) ListAssignments(ctx context.Context, courseID int64) ([]store.Assignment, error) {
	return s.store.ListAssignments(ctx, courseID)
}

// ListModules returns a course's modules, optionally with nested items.
func (s *Service) ListModules(ctx context.Context, courseID int64, includeItems bool) ([]store.Module, error) {
	return s.store.ListModules(ctx, courseID, includeItems)
}

// SyllabusResult is the syllabus body plus course identification.
type SyllabusResult struct {
	CourseCode  string `json:"course_code"`
	CourseName  string `json:"course_name"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
}

// GetSyllabus returns the syllabus for a course. format "parsed" prefers
// the extracted plain text and silently falls back to raw content when no
// parsed version exists. An unknown course id returns store.ErrNotFound.
func (s *Service) GetSyllabus(ctx context.Context, courseID int64, format string) (*SyllabusResult, error) {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	result := &SyllabusResult{
		CourseCode:  course.CourseCode,
		CourseName:  course.CourseName,
		ContentType: content.TypeEmpty,
	}

	syl, err := s.store.GetSyllabus(ctx, courseID)
	if err != nil {
		if err == store.ErrNotFound {
			return result, nil
		}
		return nil, err
	}

	result.ContentType = syl.ContentType
	if format == "parsed" && syl.IsParsed && syl.ParsedContent != nil && *syl.ParsedContent != "" {
		result.Content = *syl.ParsedContent
		return result, nil
	}
	if syl.Content != nil {
		result.Content = *syl.Content
	}
	return result, nil
}

// Search runs case-insensitive substring search across assignments,
// modules, module items, syllabi, and announcements. courseID of 0 means
// all courses; opted-out courses are excluded for the given user.
func (s *Service) Search(ctx context.Context, needle, userID string, courseID int64) ([]store.SearchResult, error) {
	if strings.TrimSpace(needle) == "" {
		return nil, nil
	}
	return s.store.SearchContent(ctx, needle, userID, courseID)
}

// AssignmentDetails is a resolved assignment plus references extracted
// from its description.
type AssignmentDetails struct {
	Parsed     query.Result      `json:"parsed"`
	CourseCode string            `json:"course_code"`
	CourseName string            `json:"course_name"`
	Assignment *store.Assignment `json:"assignment"`
	Links      []content.Link    `json:"links,omitempty"`
	PDFs       []content.Link    `json:"pdfs,omitempty"`
}

// ResolveAssignment parses a natural-language question and locates the
// assignment it refers to by number or keyword. A non-zero courseID scopes
// the lookup to that course; with zero the course comes from a code
// embedded in the question ("cs570 hw2"), matched loosely. Returns
// store.ErrNotFound when either step fails to resolve.
func (s *Service) ResolveAssignment(ctx context.Context, text string, courseID int64) (*AssignmentDetails, error) {
	parsed := query.Parse(text)

	var course *store.Course
	var err error
	if courseID != 0 {
		course, err = s.store.GetCourse(ctx, courseID)
	} else {
		if parsed.CourseCode == "" {
			return nil, store.ErrNotFound
		}
		course, err = s.store.FindCourseByCode(ctx, parsed.CourseCode)
	}
	if err != nil {
		return nil, err
	}

	needle := parsed.AssignmentNumber
	if parsed.AssignmentName != "" && parsed.AssignmentNumber != "" {
		needle = parsed.AssignmentName + " " + parsed.AssignmentNumber
	} else if parsed.AssignmentName != "" {
		needle = parsed.AssignmentName
	}
	if needle == "" {
		return nil, store.ErrNotFound
	}

	assignment, err := s.store.FindAssignment(ctx, course.ID, needle)
	if err == store.ErrNotFound && parsed.AssignmentNumber != "" {
		// Retry on the bare number; titles like "Homework #2" won't match
		// "hw 2" but will match "2".
		assignment, err = s.store.FindAssignment(ctx, course.ID, parsed.AssignmentNumber)
	}
	if err != nil {
		return nil, err
	}

	details := &AssignmentDetails{
		Parsed:     parsed,
		CourseCode: course.CourseCode,
		CourseName: course.CourseName,
		Assignment: assignment,
	}
	if assignment.Description != nil {
		details.Links = content.ExtractLinks(*assignment.Description)
		details.PDFs = content.ExtractPDFLinks(*assignment.Description)
	}
	return details, nil
}

// UpcomingDeadlines returns assignments due in the next `days` days. A
// non-empty natural-language range ("until next friday") overrides days.
func (s *Service) UpcomingDeadlines(ctx context.Context, days int, naturalRange string, courseID int64, limit int) ([]store.Deadline, error) {
	if naturalRange != "" {
		if d, ok := s.parseRange(naturalRange); ok {
			days = d
		} else {
			s.log.Debug().Str("range", naturalRange).Msg("could not parse date range, using default window")
		}
	}
	if days <= 0 {
		days = 7
	}

	key := fmt.Sprintf("deadlines:%d:%d:%d", days, courseID, limit)
	if v, ok := s.cache.Get(key); ok {
		return v.([]store.Deadline), nil
	}
	deadlines, err := s.store.UpcomingDeadlines(ctx, days, courseID, limit)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, deadlines)
	return deadlines, nil
}

// parseRange turns a natural-language phrase into a day count from now.
func (s *Service) parseRange(text string) (int, bool) {
	now := time.Now()
	r, err := s.dates.Parse(text, now)
	if err != nil || r == nil {
		return 0, false
	}
	days := int(r.Time.Sub(now).Hours()/24) + 1
	if days < 1 {
		return 0, false
	}
	return days, true
}

// Communications returns the merged announcement and conversation feed.
func (s *Service) Communications(ctx context.Context, numWeeks, limit int) ([]store.Communication, error) {
	return s.store.Communications(ctx, numWeeks, limit)
}
