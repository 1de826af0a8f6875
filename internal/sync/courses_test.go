package sync

import (
	"testing"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/canvas"
)

func termCourses(terms ...*int64) []canvas.RemoteCourse {
	courses := make([]canvas.RemoteCourse, len(terms))
	for i, term := range terms {
		courses[i] = canvas.RemoteCourse{ID: int64(i + 1), Name: "c", EnrollmentTermID: term}
	}
	return courses
}

func TestFilterByTerm_NilKeepsAll(t *testing.T) {
	courses := termCourses(int64Ptr(5), int64Ptr(7), nil)
	if got := filterByTerm(courses, nil); len(got) != 3 {
		t.Errorf("got %d courses, want 3", len(got))
	}
}

func TestFilterByTerm_MostRecent(t *testing.T) {
	courses := termCourses(int64Ptr(5), int64Ptr(7), int64Ptr(7), nil)
	got := filterByTerm(courses, int64Ptr(TermMostRecent))
	if len(got) != 2 {
		t.Fatalf("got %d courses, want 2", len(got))
	}
	for _, c := range got {
		if c.EnrollmentTermID == nil || *c.EnrollmentTermID != 7 {
			t.Errorf("kept course with term %v, want 7", c.EnrollmentTermID)
		}
	}
}

func TestFilterByTerm_MostRecentFailsOpen(t *testing.T) {
	// No course carries a term id: filtering is skipped, not emptied.
	courses := termCourses(nil, nil)
	if got := filterByTerm(courses, int64Ptr(TermMostRecent)); len(got) != 2 {
		t.Errorf("got %d courses, want 2 (fail-open)", len(got))
	}
}

func TestFilterByTerm_SpecificTerm(t *testing.T) {
	courses := termCourses(int64Ptr(5), int64Ptr(7), nil)
	got := filterByTerm(courses, int64Ptr(5))
	if len(got) != 1 || *got[0].EnrollmentTermID != 5 {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestFilterByTerm_SpecificTermNoMatch(t *testing.T) {
	courses := termCourses(int64Ptr(5))
	if got := filterByTerm(courses, int64Ptr(99)); len(got) != 0 {
		t.Errorf("got %d courses, want 0", len(got))
	}
}
