package query

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParse_SubjectCodeAndNumberedKeyword(t *testing.T) {
	r := Parse("cs570 hw2")
	if r.CourseCode != "cs570" {
		t.Errorf("CourseCode = %q, want cs570", r.CourseCode)
	}
	if r.AssignmentNumber != "2" {
		t.Errorf("AssignmentNumber = %q, want 2", r.AssignmentNumber)
	}
	if !almostEqual(r.Confidence, 0.9) {
		t.Errorf("Confidence = %v, want 0.9 (mean of 0.9 and 0.9)", r.Confidence)
	}
}

func TestParse_DepartmentName(t *testing.T) {
	r := Parse("what is due in math 225")
	if r.CourseCode != "math225" {
		t.Errorf("CourseCode = %q, want math225", r.CourseCode)
	}
	if !almostEqual(r.Confidence, 0.7) {
		t.Errorf("Confidence = %v, want 0.7", r.Confidence)
	}
}

func TestParse_BareNumberPattern(t *testing.T) {
	r := Parse("570-101")
	if r.CourseCode != "570101" {
		t.Errorf("CourseCode = %q, want 570101", r.CourseCode)
	}
	if !almostEqual(r.Confidence, 0.5) {
		t.Errorf("Confidence = %v, want 0.5", r.Confidence)
	}
}

func TestParse_OrdinalWithKeyword(t *testing.T) {
	r := Parse("when is the second homework due for cs570")
	if r.AssignmentNumber != "2" {
		t.Errorf("AssignmentNumber = %q, want 2", r.AssignmentNumber)
	}
	if r.AssignmentName != "homework" {
		t.Errorf("AssignmentName = %q, want homework", r.AssignmentName)
	}
	// mean of course 0.9 and ordinal 0.8
	if !almostEqual(r.Confidence, 0.85) {
		t.Errorf("Confidence = %v, want 0.85", r.Confidence)
	}
}

func TestParse_KeywordHashNumber(t *testing.T) {
	r := Parse("details for assignment #3 please")
	if r.AssignmentNumber != "3" {
		t.Errorf("AssignmentNumber = %q, want 3", r.AssignmentNumber)
	}
	if !almostEqual(r.Confidence, 0.9) {
		t.Errorf("Confidence = %v, want 0.9", r.Confidence)
	}
}

func TestParse_FilenameStyle(t *testing.T) {
	r := Parse("CS570_HW2.pdf")
	if r.AssignmentNumber != "2" {
		t.Errorf("AssignmentNumber = %q, want 2", r.AssignmentNumber)
	}
	if r.AssignmentName != "hw" {
		t.Errorf("AssignmentName = %q, want hw", r.AssignmentName)
	}
	if !almostEqual(r.Confidence, 0.7) {
		t.Errorf("Confidence = %v, want 0.7", r.Confidence)
	}
}

func TestParse_NoMatch(t *testing.T) {
	r := Parse("hello there, how are you")
	if r.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", r.Confidence)
	}
	if r.CourseCode != "" || r.AssignmentNumber != "" {
		t.Errorf("expected empty result, got %+v", r)
	}
}

func TestParse_CourseOnly(t *testing.T) {
	r := Parse("tell me about cs570")
	if r.CourseCode != "cs570" {
		t.Errorf("CourseCode = %q, want cs570", r.CourseCode)
	}
	if !almostEqual(r.Confidence, 0.9) {
		t.Errorf("Confidence = %v, want 0.9", r.Confidence)
	}
	if r.AssignmentNumber != "" {
		t.Errorf("AssignmentNumber = %q, want empty", r.AssignmentNumber)
	}
}
