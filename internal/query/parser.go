// Package query extracts structured course and assignment references from
// free-form question text. The parser is heuristic: every extraction
// carries a confidence score, and a zero-confidence result is the
// not-found signal rather than an error.
package query

import (
	"regexp"
	"strconv"
	"strings"
)

// Result is the parsed shape of an assignment question.
type Result struct {
	CourseCode       string  `json:"course_code,omitempty"`
	AssignmentNumber string  `json:"assignment_number,omitempty"`
	AssignmentName   string  `json:"assignment_name,omitempty"`
	Confidence       float64 `json:"confidence"`
}

// Course-code regex families, tried in order. The first family with a
// match wins; later families never override an earlier hit.
var (
	// Two-letter subject code glued to a three-digit number, e.g. "cs570"
	// or "CS 570".
	subjectCodeRe = regexp.MustCompile(`(?i)\b([a-z]{2})[\s-]?(\d{3})\b`)
	// Longer department token, e.g. "csci570" or "math 225".
	departmentRe = regexp.MustCompile(`(?i)\b([a-z]{3,8})[\s-]?(\d{3})\b`)
	// Bare number pattern, e.g. "570-101".
	bareNumberRe = regexp.MustCompile(`\b(\d{3})[-\s]?(\d{1,3})\b`)
)

// assignmentKeywords in family order; multi-word forms first so they win
// over their single-word prefixes.
var assignmentKeywords = []string{
	"problem set", "pset", "assignment", "homework", "hw",
	"project", "quiz", "exam", "midterm", "final",
}

var ordinals = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

// keyword[#_ -]?number variants, e.g. "hw2", "assignment #3", "quiz_1".
var keywordNumberRe = regexp.MustCompile(
	`(?i)\b(problem set|pset|assignment|homework|hw|project|quiz|exam|midterm)[\s#_-]*(\d{1,3})\b`)

// Filename-style reference, e.g. "CS570_HW2.pdf".
var filenameRe = regexp.MustCompile(
	`(?i)\b[a-z]{2,8}\d{3}[_-](hw|assignment|pset|quiz|exam|project)[\s#_-]*(\d{1,3})`)

// Parse extracts course and assignment references from text. When both are
// found the overall confidence is the arithmetic mean of the two; with one
// it is that one's score; with neither it is zero.
func Parse(text string) Result {
	code, codeConf := extractCourseCode(text)
	number, name, asgConf := extractAssignment(text)

	r := Result{
		CourseCode:       code,
		AssignmentNumber: number,
		AssignmentName:   name,
	}
	switch {
	case codeConf > 0 && asgConf > 0:
		r.Confidence = (codeConf + asgConf) / 2
	case codeConf > 0:
		r.Confidence = codeConf
	case asgConf > 0:
		r.Confidence = asgConf
	}
	return r
}

func extractCourseCode(text string) (string, float64) {
	families := []struct {
		re         *regexp.Regexp
		confidence float64
	}{
		{subjectCodeRe, 0.9},
		{departmentRe, 0.7},
		{bareNumberRe, 0.5},
	}
	for _, fam := range families {
		m := fam.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		code := strings.ToLower(m[1] + m[2])
		code = strings.NewReplacer(" ", "", "-", "").Replace(code)
		return code, fam.confidence
	}
	return "", 0
}

func extractAssignment(text string) (number, name string, confidence float64) {
	lower := strings.ToLower(text)

	keyword := dominantKeyword(lower)

	// Spelled-out ordinal next to a keyword, e.g. "the second homework".
	if keyword != "" {
		for word, n := range ordinals {
			if strings.Contains(lower, word) {
				return strconv.Itoa(n), keyword, 0.8
			}
		}
	}

	if m := keywordNumberRe.FindStringSubmatch(text); m != nil {
		return m[2], strings.ToLower(m[1]), 0.9
	}

	if m := filenameRe.FindStringSubmatch(text); m != nil {
		return m[2], strings.ToLower(m[1]), 0.7
	}

	return "", "", 0
}

// dominantKeyword picks the assignment keyword with the best score:
// occurrence count weighted toward appearing early in the text.
func dominantKeyword(lower string) string {
	best := ""
	bestScore := 0.0
	for _, kw := range assignmentKeywords {
		count := strings.Count(lower, kw)
		if count == 0 {
			continue
		}
		pos := strings.Index(lower, kw)
		score := float64(count) + 1.0/float64(pos+1)
		if score > bestScore {
			best = kw
			bestScore = score
		}
	}
	return best
}
