// Package content classifies and transforms course content strings. The
// detector decides how a stored body should be interpreted downstream
// (render, follow as link, fetch as pdf) without ever touching the network.
package content

import (
	"encoding/json"
	"strings"
)

// Content types produced by Detect.
const (
	TypeEmpty        = "empty"
	TypePDFLink      = "pdf_link"
	TypeExternalLink = "external_link"
	TypeJSON         = "json"
	TypeHTML         = "html"
)

// emptyShells are trivial markup bodies that carry no content.
var emptyShells = map[string]bool{
	"":              true,
	"<p></p>":       true,
	"<div></div>":   true,
	"<p>&nbsp;</p>": true,
	"<br>":          true,
	"<br/>":         true,
}

// Detect classifies a content body. The rules run in a fixed order and the
// first match wins; anything unclassifiable falls back to html.
func Detect(body *string) string {
	if body == nil {
		return TypeHTML
	}
	s := *body
	trimmed := strings.TrimSpace(s)

	if emptyShells[trimmed] {
		return TypeEmpty
	}

	lower := strings.ToLower(s)
	if strings.Contains(lower, ".pdf") &&
		(strings.Contains(lower, "href=") || strings.Contains(lower, "src=")) {
		return TypePDFLink
	}

	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return TypeExternalLink
	}
	if (strings.Contains(s, "http://") || strings.Contains(s, "https://")) &&
		len(s) < 1000 && strings.Count(s, " ") < 10 {
		return TypeExternalLink
	}

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		if json.Valid([]byte(trimmed)) {
			return TypeJSON
		}
	}

	if (strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">")) ||
		strings.Contains(lower, "<html") ||
		strings.Contains(lower, "<body") ||
		strings.Contains(lower, "<div") {
		return TypeHTML
	}

	return TypeHTML
}
