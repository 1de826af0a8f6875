package content

import (
	"regexp"
	"strings"
)

// Link is one reference extracted from an HTML body.
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text,omitempty"`
}

var (
	anchorRe  = regexp.MustCompile(`(?is)<a\s+[^>]*href=["']([^"']+)["'][^>]*>(.*?)</a>`)
	tagStrip  = regexp.MustCompile(`(?s)<[^>]*>`)
	bareURLRe = regexp.MustCompile(`https?://[^\s"'<>]+`)
)

// ExtractLinks pulls every anchor out of an HTML body, keeping the link
// text with tags stripped. Bare URLs outside anchors are included too.
func ExtractLinks(body string) []Link {
	var links []Link
	seen := make(map[string]bool)

	for _, m := range anchorRe.FindAllStringSubmatch(body, -1) {
		url := strings.TrimSpace(m[1])
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		text := strings.TrimSpace(tagStrip.ReplaceAllString(m[2], ""))
		links = append(links, Link{URL: url, Text: text})
	}

	stripped := anchorRe.ReplaceAllString(body, "")
	for _, url := range bareURLRe.FindAllString(stripped, -1) {
		url = strings.TrimRight(url, ".,;)")
		if seen[url] {
			continue
		}
		seen[url] = true
		links = append(links, Link{URL: url})
	}
	return links
}

// ExtractPDFLinks keeps only the links that point at a PDF.
func ExtractPDFLinks(body string) []Link {
	var pdfs []Link
	for _, l := range ExtractLinks(body) {
		if strings.Contains(strings.ToLower(l.URL), ".pdf") {
			pdfs = append(pdfs, l)
		}
	}
	return pdfs
}
