package content

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

var converter = md.NewConverter("", true, nil)

// ToMarkdown converts an HTML fragment to Markdown. On conversion failure
// the original input comes back unchanged, so callers always get something
// displayable.
func ToMarkdown(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	out, err := converter.ConvertString(html)
	if err != nil {
		return html
	}
	return strings.TrimSpace(out)
}
