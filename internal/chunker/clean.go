package chunker

import (
	"regexp"
	"strings"
)

var (
	pageMarkerRe   = regexp.MustCompile(`Page \d+`)
	footerDigitsRe = regexp.MustCompile(`(?m)\d+[ \t]*$`)
	horizontalRe   = regexp.MustCompile(`[ \t]+`)
	blankRunRe     = regexp.MustCompile(`\n\s*\n`)
)

// Clean normalizes raw document text before section splitting: strips
// "Page N" markers and trailing digit runs left over from headers and
// footers, collapses runs of spaces and tabs, and reduces blank-line
// runs to a single blank line. Paragraph breaks are preserved so the
// splitter can still fall back to them. Total; never fails.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = pageMarkerRe.ReplaceAllString(text, "")
	text = footerDigitsRe.ReplaceAllString(text, "")
	text = horizontalRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
