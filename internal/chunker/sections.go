package chunker

import (
	"regexp"
	"strings"
)

// Heading patterns tried in priority order. Each pattern carries exactly
// one capture group marking where the section body begins, so the heading
// marker itself is consumed by the split. The uppercase-letter guard keeps
// in-sentence numbers ("$100,000. ") from being mistaken for headings.
var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|\s)\d+\.\s+([A-Z])`),            // 1. Section
	regexp.MustCompile(`(?:^|\s)\d+\.\d+\s+([A-Z])`),         // 1.1 Subsection
	regexp.MustCompile(`(?:^|\s)[A-Z]\.\s+([A-Z])`),          // A. Section
	regexp.MustCompile(`(?:^|\s)\([a-z]\)\s+(\S)`),           // (a) subsection
	regexp.MustCompile(`(?:^|\s)Article\s+\d+[:.]?\s*(\S?)`), // Article 1
	regexp.MustCompile(`(?:^|\s)Section\s+\d+[:.]?\s*(\S?)`), // Section 1
	regexp.MustCompile(`(?:^|\s)Clause\s+\d+[:.]?\s*(\S?)`),  // Clause 1
}

// SplitSections cuts cleaned text into logical sections. The first
// heading pattern that actually divides the text (two or more sections)
// wins; a pattern whose only match sits at the start of the text divides
// nothing, so later patterns and the blank-line fallback are still tried.
// With no heading matches the text is split on blank-line paragraphs,
// and with no blank lines either the whole text is returned as a single
// section. Sections are trimmed and never empty.
func SplitSections(text string) []string {
	for _, re := range headingPatterns {
		if sections := splitOnHeadings(text, re); sections != nil {
			return sections
		}
	}

	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

func splitOnHeadings(text string, re *regexp.Regexp) []string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var sections []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			sections = append(sections, s)
		}
	}

	add(text[:matches[0][0]])
	for i, m := range matches {
		// m[2] is the start of the body capture group; the heading
		// marker before it is dropped.
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		add(text[m[2]:end])
	}
	if len(sections) < 2 {
		return nil
	}
	return sections
}
