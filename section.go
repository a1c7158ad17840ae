package ragdoc

import (
	"regexp"
	"strings"
)

// Section is a heading block of a page. Level 1 with an empty heading holds
// the content that precedes the first H2-H6 heading.
type Section struct {
	Level       int    `json:"level"`
	Heading     string `json:"heading"`
	Anchor      string `json:"anchor"`
	Body        string `json:"body"`
	HeadingPath string `json:"heading_path"`
}

// headingRe matches H2-H6 lines with an optional trailing {#anchor}.
// H1 is the page title and never starts a section.
var headingRe = regexp.MustCompile(`(?m)^(#{2,6})[ \t]+(.+?)(?:[ \t]*\{#([A-Za-z0-9_.\-:]+)\})?[ \t]*$`)

// ParseSections splits markdown into sections at H2-H6 headings and fills
// in their heading paths. Headings inside fenced code blocks are ignored.
// Text without headings yields a single level-1 section.
func ParseSections(markdown string) []Section {
	spans := fenceSpans(markdown)

	var matches [][]int
	for _, m := range headingRe.FindAllStringSubmatchIndex(markdown, -1) {
		if !inSpans(m[0], spans) {
			matches = append(matches, m)
		}
	}

	if len(matches) == 0 {
		return []Section{{Level: 1, Body: strings.TrimSpace(markdown)}}
	}

	sections := make([]Section, 0, len(matches)+1)
	if head := strings.TrimSpace(markdown[:matches[0][0]]); head != "" {
		sections = append(sections, Section{Level: 1, Body: head})
	}

	for i, m := range matches {
		heading := CleanHeading(markdown[m[4]:m[5]])
		var anchor string
		if m[6] >= 0 {
			anchor = markdown[m[6]:m[7]]
		}
		if anchor == "" && heading != "" {
			anchor = Slugify(heading)
		}

		end := len(markdown)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		sections = append(sections, Section{
			Level:   m[3] - m[2],
			Heading: heading,
			Anchor:  anchor,
			Body:    strings.TrimSpace(markdown[m[1]:end]),
		})
	}

	BuildHeadingPaths(sections)
	return sections
}

// BuildHeadingPaths sets each section's heading path to the " > "-joined
// chain of enclosing headings. An entry leaves the stack once a heading of
// the same or a higher level (smaller number) appears.
func BuildHeadingPaths(sections []Section) {
	type entry struct {
		level   int
		heading string
	}
	var stack []entry

	for i := range sections {
		sec := &sections[i]

		kept := stack[:0]
		for _, e := range stack {
			if e.level < sec.Level {
				kept = append(kept, e)
			}
		}
		stack = kept

		if sec.Heading != "" {
			stack = append(stack, entry{level: sec.Level, heading: sec.Heading})
		}

		names := make([]string, 0, len(stack))
		for _, e := range stack {
			names = append(names, e.heading)
		}
		sec.HeadingPath = strings.Join(names, " > ")
	}
}
