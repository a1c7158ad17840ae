package ragdoc

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	fenceRe      = regexp.MustCompile("(?s)```.*?```")
	spaceRunRe   = regexp.MustCompile(`[ \t]{2,}`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
	anchorTailRe = regexp.MustCompile(`\s*\{#[^}]*\}\s*$`)
)

// Slugify creates an anchor from heading text. It lowercases the text,
// replaces whitespace runs with hyphens and drops every character outside
// [a-z0-9_.:-].
func Slugify(text string) string {
	var sb strings.Builder
	inSpace := false
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				sb.WriteRune('-')
				inSpace = true
			}
			continue
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == ':', r == '-':
			sb.WriteRune(r)
		}
		inSpace = false
	}
	return strings.Trim(sb.String(), "-")
}

// CleanHeading removes visible anchor residue (trailing "¶" and "{#...}")
// from heading text.
func CleanHeading(text string) string {
	text = strings.TrimSpace(text)
	for {
		trimmed := anchorTailRe.ReplaceAllString(text, "")
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "¶"))
		if trimmed == text {
			return text
		}
		text = trimmed
	}
}

// NormalizeWhitespace collapses horizontal whitespace runs to one space and
// three or more newlines to two. Fenced code blocks are left untouched.
func NormalizeWhitespace(text string) string {
	var parts []string
	appendText := func(s string) {
		s = spaceRunRe.ReplaceAllString(s, " ")
		s = blankRunRe.ReplaceAllString(s, "\n\n")
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	last := 0
	for _, loc := range fenceRe.FindAllStringIndex(text, -1) {
		appendText(text[last:loc[0]])
		parts = append(parts, text[loc[0]:loc[1]])
		last = loc[1]
	}
	appendText(text[last:])

	return strings.Join(parts, "\n\n")
}

// fenceSpans returns the byte ranges of fenced code blocks in text.
func fenceSpans(text string) [][]int {
	return fenceRe.FindAllStringIndex(text, -1)
}

func inSpans(pos int, spans [][]int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}
