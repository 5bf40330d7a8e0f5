package content

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended to truncated text.
const Ellipsis = "…"

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize trims, lower-cases and collapses internal whitespace to single spaces.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// CollapseSpaces trims s and collapses internal whitespace without changing case.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// FirstChars returns at most n leading runes of s.
func FirstChars(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Truncate shortens s to at most limit runes, ending in an ellipsis when cut.
// Trailing spaces and list punctuation before the ellipsis are dropped.
func Truncate(s string, limit int) string {
	if CountChars(s) <= limit {
		return s
	}
	head := strings.TrimRight(FirstChars(s, limit-1), " \t\n,;:")
	return head + Ellipsis
}

// FoldKey is the comparison key for case-insensitive de-duplication.
func FoldKey(s string) string {
	return Normalize(s)
}
