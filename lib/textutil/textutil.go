package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	reviewPhrase    = regexp.MustCompile(`(?i)\s*(?:hands-on\s*)?review\s*`)
	parenthetical   = regexp.MustCompile(`\([^)]*\)`)
	invalidPathChar = regexp.MustCompile(`[<>:"/\\|?*]`)
	ampersand       = regexp.MustCompile(`\s*&\s*`)
)

const maxFilenameLength = 100

// CollapseSpace trims a string and collapses internal whitespace runs into
// single spaces.
func CollapseSpace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// StripReviewPhrase removes a "review" / "hands-on review" phrase from a
// product title, case-insensitively.
func StripReviewPhrase(s string) string {
	return reviewPhrase.ReplaceAllString(s, "")
}

// StripParenthetical removes parenthesized text.
func StripParenthetical(s string) string {
	return parenthetical.ReplaceAllString(s, "")
}

// SanitizeFilename turns an arbitrary product title into a token that is safe
// to use as a directory name on common filesystems: no `<>:"/\|?*`, no
// leading/trailing spaces or dots, at most 100 characters.
func SanitizeFilename(name string) string {
	name = reviewPhrase.ReplaceAllString(name, " ")
	name = ampersand.ReplaceAllString(name, " and ")
	name = invalidPathChar.ReplaceAllString(name, "_")
	name = CollapseSpace(name)
	name = strings.Trim(name, ". ")
	if len(name) > maxFilenameLength {
		name = strings.Trim(truncateRunes(name, maxFilenameLength), ". ")
	}
	return name
}

// truncateRunes cuts s to at most max bytes without splitting a multibyte
// rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
