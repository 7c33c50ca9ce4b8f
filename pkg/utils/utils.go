package utils

import (
	"strings"
	"unicode"
)

// Slugify converts a title into a URL-safe slug: lower-cased, non-alphanumeric
// runs collapsed to single hyphens, no leading or trailing hyphen.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// SplitTrimmed splits a comma-separated string and trims whitespace from each
// part, dropping empty entries.
func SplitTrimmed(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
