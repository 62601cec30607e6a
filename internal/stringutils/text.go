package stringutils

import (
	"strings"
	"unicode"
)

// CleanText drops NUL, DEL and C0/C1 control characters other than tab and
// newlines, then trims surrounding space.
func CleanText(s string) string {
	if !hasControlChars(s) {
		return strings.TrimSpace(s)
	}

	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if isControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s))
}

func isControl(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return false
	case r < 32, r == 127, r >= 128 && r <= 159:
		return true
	}
	return false
}

func hasControlChars(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return isControl(r) || r == unicode.ReplacementChar
	})
}

// Ellipsis shortens s to at most n runes, marking the cut with "…".
func Ellipsis(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
