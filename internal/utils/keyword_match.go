package utils

import (
	"strings"
	"unicode"
)

// Compact lowercases s and drops all whitespace so that "상세 주소 없음"
// and "상세주소없음" compare equal.
func Compact(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// ContainsAny reports whether s contains any keyword, case-insensitively
func ContainsAny(s string, keywords []string) bool {
	_, ok := FirstContained(s, keywords)
	return ok
}

// FirstContained returns the first keyword found in s (case-insensitive)
func FirstContained(s string, keywords []string) (string, bool) {
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return kw, true
		}
	}
	return "", false
}

// ContainsAnyCompact is ContainsAny with whitespace ignored on both sides
func ContainsAnyCompact(s string, keywords []string) bool {
	compact := Compact(s)
	for _, kw := range keywords {
		if c := Compact(kw); c != "" && strings.Contains(compact, c) {
			return true
		}
	}
	return false
}

// MutualContains reports whether either string contains the other (case-insensitive).
// Empty strings never match.
func MutualContains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}
