package model

import (
	"strings"
	"unicode"
)

// NormalizeHeading returns lookup key for a heading: lower-cased, with
// collapsed whitespace and trailing punctuation removed.
func NormalizeHeading(heading string) string {
	fields := strings.Fields(strings.ToLower(heading))
	key := strings.Join(fields, " ")
	return strings.TrimRightFunc(key, func(r rune) bool {
		switch r {
		case '.', ':', '…':
			return true
		}
		return false
	})
}

// Slug returns heading lower-case alphanumeric runs joined with '-'
func Slug(heading string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(heading) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
