package util

import (
	"strings"

	"golang.org/x/text/transform"
)

// Slug derives a normalized path segment from a display name: diacritics
// stripped, lowercased, runs of non-alphanumerics collapsed to single dashes.
func Slug(name string) string {
	s := strings.TrimSpace(name)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
