package util

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeFileName normalizes a file name for use inside a storage key:
// diacritics are stripped and everything other than ASCII letters, digits
// and '.' is replaced with '_'. Traversal patterns are rejected.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	if s == "" {
		return "", errors.New("invalid file name")
	}

	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if strings.Trim(out, "_.") == "" {
		return "", errors.New("invalid file name")
	}
	return out, nil
}
