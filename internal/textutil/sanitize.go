package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName makes name safe as a single path element on common
// filesystems. Path separators, colons and asterisks become hyphens, other
// reserved or control characters are dropped, and leading dots are removed
// so the result is never hidden.
func SanitizeFileName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			return '-'
		case r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			return -1
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(mapped), "."))
}

// SanitizeToken folds value to a lowercase ASCII token for object metadata.
// Accents are stripped, runs of anything outside [a-z0-9-] collapse to one
// underscore, and blank input yields "unknown".
func SanitizeToken(value string) string {
	var b strings.Builder
	pending := false
	for _, r := range foldAccents(strings.ToLower(value)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
