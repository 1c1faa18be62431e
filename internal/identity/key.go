package identity

import (
	"strings"
	"unicode"

	"github.com/sells-group/contact-cli/internal/model"
)

// KeySeparator joins the normalized first and last name in a key.
const KeySeparator = "|"

// BuildKey derives the join key for id. It returns false when either the
// normalized first or last name is empty; such identities are never grouped.
func BuildKey(id model.Identity) (string, bool) {
	first := NormalizeKeyPart(id.FirstName)
	last := NormalizeKeyPart(id.LastName)
	if first == "" || last == "" {
		return "", false
	}
	return first + KeySeparator + last, true
}

// KeyFor is BuildKey(FromRecord(rec)). Grouping and every later lookup
// against raw source data go through this one function.
func KeyFor(rec model.Record) (string, bool) {
	return BuildKey(FromRecord(rec))
}

// NormalizeKeyPart lowercases and trims s, strips everything that is not a
// letter, digit, or whitespace, and collapses whitespace runs to one space.
func NormalizeKeyPart(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
