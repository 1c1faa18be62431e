package identity

import (
	"strings"
	"unicode"
)

// TitleCase lowercases s, then uppercases the first letter of each
// whitespace-delimited chunk and the letter following each apostrophe
// ("o'connor" → "O'Connor"). Whitespace runs collapse to one space.
//
// Mc/Mac prefixes are not special-cased: "mcdonald" → "Mcdonald".
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	runes := []rune(w)
	upperNext := true
	for i, r := range runes {
		if upperNext && unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			upperNext = false
			continue
		}
		if isApostrophe(r) {
			upperNext = true
			continue
		}
		if i == 0 {
			// A leading non-letter ("(john") does not consume the capital.
			continue
		}
		upperNext = false
	}
	return string(runes)
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}
