package analysis

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// asciiLetters returns the upper-cased a-z letters of token.
func asciiLetters(token string) string {
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range token {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Soundex returns the American Soundex code of a token: its first letter
// followed by three digits, such as R163 for both "robert" and "rupert".
// Letters outside a-z are ignored; a token without any returns "".
func Soundex(token string) string {
	letters := asciiLetters(token)
	if letters == "" {
		return ""
	}
	return matchr.Soundex(letters)
}

// DoubleMetaphone returns the primary and alternate Double Metaphone codes of
// a token, in that order. Both are kept even when they are equal, so every
// token yields two codes; they are empty for a token without a-z letters.
func DoubleMetaphone(token string) []string {
	letters := asciiLetters(token)
	if letters == "" {
		return []string{"", ""}
	}
	primary, alternate := matchr.DoubleMetaphone(letters)
	if alternate == "" {
		alternate = primary
	}
	return []string{primary, alternate}
}
