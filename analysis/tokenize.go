package analysis

import (
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"github.com/poiesic/boox/encoder"
)

// UAX29Tokenizer splits text on Unicode word boundaries and keeps the
// segments holding at least one letter or digit. Unlike the default
// tokenizer it keeps accented and non-Latin words whole.
func UAX29Tokenizer(input string) []string {
	segments := words.FromString(input)
	var tokens []string
	for segments.Next() {
		if token := segments.Value(); isWord(token) {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// StopWords are common English words that carry little ranking signal.
var StopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// IsStopWord reports whether a lower-cased token is in StopWords.
func IsStopWord(token string) bool {
	return StopWords[token]
}

// WithoutStopWords wraps a tokenizer so that it drops stop words.
// A nil tokenizer wraps encoder.WordTokenizer.
func WithoutStopWords(tokenizer encoder.TokenizerFunc) encoder.TokenizerFunc {
	if tokenizer == nil {
		tokenizer = encoder.WordTokenizer
	}
	return func(input string) []string {
		tokens := tokenizer(input)
		kept := tokens[:0:0]
		for _, token := range tokens {
			if !IsStopWord(token) {
				kept = append(kept, token)
			}
		}
		return kept
	}
}
