package analysis

import "github.com/kljensen/snowball/english"

// SnowballStemmer reduces an English token to its Snowball stem.
// Stop words are returned unchanged.
func SnowballStemmer(token string) string {
	return english.Stem(token, false)
}
