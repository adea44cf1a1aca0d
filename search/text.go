package search

import (
	"context"
	"strings"

	"github.com/poiesic/boox/analysis"
	"github.com/poiesic/boox/core"
	"github.com/poiesic/boox/encoder"
)

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !analysis.IsStopWord(cleaned) {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// containsAllQueryWords checks if all query words (after filtering) appear in the text
func containsAllQueryWords(text, query string) bool {
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return false
	}

	textWords := make(map[string]bool)
	for _, word := range tokenizeAndFilter(text) {
		textWords[word] = true
	}

	for _, qWord := range queryWords {
		if !textWords[qWord] {
			return false
		}
	}

	return true
}

// VerbatimCoefficient returns a MatchingCoefficientFunc that rates a document
// boost when one of fields holds every non-stop word of the query verbatim,
// and 0 otherwise. With no fields every string attribute is checked.
func VerbatimCoefficient(boost float64, fields ...string) MatchingCoefficientFunc {
	return func(_ context.Context, _ *encoder.Encoder, query string, attrs core.Attributes) (float64, error) {
		check := func(v any) bool {
			s, ok := v.(string)
			return ok && containsAllQueryWords(s, query)
		}
		if len(fields) == 0 {
			for _, v := range attrs {
				if check(v) {
					return boost, nil
				}
			}
			return 0, nil
		}
		for _, field := range fields {
			if check(attrs[field]) {
				return boost, nil
			}
		}
		return 0, nil
	}
}
