package openai

import (
	"strings"
	"unicode"
)

// scrubString removes punctuation and collapses whitespace in text.
func scrubString(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) && r != '\'' {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// parseExpansion extracts the related terms from a model reply. Code fences,
// quotes, list markers, a leading "Output:" label and duplicate terms are
// removed, and at most maxExpansionTerms terms are kept.
func parseExpansion(reply string) []string {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```text")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)
	if i := strings.Index(strings.ToLower(reply), "output:"); i >= 0 {
		reply = reply[i+len("output:"):]
	}

	seen := map[string]struct{}{}
	terms := []string{}
	for _, part := range strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	}) {
		term := strings.ToLower(scrubString(trimListMarker(part)))
		if term == "" || !hasLetter(term) {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
		if len(terms) == maxExpansionTerms {
			break
		}
	}
	return terms
}

// mergeTerms appends the terms not already in query to it.
func mergeTerms(query string, terms []string) string {
	present := map[string]struct{}{}
	for _, w := range strings.Fields(strings.ToLower(query)) {
		present[w] = struct{}{}
	}

	out := []string{query}
	for _, term := range terms {
		if _, ok := present[term]; ok {
			continue
		}
		out = append(out, term)
	}
	return strings.Join(out, " ")
}

// trimListMarker removes a leading bullet or "1." style marker.
func trimListMarker(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-*• ")
	if i := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }); i > 0 && (s[i] == '.' || s[i] == ')') {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

// hasLetter reports whether s contains a letter.
func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}
