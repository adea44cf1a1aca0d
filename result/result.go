package result

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/poiesic/boox/core"
	"github.com/poiesic/boox/encoder"
)

// DefaultHighlightTag wraps matches in a mark element.
var DefaultHighlightTag = [2]string{`<mark class="search-highlight">`, `</mark>`}

// DefaultWordsAround is the KWIC window radius used when none is given.
const DefaultWordsAround = 7

var (
	lineBreakRegexp = regexp.MustCompile(`\r\n|\r|\n`)
	leadingNonWord  = regexp.MustCompile(`^\W+`)
	// words may contain HTML entities such as &amp; or &#39;
	wordBoundaryRegexp = regexp.MustCompile(`(?i)\b(?:\w|&(?:[a-z0-9]+|#[0-9]{1,6}|#x[0-9a-f]{1,6});)+\b`)
)

// Snippet is a highlighted excerpt and the keywords found in it.
type Snippet struct {
	Keywords []string `json:"keywords"`
	Text     string   `json:"text"`
}

// HasKeyword reports whether keyword was found in the snippet.
func (s Snippet) HasKeyword(keyword string) bool {
	for _, k := range s.Keywords {
		if k == keyword {
			return true
		}
	}
	return false
}

// SearchResult is a scored document for one query.
type SearchResult struct {
	Query        string          `json:"query"`
	ID           string          `json:"id"`
	Attributes   core.Attributes `json:"attributes"`
	Magnitude    float64         `json:"magnitude"`
	Score        float64         `json:"score"`
	HighlightTag [2]string       `json:"highlightTag"`

	encoder *encoder.Encoder
}

// New creates a zero-score result for a document.
// A zero highlight tag means DefaultHighlightTag; a nil encoder means encoder.New().
func New(enc *encoder.Encoder, query string, doc *core.Document, highlightTag [2]string) *SearchResult {
	if enc == nil {
		enc = encoder.New()
	}
	if highlightTag == ([2]string{}) {
		highlightTag = DefaultHighlightTag
	}
	r := &SearchResult{
		Query:        query,
		HighlightTag: highlightTag,
		encoder:      enc,
	}
	if doc != nil {
		r.ID = doc.ID
		r.Attributes = doc.Attributes
		r.Magnitude = doc.Magnitude
	}
	return r
}

// ValidateHighlightTag checks that a custom tag pair is usable.
// The zero pair is valid and selects DefaultHighlightTag.
func ValidateHighlightTag(tag [2]string) error {
	if tag == ([2]string{}) {
		return nil
	}
	if tag[0] == "" || tag[1] == "" {
		return ErrInvalidHighlightTag
	}
	return nil
}

// Context returns the first window of a field that contains a keyword.
//
// Windows are maxLength characters long and do not overlap; maxLength <= 0
// means the whole field. When no window matches, the last window is returned
// with no keywords, still highlighted against the literal query. A missing
// field yields an empty snippet.
func (r *SearchResult) Context(field string, maxLength int) Snippet {
	text := []rune(r.text(field))
	if maxLength <= 0 {
		maxLength = len(text)
	}

	var (
		keywords []string
		chunk    string
	)
	for start := 0; start < len(text); start += maxLength {
		end := min(start+maxLength, len(text))
		chunk = string(text[start:end])
		for _, m := range r.findIndices(chunk) {
			keywords = appendUnique(keywords, m.keyword)
		}
		if len(keywords) > 0 {
			break
		}
	}

	if keywords == nil {
		keywords = []string{}
	}
	return Snippet{Keywords: keywords, Text: r.highlight(chunk, keywords)}
}

// KWIC returns a keyword-in-context window for every keyword occurrence in a field.
//
// Line breaks collapse into single spaces and blank lines are dropped. Each
// window holds wordsAround words on either side of the word containing the
// occurrence; a negative wordsAround means DefaultWordsAround and zero keeps
// only that word. With sorted set, windows are ordered by descending keyword
// count, keeping their relative order on ties.
func (r *SearchResult) KWIC(field string, wordsAround int, sorted bool) []Snippet {
	results := []Snippet{}
	text := r.text(field)
	if text == "" {
		return results
	}
	if wordsAround < 0 {
		wordsAround = DefaultWordsAround
	}

	lines := lineBreakRegexp.Split(text, -1)
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	normalized := strings.Join(kept, " ")

	for _, m := range r.findIndices(normalized) {
		window, ok := wordsAroundIndex(normalized, m.index, wordsAround)
		if !ok {
			continue
		}
		keywords := dedupe(r.Keywords(window))
		results = append(results, Snippet{
			Keywords: keywords,
			Text:     r.highlight(window, keywords),
		})
	}

	if sorted {
		sort.SliceStable(results, func(i, j int) bool {
			return len(results[i].Keywords) > len(results[j].Keywords)
		})
	}
	return results
}

// Keywords returns the tokens of text that share a phonetic code with the query.
// Tokens are normalized and may repeat.
func (r *SearchResult) Keywords(text string) []string {
	queryCodes := make(map[string]struct{})
	for _, code := range r.encoder.Encode(r.Query) {
		queryCodes[code] = struct{}{}
	}

	var keywords []string
	for _, token := range r.encoder.Tokenize(r.encoder.Normalize(text)) {
		for _, code := range r.encoder.Encode(token) {
			if _, ok := queryCodes[code]; ok {
				keywords = append(keywords, token)
				break
			}
		}
	}
	return keywords
}

func (r *SearchResult) text(field string) string {
	s, _ := r.Attributes[field].(string)
	return s
}

type keywordIndex struct {
	keyword string
	index   int
}

// findIndices locates keywords in text. Each search starts from the previous
// match's offset plus its length, and the reported index is relative to that
// starting point.
func (r *SearchResult) findIndices(text string) []keywordIndex {
	var indices []keywordIndex
	lower := strings.ToLower(text)
	pointer := 0

	for _, keyword := range r.Keywords(text) {
		if pointer > len(lower) {
			pointer = len(lower)
		}
		index := strings.Index(lower[pointer:], strings.ToLower(keyword))
		if index == -1 {
			continue
		}
		indices = append(indices, keywordIndex{keyword: keyword, index: index})
		pointer = index + len(keyword)
	}
	return indices
}

// wordsAroundIndex joins the words surrounding the first word whose first
// occurrence in text spans index.
func wordsAroundIndex(text string, index, wordsAround int) (string, bool) {
	words := wordBoundaryRegexp.FindAllString(text, -1)
	for i, word := range words {
		pos := strings.Index(text, word)
		if pos > index || pos+len(word) < index {
			continue
		}
		start := max(0, i-wordsAround)
		end := min(len(words), i+wordsAround+1)
		return strings.Join(words[start:end], " "), true
	}
	return "", false
}

// highlight wraps query matches, or keyword matches when the literal query
// does not occur, in the result's highlight tag.
func (r *SearchResult) highlight(text string, fallbackKeywords []string) string {
	escapedQuery := regexp.QuoteMeta(r.Query)
	pattern := escapedQuery
	if len(fallbackKeywords) > 0 && !matchesFold(escapedQuery, text) {
		quoted := make([]string, len(fallbackKeywords))
		for i, k := range fallbackKeywords {
			quoted[i] = regexp.QuoteMeta(k)
		}
		pattern = strings.Join(quoted, "|")
	}

	text = leadingNonWord.ReplaceAllString(text, "")
	if pattern != "" {
		if re, err := regexp.Compile("(?i)(" + pattern + ")"); err == nil {
			open := escapeReplacement(r.HighlightTag[0])
			closing := escapeReplacement(r.HighlightTag[1])
			text = re.ReplaceAllString(text, open+"${1}"+closing)
		}
	}
	return strings.TrimRightFunc(text, unicode.IsSpace)
}

func matchesFold(pattern, text string) bool {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

func escapeReplacement(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func dedupe(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = appendUnique(out, s)
	}
	return out
}
