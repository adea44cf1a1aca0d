// Package result builds previews for search hits.
//
// A SearchResult carries the scored document and the normalized query that
// produced it. Snippets are derived lazily: Context returns the first window
// of a field that mentions the query, KWIC returns a word window around every
// mention. A document token counts as a mention when its phonetic codes share
// at least one code with the query's, so misspelled or sound-alike query terms
// still surface and highlight the literal document words.
package result
