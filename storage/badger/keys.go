package badger

import (
	"bytes"
	"strings"
)

// Key prefixes for different record types
const (
	configKey      = "boxcfg"
	documentPrefix = "boxdoc:"
	postingsPrefix = "boxpst:"
	fieldPrefix    = "boxfld:"
	popularPrefix  = "boxpop:"
)

// fieldSeparator splits field and code in postings keys; field names may hold ':'.
const fieldSeparator = 0x00

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id string) []byte {
	return []byte(documentPrefix + id)
}

// makePostingsKey generates a composite key for one code of one field.
// Format: prefix:field\x00code
func makePostingsKey(field, code string) []byte {
	buf := make([]byte, 0, len(postingsPrefix)+len(field)+1+len(code))
	buf = append(buf, postingsPrefix...)
	buf = append(buf, field...)
	buf = append(buf, fieldSeparator)
	return append(buf, code...)
}

// parsePostingsKey splits a postings key into field and code.
func parsePostingsKey(key []byte) (field, code string, ok bool) {
	rest, found := bytes.CutPrefix(key, []byte(postingsPrefix))
	if !found {
		return "", "", false
	}
	i := bytes.IndexByte(rest, fieldSeparator)
	if i < 0 {
		return "", "", false
	}
	return string(rest[:i]), string(rest[i+1:]), true
}

// makeFieldKey generates the marker key of an indexed field. The marker keeps
// fields whose encodings are all gone.
func makeFieldKey(field string) []byte {
	return []byte(fieldPrefix + field)
}

// makePopularKey generates a key for the search count of a query.
func makePopularKey(query string) []byte {
	return []byte(popularPrefix + query)
}

// trimKeyPrefix strips prefix from a key, reporting whether it was present.
func trimKeyPrefix(key []byte, prefix string) (string, bool) {
	s := string(key)
	if !strings.HasPrefix(s, prefix) {
		return "", false
	}
	return s[len(prefix):], true
}
