package core

import (
	"math"
	"strconv"
)

// DefaultIDField is the dataset field used as document identifier when none is configured.
const DefaultIDField = "id"

// Dataset is a raw input record handed to the engine.
type Dataset map[string]any

// Attributes is the subset of a Dataset retained on a Document.
type Attributes map[string]any

// Document is an indexed record.
// Magnitude is the L2 norm of the document's term frequencies and is always derived.
type Document struct {
	ID         string     `json:"id"`
	Attributes Attributes `json:"attributes"`
	Magnitude  float64    `json:"magnitude"`
}

// Postings maps a document ID to the term frequency of a code in one field.
type Postings map[string]float64

// Encodings maps a phonetic code to its postings.
type Encodings map[string]Postings

// Features is the inverted index: field name to encodings.
type Features map[string]Encodings

// Config selects which dataset fields identify, get indexed, or are copied as-is.
type Config struct {
	ID         string   `json:"id"`
	Features   []string `json:"features"`
	Attributes []string `json:"attributes"`
}

// State is a serializable snapshot of an engine.
// Restoring a State replaces all live data; it is never merged.
type State struct {
	Configs         Config               `json:"configs"`
	Documents       map[string]*Document `json:"documents"`
	Features        Features             `json:"features"`
	PopularSearches map[string]int       `json:"popularSearches"`
}

// NewState returns an empty State for the given configuration.
func NewState(cfg Config) *State {
	return &State{
		Configs:         cfg.Clone(),
		Documents:       map[string]*Document{},
		Features:        Features{},
		PopularSearches: map[string]int{},
	}
}

// WithDefaults returns a copy of the configuration with the default ID field filled in.
func (c Config) WithDefaults() Config {
	out := c.Clone()
	if out.ID == "" {
		out.ID = DefaultIDField
	}
	return out
}

// Clone returns a deep copy of the configuration.
// Nil field lists become empty lists so snapshots always carry arrays.
func (c Config) Clone() Config {
	out := Config{ID: c.ID}
	out.Features = append(make([]string, 0, len(c.Features)), c.Features...)
	out.Attributes = append(make([]string, 0, len(c.Attributes)), c.Attributes...)
	return out
}

// AttributeKeys returns the fields copied onto documents: features first, then attributes.
func (c Config) AttributeKeys() []string {
	keys := make([]string, 0, len(c.Features)+len(c.Attributes))
	keys = append(keys, c.Features...)
	return append(keys, c.Attributes...)
}

// Clone returns a copy of the document.
// Attribute values are shared; only the map itself is copied.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	attrs := make(Attributes, len(d.Attributes))
	for k, v := range d.Attributes {
		attrs[k] = v
	}
	return &Document{ID: d.ID, Attributes: attrs, Magnitude: d.Magnitude}
}

// Clone returns a deep copy of the inverted index.
func (f Features) Clone() Features {
	out := make(Features, len(f))
	for field, encodings := range f {
		enc := make(Encodings, len(encodings))
		for code, postings := range encodings {
			p := make(Postings, len(postings))
			for id, tf := range postings {
				p[id] = tf
			}
			enc[code] = p
		}
		out[field] = enc
	}
	return out
}

// DocumentID renders an identifier value as a document ID.
// Strings are used as-is and numbers use their shortest decimal form.
// It reports false when the value is missing or renders empty.
func DocumentID(v any) (string, bool) {
	var id string
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		id = val
	case bool:
		id = strconv.FormatBool(val)
	case int:
		id = strconv.Itoa(val)
	case int8:
		id = strconv.FormatInt(int64(val), 10)
	case int16:
		id = strconv.FormatInt(int64(val), 10)
	case int32:
		id = strconv.FormatInt(int64(val), 10)
	case int64:
		id = strconv.FormatInt(val, 10)
	case uint:
		id = strconv.FormatUint(uint64(val), 10)
	case uint8:
		id = strconv.FormatUint(uint64(val), 10)
	case uint16:
		id = strconv.FormatUint(uint64(val), 10)
	case uint32:
		id = strconv.FormatUint(uint64(val), 10)
	case uint64:
		id = strconv.FormatUint(val, 10)
	case float32:
		id = formatFloat(float64(val))
	case float64:
		id = formatFloat(val)
	case interface{ String() string }:
		id = val.String()
	default:
		return "", false
	}
	return id, id != ""
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IsTruthy reports whether a value counts as present.
// Nil, empty strings, false, numeric zero and NaN are not; everything else is,
// including empty slices and maps.
func IsTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case int:
		return val != 0
	case int8:
		return val != 0
	case int16:
		return val != 0
	case int32:
		return val != 0
	case int64:
		return val != 0
	case uint:
		return val != 0
	case uint8:
		return val != 0
	case uint16:
		return val != 0
	case uint32:
		return val != 0
	case uint64:
		return val != 0
	case float32:
		return val != 0 && !math.IsNaN(float64(val))
	case float64:
		return val != 0 && !math.IsNaN(val)
	}
	return true
}
