// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"
	"sort"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/boox/core"
)

// Attribute value tags. Values decode to the JSON-compatible Go type of
// their tag, so integers of any width come back as int64.
const (
	tagNil byte = iota
	tagString
	tagFloat
	tagInt
	tagBool
	tagList
	tagMap
)

// recordWriter appends MUS-encoded values to a growing buffer.
type recordWriter struct {
	buf []byte
	err error
}

func writeValue[T any](w *recordWriter, v T, size func(T) int, marshal func(T, []byte) int) {
	off := len(w.buf)
	w.buf = append(w.buf, make([]byte, size(v))...)
	marshal(v, w.buf[off:])
}

func (w *recordWriter) string(s string) { writeValue(w, s, ord.String.Size, ord.String.Marshal) }
func (w *recordWriter) float(f float64) { writeValue(w, f, raw.Float64.Size, raw.Float64.Marshal) }
func (w *recordWriter) int(i int64)     { writeValue(w, i, varint.Int64.Size, varint.Int64.Marshal) }
func (w *recordWriter) length(n int)    { writeValue(w, n, varint.PositiveInt.Size, varint.PositiveInt.Marshal) }
func (w *recordWriter) bool(b bool)     { writeValue(w, b, ord.Bool.Size, ord.Bool.Marshal) }
func (w *recordWriter) tag(t byte)      { w.buf = append(w.buf, t) }
func (w *recordWriter) strings(s []string) {
	w.length(len(s))
	for _, item := range s {
		w.string(item)
	}
}

func (w *recordWriter) value(v any) {
	if w.err != nil {
		return
	}
	switch val := v.(type) {
	case nil:
		w.tag(tagNil)
	case string:
		w.tag(tagString)
		w.string(val)
	case float64:
		w.tag(tagFloat)
		w.float(val)
	case float32:
		w.tag(tagFloat)
		w.float(float64(val))
	case int:
		w.tag(tagInt)
		w.int(int64(val))
	case int8:
		w.tag(tagInt)
		w.int(int64(val))
	case int16:
		w.tag(tagInt)
		w.int(int64(val))
	case int32:
		w.tag(tagInt)
		w.int(int64(val))
	case int64:
		w.tag(tagInt)
		w.int(val)
	case uint8:
		w.tag(tagInt)
		w.int(int64(val))
	case uint16:
		w.tag(tagInt)
		w.int(int64(val))
	case uint32:
		w.tag(tagInt)
		w.int(int64(val))
	case bool:
		w.tag(tagBool)
		w.bool(val)
	case []string:
		w.tag(tagList)
		w.length(len(val))
		for _, item := range val {
			w.value(item)
		}
	case []any:
		w.tag(tagList)
		w.length(len(val))
		for _, item := range val {
			w.value(item)
		}
	case map[string]any:
		w.tag(tagMap)
		w.attributes(val)
	default:
		w.err = fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// attributes writes a map in sorted key order so equal maps encode to equal bytes.
func (w *recordWriter) attributes(m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	w.length(len(keys))
	for _, k := range keys {
		w.string(k)
		w.value(m[k])
	}
}

// recordReader consumes MUS-encoded values. The first failure sticks.
type recordReader struct {
	data []byte
	err  error
}

func readValue[T any](r *recordReader, unmarshal func([]byte) (T, int, error)) T {
	var zero T
	if r.err != nil {
		return zero
	}
	v, n, err := unmarshal(r.data)
	if err != nil {
		r.err = fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		return zero
	}
	r.data = r.data[n:]
	return v
}

func (r *recordReader) string() string { return readValue(r, ord.String.Unmarshal) }
func (r *recordReader) float() float64 { return readValue(r, raw.Float64.Unmarshal) }
func (r *recordReader) int() int64     { return readValue(r, varint.Int64.Unmarshal) }
func (r *recordReader) bool() bool     { return readValue(r, ord.Bool.Unmarshal) }

func (r *recordReader) length() int {
	n := readValue(r, varint.PositiveInt.Unmarshal)
	// Every encoded element takes at least one byte.
	if r.err == nil && (n < 0 || n > len(r.data)) {
		r.err = fmt.Errorf("%w: length %d exceeds %d remaining bytes", ErrTruncatedData, n, len(r.data))
		return 0
	}
	return n
}

func (r *recordReader) tag() byte {
	if r.err != nil {
		return 0
	}
	if len(r.data) == 0 {
		r.err = ErrTruncatedData
		return 0
	}
	t := r.data[0]
	r.data = r.data[1:]
	return t
}

func (r *recordReader) strings() []string {
	n := r.length()
	out := make([]string, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, r.string())
	}
	return out
}

func (r *recordReader) value() any {
	switch t := r.tag(); t {
	case tagNil:
		return nil
	case tagString:
		return r.string()
	case tagFloat:
		return r.float()
	case tagInt:
		return r.int()
	case tagBool:
		return r.bool()
	case tagList:
		n := r.length()
		list := make([]any, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			list = append(list, r.value())
		}
		return list
	case tagMap:
		return r.attributes()
	default:
		if r.err == nil {
			r.err = fmt.Errorf("%w: unknown value tag %d", ErrSerializationFailed, t)
		}
		return nil
	}
}

func (r *recordReader) attributes() map[string]any {
	n := r.length()
	m := make(map[string]any, n)
	for i := 0; i < n && r.err == nil; i++ {
		k := r.string()
		m[k] = r.value()
	}
	return m
}

// finish reports the first failure, or trailing bytes after a complete record.
func (r *recordReader) finish() error {
	if r.err != nil {
		return r.err
	}
	if len(r.data) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(r.data))
	}
	return nil
}

// MarshalDocument serializes a Document to bytes.
// Attribute values must be nil, strings, numbers, booleans, or lists and
// string-keyed maps of those.
func MarshalDocument(doc *core.Document) ([]byte, error) {
	w := &recordWriter{}
	w.string(doc.ID)
	w.float(doc.Magnitude)
	w.attributes(doc.Attributes)
	if w.err != nil {
		return nil, fmt.Errorf("document %q: %w", doc.ID, w.err)
	}
	return w.buf, nil
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	r := &recordReader{data: data}
	doc := &core.Document{ID: r.string(), Magnitude: r.float()}
	doc.Attributes = core.Attributes(r.attributes())
	if err := r.finish(); err != nil {
		return nil, err
	}
	return doc, nil
}

// MarshalPostings serializes the postings of one code in one field, ordered
// by document ID.
func MarshalPostings(postings core.Postings) []byte {
	ids := make([]string, 0, len(postings))
	for id := range postings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w := &recordWriter{}
	w.length(len(ids))
	for _, id := range ids {
		w.string(id)
		w.float(postings[id])
	}
	return w.buf
}

// UnmarshalPostings deserializes postings from bytes.
func UnmarshalPostings(data []byte) (core.Postings, error) {
	r := &recordReader{data: data}
	n := r.length()
	postings := make(core.Postings, n)
	for i := 0; i < n && r.err == nil; i++ {
		id := r.string()
		postings[id] = r.float()
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return postings, nil
}

// MarshalConfig serializes a Config to bytes.
func MarshalConfig(cfg core.Config) []byte {
	w := &recordWriter{}
	w.string(cfg.ID)
	w.strings(cfg.Features)
	w.strings(cfg.Attributes)
	return w.buf
}

// UnmarshalConfig deserializes a Config from bytes.
func UnmarshalConfig(data []byte) (core.Config, error) {
	r := &recordReader{data: data}
	cfg := core.Config{ID: r.string(), Features: r.strings(), Attributes: r.strings()}
	if err := r.finish(); err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}

// MarshalCount serializes a popularity count to bytes.
func MarshalCount(count int) []byte {
	w := &recordWriter{}
	w.int(int64(count))
	return w.buf
}

// UnmarshalCount deserializes a popularity count from bytes.
func UnmarshalCount(data []byte) (int, error) {
	r := &recordReader{data: data}
	count := r.int()
	if err := r.finish(); err != nil {
		return 0, err
	}
	return int(count), nil
}
