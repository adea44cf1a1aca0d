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


package index

import (
	"math"
	"slices"
	"sort"
	"strconv"

	"github.com/RoaringBitmap/roaring"
	"github.com/poiesic/boox/core"
	"github.com/poiesic/boox/encoder"
)

// Model is a multi-field inverted index over phonetic codes.
type Model struct {
	encoder     *encoder.Encoder
	featureKeys []string
	documents   map[string]*core.Document
	features    core.Features
	fieldOrder  []string

	// ordinals number documents in insertion order for bitmap operations
	// and posting iteration order.
	ordinals    map[string]uint32
	nextOrdinal uint32
}

// Entry is the term frequency of one code in one field of a document.
type Entry struct {
	Field string
	Code  string
	TF    float64
}

// Prepared holds everything Apply needs to index a document.
type Prepared struct {
	Document  *core.Document
	Fields    []string
	Entries   []Entry
	Magnitude float64
}

// Posting is a single document entry under a code.
type Posting struct {
	DocID string
	TF    float64
}

// New creates an empty model indexing the given feature keys.
// A nil encoder means encoder.New().
func New(featureKeys []string, enc *encoder.Encoder) *Model {
	if enc == nil {
		enc = encoder.New()
	}
	return &Model{
		encoder:     enc,
		featureKeys: slices.Clone(featureKeys),
		documents:   make(map[string]*core.Document),
		features:    make(core.Features),
		ordinals:    make(map[string]uint32),
	}
}

// Encoder returns the model's encoder.
func (m *Model) Encoder() *encoder.Encoder {
	return m.encoder
}

// FeatureKeys returns the indexed field names.
func (m *Model) FeatureKeys() []string {
	return slices.Clone(m.featureKeys)
}

// Prepare computes the index entries of a document without touching the model.
// Fields whose value is not truthy are skipped.
func (m *Model) Prepare(doc *core.Document) Prepared {
	p := Prepared{Document: doc}
	var magnitudeSquare float64

	for _, key := range m.featureKeys {
		value := doc.Attributes[key]
		if !core.IsTruthy(value) {
			continue
		}
		codes := m.encoder.Encode(m.encoder.Normalize(value))
		p.Fields = append(p.Fields, key)

		counts := make(map[string]int, len(codes))
		for _, code := range codes {
			counts[code]++
		}
		seen := make(map[string]struct{}, len(counts))
		for _, code := range codes {
			tf := float64(counts[code]) / float64(len(codes))
			// every occurrence contributes, not every distinct code
			magnitudeSquare += tf * tf
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			p.Entries = append(p.Entries, Entry{Field: key, Code: code, TF: tf})
		}
	}

	p.Magnitude = math.Sqrt(magnitudeSquare)
	return p
}

// Apply writes a prepared document into the model and stores the document
// with its computed magnitude.
func (m *Model) Apply(p Prepared) {
	doc := p.Document
	for _, field := range p.Fields {
		if m.features[field] == nil {
			m.features[field] = make(core.Encodings)
			m.fieldOrder = append(m.fieldOrder, field)
		}
	}
	for _, e := range p.Entries {
		encodings := m.features[e.Field]
		postings := encodings[e.Code]
		if postings == nil {
			postings = make(core.Postings)
			encodings[e.Code] = postings
		}
		postings[doc.ID] = e.TF
	}

	doc.Magnitude = p.Magnitude
	m.documents[doc.ID] = doc
	if _, ok := m.ordinals[doc.ID]; !ok {
		m.ordinals[doc.ID] = m.nextOrdinal
		m.nextOrdinal++
	}
}

// Train indexes a document.
func (m *Model) Train(doc *core.Document) {
	m.Apply(m.Prepare(doc))
}

// Update re-indexes a document: it is removed and trained again.
func (m *Model) Update(doc *core.Document) {
	m.Remove(doc.ID)
	m.Train(doc)
}

// Remove deletes a document and all of its postings.
// Codes left without postings are deleted; emptied field maps are kept.
func (m *Model) Remove(id string) {
	for _, encodings := range m.features {
		for code, postings := range encodings {
			delete(postings, id)
			if len(postings) == 0 {
				delete(encodings, code)
			}
		}
	}
	delete(m.documents, id)
	delete(m.ordinals, id)
}

// TermFrequency returns the share of codes equal to code.
func (m *Model) TermFrequency(codes []string, code string) float64 {
	return TermFrequency(codes, code)
}

// TermFrequency returns the share of codes equal to code, or 0 for no codes.
func TermFrequency(codes []string, code string) float64 {
	if len(codes) == 0 {
		return 0
	}
	count := 0
	for _, c := range codes {
		if c == code {
			count++
		}
	}
	return float64(count) / float64(len(codes))
}

// DocumentFrequency counts the registered documents that contain code in any field.
func (m *Model) DocumentFrequency(code string) int {
	bitmaps := make([]*roaring.Bitmap, 0, len(m.features))
	for _, encodings := range m.features {
		postings := encodings[code]
		if len(postings) == 0 {
			continue
		}
		bm := roaring.New()
		for id, tf := range postings {
			if ord, ok := m.ordinals[id]; ok && tf != 0 {
				bm.Add(ord)
			}
		}
		bitmaps = append(bitmaps, bm)
	}
	if len(bitmaps) == 0 {
		return 0
	}
	return int(roaring.FastOr(bitmaps...).GetCardinality())
}

// IDF returns the smoothed inverse document frequency of a code:
// ln(N / (1 + df)) + 1.
func (m *Model) IDF(code string) float64 {
	total := float64(len(m.documents))
	return math.Log(total/float64(1+m.DocumentFrequency(code))) + 1
}

// Terms returns the set of all codes across all fields.
func (m *Model) Terms() map[string]struct{} {
	terms := make(map[string]struct{})
	for _, encodings := range m.features {
		for code := range encodings {
			terms[code] = struct{}{}
		}
	}
	return terms
}

// Fields returns the indexed field names. Canonical integer names come first
// in numeric order, then every other field in the order it was first indexed.
func (m *Model) Fields() []string {
	fields := slices.Clone(m.fieldOrder)
	sort.SliceStable(fields, func(i, j int) bool {
		a, aIndex := ArrayIndex(fields[i])
		b, bIndex := ArrayIndex(fields[j])
		if aIndex && bIndex {
			return a < b
		}
		return aIndex && !bIndex
	})
	return fields
}

// Postings returns the postings of a code in a field, or nil.
func (m *Model) Postings(field, code string) core.Postings {
	return m.features[field][code]
}

// OrderedPostings returns the postings of a code in a field in iteration
// order: canonical integer IDs ascending, then every other ID in insertion
// order.
func (m *Model) OrderedPostings(field, code string) []Posting {
	postings := m.features[field][code]
	if len(postings) == 0 {
		return nil
	}
	out := make([]Posting, 0, len(postings))
	for id, tf := range postings {
		out = append(out, Posting{DocID: id, TF: tf})
	}
	sort.Slice(out, func(i, j int) bool {
		return m.docLess(out[i].DocID, out[j].DocID)
	})
	return out
}

func (m *Model) docLess(a, b string) bool {
	ai, aIndex := ArrayIndex(a)
	bi, bIndex := ArrayIndex(b)
	switch {
	case aIndex && bIndex:
		return ai < bi
	case aIndex != bIndex:
		return aIndex
	}
	ao, aok := m.ordinals[a]
	bo, bok := m.ordinals[b]
	if aok && bok && ao != bo {
		return ao < bo
	}
	if aok != bok {
		return aok
	}
	return a < b
}

// ArrayIndex reports whether id is a canonical non-negative integer below 2^32-1.
// Such IDs iterate before all others, in numeric order.
func ArrayIndex(id string) (uint64, bool) {
	if id == "" || (len(id) > 1 && id[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(id, 10, 32)
	if err != nil || n == math.MaxUint32 {
		return 0, false
	}
	return n, true
}

// Document returns a stored document.
func (m *Model) Document(id string) (*core.Document, bool) {
	doc, ok := m.documents[id]
	return doc, ok
}

// Len returns the number of stored documents.
func (m *Model) Len() int {
	return len(m.documents)
}

// Documents returns the live document registry. Callers must not modify it.
func (m *Model) Documents() map[string]*core.Document {
	return m.documents
}

// Features returns the live inverted index. Callers must not modify it.
func (m *Model) Features() core.Features {
	return m.features
}

// Restore replaces the model's documents, index and feature keys.
// Ordinals are reassigned in document ID order. Restored fields are ordered
// as configured, then lexically, since the index map carries no order.
func (m *Model) Restore(featureKeys []string, docs map[string]*core.Document, features core.Features) {
	m.featureKeys = slices.Clone(featureKeys)
	m.documents = make(map[string]*core.Document, len(docs))
	m.ordinals = make(map[string]uint32, len(docs))
	m.nextOrdinal = 0

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ai, aIndex := ArrayIndex(ids[i])
		bi, bIndex := ArrayIndex(ids[j])
		if aIndex && bIndex {
			return ai < bi
		}
		if aIndex != bIndex {
			return aIndex
		}
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		m.documents[id] = docs[id]
		m.ordinals[id] = m.nextOrdinal
		m.nextOrdinal++
	}

	if features == nil {
		features = make(core.Features)
	}
	m.features = features

	m.fieldOrder = make([]string, 0, len(features))
	for _, key := range m.featureKeys {
		if _, ok := features[key]; ok && !slices.Contains(m.fieldOrder, key) {
			m.fieldOrder = append(m.fieldOrder, key)
		}
	}
	var extra []string
	for field := range features {
		if !slices.Contains(m.fieldOrder, field) {
			extra = append(extra, field)
		}
	}
	sort.Strings(extra)
	m.fieldOrder = append(m.fieldOrder, extra...)
}
