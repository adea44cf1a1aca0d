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


package encoder

import (
	"regexp"
	"strings"
)

// NormalizerFunc rewrites lower-cased text before tokenization.
type NormalizerFunc func(input string) string

// TokenizerFunc splits text into ordered tokens.
type TokenizerFunc func(input string) []string

// StemmerFunc maps a token to its stem.
type StemmerFunc func(token string) string

// PhoneticFunc returns the phonetic code of a token.
type PhoneticFunc func(token string) string

// MultiPhoneticFunc returns several phonetic codes for a token, such as the
// primary and alternate codes of a double-metaphone style algorithm.
type MultiPhoneticFunc func(token string) []string

var wordRegexp = regexp.MustCompile(`\b\w+\b`)

// WordTokenizer is the default tokenizer: contiguous runs of ASCII letters,
// digits and underscores.
func WordTokenizer(input string) []string {
	return wordRegexp.FindAllString(input, -1)
}

// Encoder normalizes, tokenizes, stems and phonetically encodes text.
// An Encoder is immutable after construction and safe for concurrent use as
// long as its strategies are.
type Encoder struct {
	normalizer    NormalizerFunc
	tokenizer     TokenizerFunc
	stemmer       StemmerFunc
	phonetic      PhoneticFunc
	multiPhonetic MultiPhoneticFunc
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithNormalizer sets the normalizer applied after lower-casing.
func WithNormalizer(fn NormalizerFunc) Option {
	return func(e *Encoder) {
		e.normalizer = fn
	}
}

// WithTokenizer replaces the default word tokenizer.
// A nil tokenizer keeps the default.
func WithTokenizer(fn TokenizerFunc) Option {
	return func(e *Encoder) {
		if fn != nil {
			e.tokenizer = fn
		}
	}
}

// WithStemmer sets the stemmer applied to every token.
func WithStemmer(fn StemmerFunc) Option {
	return func(e *Encoder) {
		e.stemmer = fn
	}
}

// WithPhonetic sets a single-valued phonetic function.
// It replaces any multi-valued function set earlier.
func WithPhonetic(fn PhoneticFunc) Option {
	return func(e *Encoder) {
		e.phonetic = fn
		e.multiPhonetic = nil
	}
}

// WithMultiPhonetic sets a multi-valued phonetic function.
// It replaces any single-valued function set earlier.
func WithMultiPhonetic(fn MultiPhoneticFunc) Option {
	return func(e *Encoder) {
		e.multiPhonetic = fn
		e.phonetic = nil
	}
}

// New creates an Encoder with the given strategies.
func New(opts ...Option) *Encoder {
	e := &Encoder{tokenizer: WordTokenizer}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Normalize lower-cases and normalizes a value.
//
// Strings go through the normalizer; an empty normalizer result falls back to
// the lower-cased string. Slices keep their string items, normalize each and
// join them with a single space. Any other value normalizes to "".
func (e *Encoder) Normalize(value any) string {
	switch v := value.(type) {
	case string:
		return e.normalizeString(v)
	case []string:
		parts := make([]string, 0, len(v))
		for _, s := range v {
			parts = append(parts, e.normalizeString(s))
		}
		return strings.Join(parts, " ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, e.normalizeString(s))
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

func (e *Encoder) normalizeString(s string) string {
	lower := strings.ToLower(s)
	if e.normalizer == nil {
		return lower
	}
	if out := e.normalizer(lower); out != "" {
		return out
	}
	return lower
}

// Tokenize splits text into tokens, stemming each one when a stemmer is set.
func (e *Encoder) Tokenize(input string) []string {
	tokens := e.tokenizer(input)
	if e.stemmer == nil {
		return tokens
	}
	stemmed := make([]string, len(tokens))
	for i, token := range tokens {
		stemmed[i] = e.stemmer(token)
	}
	return stemmed
}

// Phoneticize returns the phonetic codes of a token.
//
// Without a phonetic function the token is its own code. Tokens containing a
// digit keep their literal form, repeated to the phonetic output's arity for
// multi-valued functions. Other tokens keep the non-empty codes of a
// multi-valued function, so a token it finds no codes for is dropped.
func (e *Encoder) Phoneticize(token string) []string {
	if e.multiPhonetic != nil {
		codes := e.multiPhonetic(token)
		if hasDigit(token) {
			out := make([]string, len(codes))
			for i := range out {
				out[i] = token
			}
			return out
		}
		out := make([]string, 0, len(codes))
		for _, c := range codes {
			if c != "" {
				out = append(out, c)
			}
		}
		return out
	}

	code := token
	if e.phonetic != nil {
		if c := e.phonetic(token); c != "" {
			code = c
		}
	}
	if hasDigit(token) {
		return []string{token}
	}
	return []string{code}
}

// Encode tokenizes text and concatenates the phonetic codes of every token.
func (e *Encoder) Encode(input string) []string {
	tokens := e.Tokenize(input)
	codes := make([]string, 0, len(tokens))
	for _, token := range tokens {
		codes = append(codes, e.Phoneticize(token)...)
	}
	return codes
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
