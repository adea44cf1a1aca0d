// Package encoder turns text into the phonetic codes the index is keyed by.
//
// An Encoder runs four injected strategies in order: a normalizer applied
// after lower-casing, a tokenizer, an optional stemmer, and an optional
// phonetic function. Only the documented fallbacks are built in: identity
// normalization, an ASCII word tokenizer, and no stemming or phonetic coding.
// Concrete strategies live in package analysis.
//
// Tokens containing digits bypass phonetic coding so numeric data keeps its
// literal form:
//
//	enc := encoder.New(encoder.WithPhonetic(strings.ToUpper))
//	enc.Encode("hello 123 world3") // [HELLO 123 world3]
package encoder
