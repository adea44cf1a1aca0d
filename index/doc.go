// Package index implements the inverted-index model behind the engine.
//
// Documents are indexed per field on the phonetic codes produced by an
// encoder.Encoder. Each (field, code, document) entry stores the term
// frequency of the code within that field; each document stores the L2 norm of
// its term frequencies. Inverse document frequency is computed on demand so it
// always reflects the corpus at query time.
//
// Training is split into Prepare, a pure computation that may run on any
// goroutine, and Apply, which writes into the model. A Model itself is not
// safe for concurrent use; callers serialize Apply, Remove and Restore against
// readers.
package index
