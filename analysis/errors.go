package analysis

import "errors"

var (
	// ErrUnknownNormalizer indicates a normalizer name with no implementation.
	ErrUnknownNormalizer = errors.New("unknown normalizer")

	// ErrUnknownTokenizer indicates a tokenizer name with no implementation.
	ErrUnknownTokenizer = errors.New("unknown tokenizer")

	// ErrUnknownStemmer indicates a stemmer name with no implementation.
	ErrUnknownStemmer = errors.New("unknown stemmer")

	// ErrUnknownPhonetic indicates a phonetic algorithm name with no implementation.
	ErrUnknownPhonetic = errors.New("unknown phonetic algorithm")
)
