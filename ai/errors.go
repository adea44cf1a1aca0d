package ai

import "errors"

var (
	// ErrInvalidMaxAttempts indicates maxAttempts must be greater than 0.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmbedderRequired indicates a semantic matcher was built without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrDimensionMismatch indicates two vectors of different lengths were compared.
	ErrDimensionMismatch = errors.New("vector dimensions differ")

	// ErrEmptyExpansion indicates the model returned no usable query text.
	ErrEmptyExpansion = errors.New("query expansion returned no text")
)
