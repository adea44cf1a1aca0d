package mock

import (
	"context"
	"hash/fnv"
	"sync/atomic"

	"github.com/poiesic/boox/ai"
)

// DefaultDimensions is the length of vectors produced by MockEmbedder.
const DefaultDimensions = 64

var _ ai.Embedder = (*MockEmbedder)(nil)

// MockEmbedder is a test double for ai.Embedder.
// Function fields replace the default deterministic behavior when set.
type MockEmbedder struct {
	EmbedTextFunc  func(ctx context.Context, text string) ([]float32, error)
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	calls atomic.Int64
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText returns a unit vector derived from a hash of text.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return DeterministicVector(text, DefaultDimensions), nil
}

// EmbedTexts embeds each text like EmbedText; it counts as a single call.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls.Add(1)
	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = DeterministicVector(text, DefaultDimensions)
	}
	return out, nil
}

// CallCount returns the number of embedding calls made so far.
func (m *MockEmbedder) CallCount() int {
	return int(m.calls.Load())
}

// Reset clears the call count and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.calls.Store(0)
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// DeterministicVector creates a unit vector from text. Equal texts always
// produce equal vectors.
func DeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := range vector {
		seed = seed*1664525 + 1013904223
		vector[i] = float32(seed%1000)/1000.0 + 0.001
	}
	return ai.NormalizeVector(vector)
}
