package ai

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/boox/core"
	"github.com/poiesic/boox/encoder"
)

// maxCachedEmbeddings bounds a SemanticMatcher's embedding cache; the cache
// is dropped whole when it fills.
const maxCachedEmbeddings = 4096

// SemanticMatcher rates documents by the embedding similarity between the
// query and the document's text. Its Coefficient method is a matching
// coefficient for boox searches.
type SemanticMatcher struct {
	embedder      Embedder
	fields        []string
	minSimilarity float64

	mu    sync.RWMutex
	cache map[string][]float32
}

// NewSemanticMatcher creates a matcher embedding the given attribute fields,
// joined with newlines. No fields means every string attribute in key order.
// Similarities below minSimilarity rate 0.
func NewSemanticMatcher(embedder Embedder, fields []string, minSimilarity float64) *SemanticMatcher {
	return &SemanticMatcher{
		embedder:      embedder,
		fields:        append([]string(nil), fields...),
		minSimilarity: minSimilarity,
		cache:         make(map[string][]float32),
	}
}

// Coefficient returns the cosine similarity of query and document embeddings,
// or 0 when it is below the matcher's threshold or the document has no text.
func (m *SemanticMatcher) Coefficient(ctx context.Context, _ *encoder.Encoder, query string, attrs core.Attributes) (float64, error) {
	if m.embedder == nil {
		return 0, ErrEmbedderRequired
	}
	text := m.documentText(attrs)
	if text == "" || query == "" {
		return 0, nil
	}

	qv, err := m.embed(ctx, query)
	if err != nil {
		return 0, err
	}
	dv, err := m.embed(ctx, text)
	if err != nil {
		return 0, err
	}
	sim, err := CosineSimilarity(qv, dv)
	if err != nil {
		return 0, err
	}
	if sim < m.minSimilarity {
		return 0, nil
	}
	return sim, nil
}

func (m *SemanticMatcher) documentText(attrs core.Attributes) string {
	fields := m.fields
	if len(fields) == 0 {
		for k := range attrs {
			fields = append(fields, k)
		}
		sort.Strings(fields)
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if s, ok := attrs[f].(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func (m *SemanticMatcher) embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.RLock()
	v, ok := m.cache[text]
	m.mu.RUnlock()
	if ok {
		return v, nil
	}

	v, err := m.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if len(m.cache) >= maxCachedEmbeddings {
		m.cache = make(map[string][]float32)
	}
	m.cache[text] = v
	m.mu.Unlock()
	return v, nil
}
