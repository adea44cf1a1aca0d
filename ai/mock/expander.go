package mock

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/poiesic/boox/ai"
)

var _ ai.QueryExpander = (*MockQueryExpander)(nil)

// MockQueryExpander is a test double for ai.QueryExpander.
// By default it appends each configured synonym of a query word.
type MockQueryExpander struct {
	ExpandQueryFunc func(ctx context.Context, query string) (string, error)
	Synonyms        map[string][]string

	calls atomic.Int64
}

// NewMockQueryExpander creates an expander using the given synonym table.
func NewMockQueryExpander(synonyms map[string][]string) *MockQueryExpander {
	return &MockQueryExpander{Synonyms: synonyms}
}

// ExpandQuery returns query followed by the synonyms of its words.
func (m *MockQueryExpander) ExpandQuery(ctx context.Context, query string) (string, error) {
	m.calls.Add(1)
	if m.ExpandQueryFunc != nil {
		return m.ExpandQueryFunc(ctx, query)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	terms := []string{query}
	for _, word := range strings.Fields(strings.ToLower(query)) {
		terms = append(terms, m.Synonyms[word]...)
	}
	return strings.Join(terms, " "), nil
}

// CallCount returns the number of ExpandQuery calls made so far.
func (m *MockQueryExpander) CallCount() int {
	return int(m.calls.Load())
}
