package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/boox/ai"
	"github.com/poiesic/boox/ai/mock"
	"github.com/poiesic/boox/core"
)

// axisEmbedder maps known texts onto fixed vectors.
func axisEmbedder(vectors map[string][]float32) *mock.MockEmbedder {
	m := mock.NewMockEmbedder()
	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if v, ok := vectors[text]; ok {
			return v, nil
		}
		return []float32{0, 0, 1}, nil
	}
	return m
}

func TestSemanticMatcher_Coefficient(t *testing.T) {
	embedder := axisEmbedder(map[string][]float32{
		"cats":           {1, 0, 0},
		"all about cats": {1, 0, 0},
		"mostly cats":    {1, 1, 0},
	})
	matcher := ai.NewSemanticMatcher(embedder, []string{"content"}, 0.5)
	ctx := context.Background()

	got, err := matcher.Coefficient(ctx, nil, "cats", core.Attributes{"content": "all about cats"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-9)

	got, err = matcher.Coefficient(ctx, nil, "cats", core.Attributes{"content": "mostly cats"})
	require.NoError(t, err)
	assert.InDelta(t, 0.7071, got, 1e-4)

	got, err = matcher.Coefficient(ctx, nil, "cats", core.Attributes{"content": "dogs"})
	require.NoError(t, err)
	assert.Zero(t, got, "orthogonal vectors fall below the threshold")

	got, err = matcher.Coefficient(ctx, nil, "cats", core.Attributes{"title": "cats"})
	require.NoError(t, err)
	assert.Zero(t, got, "documents without the field rate 0")
}

func TestSemanticMatcher_CachesEmbeddings(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	matcher := ai.NewSemanticMatcher(embedder, nil, 0)
	attrs := core.Attributes{"title": "Hello", "body": "world", "year": 2001}

	for i := 0; i < 3; i++ {
		_, err := matcher.Coefficient(context.Background(), nil, "hello", attrs)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, embedder.CallCount())
}

func TestSemanticMatcher_AllStringFields(t *testing.T) {
	var seen []string
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		seen = append(seen, text)
		return []float32{1, 0}, nil
	}
	matcher := ai.NewSemanticMatcher(embedder, nil, 0)

	_, err := matcher.Coefficient(context.Background(), nil, "q", core.Attributes{"title": "T", "body": "B", "n": 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"q", "B\nT"}, seen)
}

func TestSemanticMatcher_Errors(t *testing.T) {
	_, err := ai.NewSemanticMatcher(nil, nil, 0).Coefficient(context.Background(), nil, "q", core.Attributes{"a": "b"})
	assert.ErrorIs(t, err, ai.ErrEmbedderRequired)

	boom := errors.New("boom")
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	}
	_, err = ai.NewSemanticMatcher(embedder, nil, 0).Coefficient(context.Background(), nil, "q", core.Attributes{"a": "b"})
	assert.ErrorIs(t, err, boom)

	mismatched := axisEmbedder(map[string][]float32{"q": {1, 0}})
	_, err = ai.NewSemanticMatcher(mismatched, nil, 0).Coefficient(context.Background(), nil, "q", core.Attributes{"a": "b"})
	assert.ErrorIs(t, err, ai.ErrDimensionMismatch)
}
