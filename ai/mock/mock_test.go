package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	a, err := m.EmbedText(ctx, "hello")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "hello")
	require.NoError(t, err)
	c, err := m.EmbedText(ctx, "goodbye")
	require.NoError(t, err)

	assert.Len(t, a, DefaultDimensions)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 3, m.CallCount())
}

func TestMockEmbedder_EmbedTexts(t *testing.T) {
	m := NewMockEmbedder()
	out, err := m.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, DeterministicVector("a", DefaultDimensions), out[0])
	assert.Equal(t, 1, m.CallCount())
}

func TestMockEmbedder_Injection(t *testing.T) {
	m := NewMockEmbedder()
	boom := errors.New("boom")
	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	}
	_, err := m.EmbedText(context.Background(), "x")
	assert.ErrorIs(t, err, boom)

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	_, err = m.EmbedText(context.Background(), "x")
	assert.NoError(t, err)
}

func TestMockQueryExpander(t *testing.T) {
	m := NewMockQueryExpander(map[string][]string{"car": {"automobile", "vehicle"}})

	out, err := m.ExpandQuery(context.Background(), "red Car")
	require.NoError(t, err)
	assert.Equal(t, "red Car automobile vehicle", out)

	out, err = m.ExpandQuery(context.Background(), "boat")
	require.NoError(t, err)
	assert.Equal(t, "boat", out)
	assert.Equal(t, 2, m.CallCount())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.ExpandQuery(ctx, "car")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockProvider(t *testing.T) {
	p := NewMockProviderWithServices(NewMockEmbedder(), NewMockQueryExpander(nil))
	assert.Same(t, p.GetMockEmbedder(), p.Embedder())
	assert.Same(t, p.GetMockExpander(), p.QueryExpander())
	require.NoError(t, p.Close())
	assert.True(t, p.Closed())

	assert.NotNil(t, NewMockProvider().Embedder())
}
