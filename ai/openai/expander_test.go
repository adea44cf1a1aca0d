package openai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/poiesic/boox/ai"
)

// scriptedModel replays canned replies, one per GenerateContent call.
type scriptedModel struct {
	replies  []string
	errs     []error
	calls    int
	messages []llms.MessageContent
}

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	i := m.calls
	m.calls++
	m.messages = messages
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i >= len(m.replies) {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.replies[i]}}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func testConfig() *ai.Config {
	return ai.NewConfig(ai.WithRetry(3, time.Millisecond))
}

func TestExpandQuery(t *testing.T) {
	model := &scriptedModel{replies: []string{"automobile, Mechanic, car, garage"}}
	e := newQueryExpanderWithModel(model, testConfig())

	got, err := e.ExpandQuery(context.Background(), "car repair!")
	require.NoError(t, err)
	assert.Equal(t, "car repair! automobile mechanic garage", got)
	assert.Equal(t, 1, model.calls)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.TextPart("car repair"), model.messages[1].Parts[0])
}

func TestExpandQuery_RetriesFailures(t *testing.T) {
	model := &scriptedModel{
		errs:    []error{errors.New("unavailable"), nil},
		replies: []string{"", "joyful"},
	}
	e := newQueryExpanderWithModel(model, testConfig())

	got, err := e.ExpandQuery(context.Background(), "happy")
	require.NoError(t, err)
	assert.Equal(t, "happy joyful", got)
	assert.Equal(t, 2, model.calls)
}

func TestExpandQuery_NoChoices(t *testing.T) {
	model := &scriptedModel{}
	e := newQueryExpanderWithModel(model, testConfig())

	_, err := e.ExpandQuery(context.Background(), "happy")
	assert.ErrorIs(t, err, ai.ErrEmptyExpansion)
	assert.Equal(t, 3, model.calls)
}

func TestExpandQuery_EmptyReplyKeepsQuery(t *testing.T) {
	model := &scriptedModel{replies: []string{"   "}}
	e := newQueryExpanderWithModel(model, testConfig())

	got, err := e.ExpandQuery(context.Background(), "zebra")
	require.NoError(t, err)
	assert.Equal(t, "zebra", got)
}

func TestExpandQuery_PunctuationOnlySkipsModel(t *testing.T) {
	model := &scriptedModel{}
	e := newQueryExpanderWithModel(model, testConfig())

	got, err := e.ExpandQuery(context.Background(), "?!")
	require.NoError(t, err)
	assert.Equal(t, "?!", got)
	assert.Zero(t, model.calls)
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := buildSystemPrompt()
	assert.Contains(t, prompt, "up to 5 words")
	assert.NotContains(t, prompt, "%")
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	cfg := ai.NewConfig(ai.WithEmbeddingModel(""))
	_, err := NewProvider(cfg)
	assert.Error(t, err)
}

func TestNewProvider_Defaults(t *testing.T) {
	p, err := NewProvider(nil)
	require.NoError(t, err)
	defer p.Close()

	assert.NotNil(t, p.Embedder())
	assert.NotNil(t, p.QueryExpander())
}
