// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/boox/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var _ ai.QueryExpander = (*QueryExpander)(nil)

// QueryExpander implements ai.QueryExpander using OpenAI-compatible chat APIs.
type QueryExpander struct {
	client llms.Model
	config *ai.Config
	logger *slog.Logger
}

func newQueryExpander(config *ai.Config) (*QueryExpander, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ExpanderHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.ExpanderModel),
	)
	if err != nil {
		return nil, err
	}
	return newQueryExpanderWithModel(client, config), nil
}

func newQueryExpanderWithModel(client llms.Model, config *ai.Config) *QueryExpander {
	return &QueryExpander{
		client: client,
		config: config,
		logger: slog.Default().With("component", "openai-expander"),
	}
}

// NewQueryExpander creates a new query expander using the provided configuration.
func NewQueryExpander(config *ai.Config) (ai.QueryExpander, error) {
	return newQueryExpander(config)
}

// ExpandQuery asks the model for related search terms and returns the
// original query followed by them. A model reply with no usable terms leaves
// the query unchanged.
func (e *QueryExpander) ExpandQuery(ctx context.Context, query string) (string, error) {
	cleaned := scrubString(query)
	if cleaned == "" {
		return query, nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(cleaned)},
		},
	}

	terms, err := ai.Retry(ctx, e.config.MaxRetries, e.config.RetryDelay, func(ctx context.Context) ([]string, error) {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
		if err != nil {
			e.logger.Warn("failed to generate content", "err", err)
			return nil, err
		}
		if len(response.Choices) < 1 {
			return nil, ai.ErrEmptyExpansion
		}
		return parseExpansion(response.Choices[0].Content), nil
	})
	if err != nil {
		e.logger.Error("query expansion failed", "query", query, "err", err)
		return "", err
	}

	expanded := mergeTerms(query, terms)
	e.logger.Debug("expanded query", "query", query, "expanded", expanded)
	return expanded, nil
}
