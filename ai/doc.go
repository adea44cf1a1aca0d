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

// Package ai provides abstractions for the AI services boox can use around
// search: query expansion by a chat model and text embeddings for semantic
// matching coefficients.
//
// # Implementation Packages
//
//   - openai: OpenAI-compatible services (OpenAI, Ollama, LocalAI, vLLM)
//     through langchaingo.
//   - mock: deterministic test doubles.
//
// Public constructors in openai return interface types; mock constructors
// return concrete types so tests can inject behavior and assert call counts.
//
// # Usage Example
//
//	provider, err := openai.NewProvider(ai.NewConfig(ai.WithHost("http://localhost:11434")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	matcher := ai.NewSemanticMatcher(provider.Embedder(), []string{"content"}, 0.5)
//	results, err := engine.Search(ctx, "big cats", &boox.SearchOptions{
//	    QueryExpander:       provider.QueryExpander().ExpandQuery,
//	    MatchingCoefficient: matcher.Coefficient,
//	})
package ai
