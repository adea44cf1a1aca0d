// Package mock provides test doubles for the ai service interfaces.
//
// The mocks run without any model server and behave deterministically:
//
//   - MockEmbedder returns unit vectors derived from a hash of the text
//   - MockQueryExpander appends synonyms from a fixed table
//   - MockProvider bundles both
//
// Function fields on each mock replace the default behavior:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//		return []float32{1, 0, 0}, nil
//	}
package mock
