package config

import (
	"log/slog"

	"github.com/poiesic/boox"
	"github.com/poiesic/boox/ai"
	"github.com/poiesic/boox/analysis"
	"github.com/poiesic/boox/core"
	"github.com/poiesic/boox/encoder"
)

// Core returns the engine configuration of the dataset section.
func (d DatasetConfig) Core() core.Config {
	return core.Config{ID: d.ID, Features: d.Features, Attributes: d.Attributes}.Clone()
}

// BuildEncoderOptions maps the analysis section to encoder options.
func (a AnalysisConfig) BuildEncoderOptions() ([]encoder.Option, error) {
	normalizer, err := analysis.LookupNormalizers(a.Normalizers)
	if err != nil {
		return nil, err
	}
	tokenizer, err := analysis.LookupTokenizer(a.Tokenizer)
	if err != nil {
		return nil, err
	}
	stemmer, err := analysis.LookupStemmer(a.Stemmer)
	if err != nil {
		return nil, err
	}
	phonetic, err := analysis.LookupPhonetic(a.Phonetic)
	if err != nil {
		return nil, err
	}
	if a.StopWords {
		tokenizer = analysis.WithoutStopWords(tokenizer)
	}

	return []encoder.Option{
		encoder.WithNormalizer(normalizer),
		encoder.WithTokenizer(tokenizer),
		encoder.WithStemmer(stemmer),
		phonetic,
	}, nil
}

// EngineOptions returns the engine options for the analysis, search and
// ingestion sections. Zero sizes keep the engine defaults.
func (c *Config) EngineOptions(logger *slog.Logger) ([]boox.Option, error) {
	encOpts, err := c.Analysis.BuildEncoderOptions()
	if err != nil {
		return nil, err
	}

	opts := []boox.Option{
		boox.WithLogger(logger),
		boox.WithEncoderOptions(encOpts...),
	}
	if c.Ingestion.PoolSize > 0 {
		opts = append(opts, boox.WithPoolSize(c.Ingestion.PoolSize))
	}
	if c.Ingestion.BatchSize > 0 {
		opts = append(opts, boox.WithBatchSize(c.Ingestion.BatchSize))
	}
	if c.Search.HistorySize > 0 {
		opts = append(opts, boox.WithHistorySize(c.Search.HistorySize))
	}
	return opts, nil
}

// SearchOptions returns per-query options for the search section.
// Hooks are left for the caller to attach.
func (s SearchConfig) SearchOptions() *boox.SearchOptions {
	opts := &boox.SearchOptions{
		Limit:          s.Limit,
		UseQueryVector: s.UseQueryVector,
	}
	if s.HighlightOpen != "" || s.HighlightClose != "" {
		opts.HighlightTag = [2]string{s.HighlightOpen, s.HighlightClose}
	}
	return opts
}

// Provider returns the ai package configuration of the section.
func (a AIConfig) Provider() *ai.Config {
	return ai.NewConfig(
		ai.WithHost(a.Host),
		ai.WithExpanderModel(a.Model),
		ai.WithEmbeddingModel(a.EmbeddingModel),
		ai.WithToken(a.Token),
		ai.WithRetry(a.MaxRetries, a.RetryDelay),
	)
}
