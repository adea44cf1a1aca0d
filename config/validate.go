package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/poiesic/boox/analysis"
	"github.com/poiesic/boox/core"
)

// Validate reports every problem in the configuration at once.
// Each problem wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	var result *multierror.Error
	add := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if err := core.ValidateConfig(c.Dataset.Core()); err != nil {
		add("dataset: %w", err)
	}

	if _, err := analysis.LookupNormalizers(c.Analysis.Normalizers); err != nil {
		add("analysis.normalizers: %w", err)
	}
	if _, err := analysis.LookupTokenizer(c.Analysis.Tokenizer); err != nil {
		add("analysis.tokenizer: %w", err)
	}
	if _, err := analysis.LookupStemmer(c.Analysis.Stemmer); err != nil {
		add("analysis.stemmer: %w", err)
	}
	if _, err := analysis.LookupPhonetic(c.Analysis.Phonetic); err != nil {
		add("analysis.phonetic: %w", err)
	}

	if c.Search.Limit < 0 {
		add("search.limit cannot be negative")
	}
	if c.Search.PerPage < 0 {
		add("search.perPage cannot be negative")
	}
	if c.Search.HistorySize < 0 {
		add("search.historySize cannot be negative")
	}
	if (c.Search.HighlightOpen == "") != (c.Search.HighlightClose == "") {
		add("search.highlightOpen and search.highlightClose must be set together")
	}
	if c.Ingestion.PoolSize < 0 {
		add("ingestion.poolSize cannot be negative")
	}
	if c.Ingestion.BatchSize < 0 {
		add("ingestion.batchSize cannot be negative")
	}

	if c.AI.Enabled() {
		if err := c.AI.Provider().Validate(); err != nil {
			add("%w", err)
		}
		if c.AI.MinSimilarity < -1 || c.AI.MinSimilarity > 1 {
			add("ai.minSimilarity must be between -1 and 1")
		}
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		add("logging.level: %w", err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		add("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return result.ErrorOrNil()
}

// SlogLevel parses the configured level; empty means info.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}
