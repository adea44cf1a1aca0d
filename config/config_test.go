package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/boox"
	"github.com/poiesic/boox/analysis"
	"github.com/poiesic/boox/core"
	"github.com/poiesic/boox/encoder"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, core.DefaultIDField, cfg.Dataset.ID)
	assert.Equal(t, []string{analysis.NFKCName}, cfg.Analysis.Normalizers)
	assert.Equal(t, analysis.Word, cfg.Analysis.Tokenizer)
	assert.Equal(t, 10, cfg.Search.PerPage)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 3, cfg.AI.MaxRetries)
	assert.Equal(t, time.Second, cfg.AI.RetryDelay)
	assert.False(t, cfg.AI.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "boox.yaml", `
dataset:
  id: slug
  features: [title, body]
  attributes: [year]
analysis:
  normalizers: [html, nfkc]
  tokenizer: uax29
  stopWords: true
  stemmer: snowball
  phonetic: soundex
search:
  limit: 25
  highlightOpen: "<b>"
  highlightClose: "</b>"
ai:
  expandQueries: true
  retryDelay: 250ms
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "slug", cfg.Dataset.ID)
	assert.Equal(t, []string{"title", "body"}, cfg.Dataset.Features)
	assert.Equal(t, []string{"year"}, cfg.Dataset.Attributes)
	assert.Equal(t, []string{"html", "nfkc"}, cfg.Analysis.Normalizers)
	assert.True(t, cfg.Analysis.StopWords)
	assert.Equal(t, 25, cfg.Search.Limit)
	assert.Equal(t, 10, cfg.Search.PerPage, "unset values keep their defaults")
	assert.Equal(t, 250*time.Millisecond, cfg.AI.RetryDelay)
	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeConfig(t, t.TempDir(), "bad.yaml", "dataset: [1, 2")
	_, err = Load(path)
	assert.ErrorContains(t, err, "parsing config file")
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFrom(dir, "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	writeConfig(t, dir, "custom.yaml", "dataset:\n  features: [text]\n")
	cfg, err = LoadFrom(dir, "custom.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"text"}, cfg.Dataset.Features)
}

func TestPath(t *testing.T) {
	assert.Equal(t, DefaultFileName, Path("", ""))
	assert.Equal(t, filepath.Join("dir", "x.yaml"), Path("dir", "x.yaml"))
	assert.Equal(t, "/etc/boox.yaml", Path("dir", "/etc/boox.yaml"))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BOOX_DATASET_FEATURES", "title, body,")
	t.Setenv("BOOX_ANALYSIS_PHONETIC", "soundex")
	t.Setenv("BOOX_ANALYSIS_STOPWORDS", "true")
	t.Setenv("BOOX_SEARCH_LIMIT", "5")
	t.Setenv("BOOX_SEARCH_PERPAGE", "not-a-number")
	t.Setenv("BOOX_AI_RETRYDELAY", "2s")
	t.Setenv("BOOX_AI_EXPANDQUERIES", "1")
	t.Setenv("BOOX_LOGGING_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "body"}, cfg.Dataset.Features)
	assert.Equal(t, "soundex", cfg.Analysis.Phonetic)
	assert.True(t, cfg.Analysis.StopWords)
	assert.Equal(t, 5, cfg.Search.Limit)
	assert.Equal(t, 10, cfg.Search.PerPage)
	assert.Equal(t, 2*time.Second, cfg.AI.RetryDelay)
	assert.True(t, cfg.AI.ExpandQueries)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "boox.yaml", "dataset:\n  id: slug\n")
	t.Setenv("BOOX_DATASET_ID", "uuid")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "uuid", cfg.Dataset.ID)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Dataset.Features = []string{"title", "title"}
	cfg.Analysis.Tokenizer = "bogus"
	cfg.Analysis.Phonetic = "metaphone"
	cfg.Search.Limit = -1
	cfg.Search.HighlightOpen = "<b>"
	cfg.Ingestion.BatchSize = -3
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, core.ErrDuplicateField)
	assert.ErrorIs(t, err, analysis.ErrUnknownTokenizer)
	assert.ErrorIs(t, err, analysis.ErrUnknownPhonetic)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 8)
}

func TestValidate_AI(t *testing.T) {
	cfg := Default()
	cfg.AI.Model = ""
	assert.NoError(t, cfg.Validate(), "ai settings are ignored while disabled")

	cfg.AI.SemanticMatching = true
	assert.ErrorContains(t, cfg.Validate(), "ExpanderModel is required")

	cfg = Default()
	cfg.AI.SemanticMatching = true
	cfg.AI.MinSimilarity = 2
	assert.ErrorContains(t, cfg.Validate(), "ai.minSimilarity")
}

func TestSlogLevel(t *testing.T) {
	for level, want := range map[string]string{"": "INFO", "debug": "DEBUG", "WARN": "WARN", "error": "ERROR"} {
		got, err := LoggingConfig{Level: level}.SlogLevel()
		require.NoError(t, err, level)
		assert.Equal(t, want, got.String())
	}
	_, err := LoggingConfig{Level: "loud"}.SlogLevel()
	assert.Error(t, err)
}

func TestBuildEncoderOptions(t *testing.T) {
	a := AnalysisConfig{
		Normalizers: []string{"nfkc"},
		Tokenizer:   "word",
		StopWords:   true,
		Stemmer:     "snowball",
		Phonetic:    "soundex",
	}
	opts, err := a.BuildEncoderOptions()
	require.NoError(t, err)

	enc := encoder.New(opts...)
	assert.Equal(t, []string{"R163", "R500"}, enc.Encode(enc.Normalize("The Robert running")))

	_, err = AnalysisConfig{Stemmer: "porter2000"}.BuildEncoderOptions()
	assert.ErrorIs(t, err, analysis.ErrUnknownStemmer)
}

func TestBuildEncoderOptionsDoubleMetaphone(t *testing.T) {
	opts, err := AnalysisConfig{Phonetic: "doublemetaphone"}.BuildEncoderOptions()
	require.NoError(t, err)

	enc := encoder.New(opts...)
	assert.Equal(t, []string{"SM0", "XMT", "7", "7"}, enc.Encode(enc.Normalize("Smith 7")))

	cfg := Default()
	cfg.Analysis.Phonetic = "doublemetaphone"
	assert.NoError(t, cfg.Validate())
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Dataset.Features = []string{"text"}
	cfg.Ingestion.PoolSize = 2
	cfg.Ingestion.BatchSize = 50
	cfg.Search.HistorySize = 5

	opts, err := cfg.EngineOptions(nil)
	require.NoError(t, err)
	assert.Len(t, opts, 5)

	engine, err := boox.New(cfg.Dataset.Core(), opts...)
	require.NoError(t, err)
	defer engine.Close()
	assert.Equal(t, "id", engine.Config().ID)
}

func TestSearchOptions(t *testing.T) {
	opts := SearchConfig{Limit: 3, UseQueryVector: true}.SearchOptions()
	assert.Equal(t, 3, opts.Limit)
	assert.True(t, opts.UseQueryVector)
	assert.Equal(t, [2]string{}, opts.HighlightTag)

	opts = SearchConfig{HighlightOpen: "[", HighlightClose: "]"}.SearchOptions()
	assert.Equal(t, [2]string{"[", "]"}, opts.HighlightTag)
}

func TestProvider(t *testing.T) {
	a := Default().AI
	a.Host = "http://models:8080"
	p := a.Provider()
	require.NoError(t, p.Validate())
	assert.Equal(t, "http://models:8080/v1", p.ExpanderHost)
	assert.Equal(t, "http://models:8080/v1", p.EmbeddingHost)
}
