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


// Package config loads boox settings from a YAML file with environment
// variable overrides, validates them and turns them into engine, encoder and
// AI provider options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/boox/ai"
	"github.com/poiesic/boox/analysis"
	"github.com/poiesic/boox/core"
)

// DefaultFileName is the configuration file looked up when none is named.
const DefaultFileName = "boox.yaml"

// envPrefix starts every environment override.
const envPrefix = "BOOX_"

// Config is the top-level boox configuration.
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Search    SearchConfig    `yaml:"search"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	AI        AIConfig        `yaml:"ai"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatasetConfig selects the identifier, indexed and copied fields of a dataset.
type DatasetConfig struct {
	ID         string   `yaml:"id"`
	Features   []string `yaml:"features"`
	Attributes []string `yaml:"attributes"`
}

// AnalysisConfig names the encoder strategies; see package analysis for the
// accepted names.
type AnalysisConfig struct {
	Normalizers []string `yaml:"normalizers"`
	Tokenizer   string   `yaml:"tokenizer"`
	StopWords   bool     `yaml:"stopWords"`
	Stemmer     string   `yaml:"stemmer"`
	Phonetic    string   `yaml:"phonetic"`
}

// SearchConfig holds per-query defaults.
type SearchConfig struct {
	Limit          int    `yaml:"limit"`
	PerPage        int    `yaml:"perPage"`
	HistorySize    int    `yaml:"historySize"`
	HighlightOpen  string `yaml:"highlightOpen"`
	HighlightClose string `yaml:"highlightClose"`
	UseQueryVector bool   `yaml:"useQueryVector"`
}

// IngestionConfig sizes asynchronous ingestion. Zero keeps the engine defaults.
type IngestionConfig struct {
	PoolSize  int `yaml:"poolSize"`
	BatchSize int `yaml:"batchSize"`
}

// AIConfig configures the optional query expander and semantic matcher.
type AIConfig struct {
	Host             string        `yaml:"host"`
	Model            string        `yaml:"model"`
	EmbeddingModel   string        `yaml:"embeddingModel"`
	Token            string        `yaml:"token"`
	MaxRetries       int           `yaml:"maxRetries"`
	RetryDelay       time.Duration `yaml:"retryDelay"`
	ExpandQueries    bool          `yaml:"expandQueries"`
	SemanticMatching bool          `yaml:"semanticMatching"`
	SemanticFields   []string      `yaml:"semanticFields"`
	MinSimilarity    float64       `yaml:"minSimilarity"`
}

// Enabled reports whether any AI feature is switched on.
func (a AIConfig) Enabled() bool {
	return a.ExpandQueries || a.SemanticMatching
}

// LoggingConfig controls log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Dataset: DatasetConfig{
			ID:         core.DefaultIDField,
			Features:   []string{},
			Attributes: []string{},
		},
		Analysis: AnalysisConfig{
			Normalizers: []string{analysis.NFKCName},
			Tokenizer:   analysis.Word,
			Stemmer:     analysis.None,
			Phonetic:    analysis.None,
		},
		Search: SearchConfig{
			PerPage: 10,
		},
		AI: AIConfig{
			Host:           "http://localhost:11434",
			Model:          aiDefaults.ExpanderModel,
			EmbeddingModel: aiDefaults.EmbeddingModel,
			Token:          aiDefaults.Token,
			MaxRetries:     aiDefaults.MaxRetries,
			RetryDelay:     aiDefaults.RetryDelay,
			MinSimilarity:  0.5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file (if provided) over the defaults and applies
// environment-variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFrom loads rcname (DefaultFileName when empty) from the directory cwd
// (the working directory when empty). A missing file yields the defaults.
func LoadFrom(cwd, rcname string) (*Config, error) {
	path := Path(cwd, rcname)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Load("")
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Load(path)
}

// Path joins cwd and rcname, applying their defaults.
func Path(cwd, rcname string) string {
	if rcname == "" {
		rcname = DefaultFileName
	}
	if filepath.IsAbs(rcname) {
		return rcname
	}
	if cwd == "" {
		cwd = "."
	}
	return filepath.Join(cwd, rcname)
}

// applyEnvOverrides reads BOOX_* environment variables and overrides the
// corresponding config fields. Unparseable numbers and booleans are ignored.
func applyEnvOverrides(cfg *Config) {
	if v := getenv("DATASET_ID"); v != "" {
		cfg.Dataset.ID = v
	}
	if v := getenv("DATASET_FEATURES"); v != "" {
		cfg.Dataset.Features = splitList(v)
	}
	if v := getenv("DATASET_ATTRIBUTES"); v != "" {
		cfg.Dataset.Attributes = splitList(v)
	}
	if v := getenv("ANALYSIS_NORMALIZERS"); v != "" {
		cfg.Analysis.Normalizers = splitList(v)
	}
	if v := getenv("ANALYSIS_TOKENIZER"); v != "" {
		cfg.Analysis.Tokenizer = v
	}
	envBool("ANALYSIS_STOPWORDS", &cfg.Analysis.StopWords)
	if v := getenv("ANALYSIS_STEMMER"); v != "" {
		cfg.Analysis.Stemmer = v
	}
	if v := getenv("ANALYSIS_PHONETIC"); v != "" {
		cfg.Analysis.Phonetic = v
	}
	envInt("SEARCH_LIMIT", &cfg.Search.Limit)
	envInt("SEARCH_PERPAGE", &cfg.Search.PerPage)
	envInt("SEARCH_HISTORYSIZE", &cfg.Search.HistorySize)
	envBool("SEARCH_USEQUERYVECTOR", &cfg.Search.UseQueryVector)
	envInt("INGESTION_POOLSIZE", &cfg.Ingestion.PoolSize)
	envInt("INGESTION_BATCHSIZE", &cfg.Ingestion.BatchSize)
	if v := getenv("AI_HOST"); v != "" {
		cfg.AI.Host = v
	}
	if v := getenv("AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := getenv("AI_EMBEDDINGMODEL"); v != "" {
		cfg.AI.EmbeddingModel = v
	}
	if v := getenv("AI_TOKEN"); v != "" {
		cfg.AI.Token = v
	}
	envInt("AI_MAXRETRIES", &cfg.AI.MaxRetries)
	if v := getenv("AI_RETRYDELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AI.RetryDelay = d
		}
	}
	envBool("AI_EXPANDQUERIES", &cfg.AI.ExpandQueries)
	envBool("AI_SEMANTICMATCHING", &cfg.AI.SemanticMatching)
	if v := getenv("LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := getenv("LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func getenv(name string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + name))
}

func envInt(name string, dst *int) {
	if v := getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(name string, dst *bool) {
	if v := getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
