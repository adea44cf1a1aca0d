package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.ExpanderHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:3b", cfg.ExpanderModel)
	assert.Equal(t, "none", cfg.Token)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryDelay)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		assert.Equal(t, DefaultConfig(), NewConfig())
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.ExpanderHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithExpanderHost("http://chat:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://chat:9090/v1", cfg.ExpanderHost)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithHost("http://custom:8080/v1"),
			WithEmbeddingModel("custom-embed"),
			WithExpanderModel("custom-chat"),
			WithToken("sk-test"),
			WithRetry(5, 10*time.Millisecond),
		)

		assert.Equal(t, "custom-embed", cfg.EmbeddingModel)
		assert.Equal(t, "custom-chat", cfg.ExpanderModel)
		assert.Equal(t, "sk-test", cfg.Token)
		assert.Equal(t, 5, cfg.MaxRetries)
		assert.Equal(t, 10*time.Millisecond, cfg.RetryDelay)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name             string
		embeddingHost    string
		expanderHost     string
		expectedEmbedder string
		expectedExpander string
	}{
		{
			name:             "already has /v1",
			embeddingHost:    "http://localhost:11434/v1",
			expanderHost:     "http://localhost:11434/v1",
			expectedEmbedder: "http://localhost:11434/v1",
			expectedExpander: "http://localhost:11434/v1",
		},
		{
			name:             "missing /v1",
			embeddingHost:    "http://localhost:11434",
			expanderHost:     "http://localhost:11434",
			expectedEmbedder: "http://localhost:11434/v1",
			expectedExpander: "http://localhost:11434/v1",
		},
		{
			name:             "has trailing slash",
			embeddingHost:    "http://localhost:11434/",
			expanderHost:     "http://localhost:11434/",
			expectedEmbedder: "http://localhost:11434/v1",
			expectedExpander: "http://localhost:11434/v1",
		},
		{
			name:             "empty hosts",
			expectedEmbedder: "",
			expectedExpander: "",
		},
		{
			name:             "different formats",
			embeddingHost:    "http://embed:8080",
			expanderHost:     "http://chat:9090/v1",
			expectedEmbedder: "http://embed:8080/v1",
			expectedExpander: "http://chat:9090/v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				EmbeddingHost: tt.embeddingHost,
				ExpanderHost:  tt.expanderHost,
			}

			cfg.Normalize()

			assert.Equal(t, tt.expectedEmbedder, cfg.EmbeddingHost)
			assert.Equal(t, tt.expectedExpander, cfg.ExpanderHost)
			assert.Equal(t, "none", cfg.Token)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost, "validate normalizes")
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = "" }, "EmbeddingHost is required"},
		{"missing expander host", func(c *Config) { c.ExpanderHost = "" }, "ExpanderHost is required"},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel is required"},
		{"missing expander model", func(c *Config) { c.ExpanderModel = "" }, "ExpanderModel is required"},
		{"no retries", func(c *Config) { c.MaxRetries = 0 }, "MaxRetries must be at least 1"},
		{"negative delay", func(c *Config) { c.RetryDelay = -time.Second }, "RetryDelay cannot be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
