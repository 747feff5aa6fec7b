package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("QDRANT_HOST", "")
	t.Setenv("QDRANT_PORT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Agent.MaxRewrites)
	assert.Equal(t, 4, cfg.Agent.TopK)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, "openai", cfg.LLM.Provider)
}

func TestLoad_AppliesDefaultsAndEnv(t *testing.T) {
	t.Setenv("QDRANT_HOST", "qdrant.internal")
	t.Setenv("QDRANT_PORT", "7000")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
embedder:
  type: openai
vector_store:
  type: qdrant
llm:
  provider: anthropic
  model: claude-3-5-sonnet-latest
agent:
  max_rewrites: 3
  top_k: 5
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Embedder.OpenAI)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	require.NotNil(t, cfg.VectorStore.Qdrant)
	assert.Equal(t, "school_books", cfg.VectorStore.Qdrant.Collection)
	assert.Equal(t, "http://qdrant.internal:7000", cfg.VectorStore.Qdrant.URL)
	assert.Equal(t, "ANTHROPIC_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, 3, cfg.Agent.MaxRewrites)
	assert.Equal(t, 5, cfg.Agent.TopK)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *AppConfig) {}},
		{name: "zero rewrites allowed", mutate: func(c *AppConfig) { c.Agent.MaxRewrites = 0 }},
		{name: "negative rewrites", mutate: func(c *AppConfig) { c.Agent.MaxRewrites = -1 }, wantErr: true},
		{name: "zero top k", mutate: func(c *AppConfig) { c.Agent.TopK = 0 }, wantErr: true},
		{name: "unknown provider", mutate: func(c *AppConfig) { c.LLM.Provider = "bard" }, wantErr: true},
		{name: "qdrant without collection", mutate: func(c *AppConfig) {
			c.VectorStore.Type = "qdrant"
			c.VectorStore.Qdrant = &QdrantConfig{URL: "http://localhost:6333"}
		}, wantErr: true},
		{name: "qdrant with tfidf", mutate: func(c *AppConfig) {
			c.VectorStore.Type = "qdrant"
			c.VectorStore.Qdrant = &QdrantConfig{URL: "http://localhost:6333", Collection: "school_books"}
		}, wantErr: true},
		{name: "qdrant with openai embedder", mutate: func(c *AppConfig) {
			c.Embedder.Type = "openai"
			c.VectorStore.Type = "qdrant"
			c.VectorStore.Qdrant = &QdrantConfig{URL: "http://localhost:6333", Collection: "school_books"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv("QDRANT_HOST", "")
	t.Setenv("QDRANT_PORT", "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Agent.MaxRewrites = 1

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Agent.MaxRewrites)
}
