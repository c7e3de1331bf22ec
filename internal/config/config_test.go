package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setKeys(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TMDB_API_KEY", "tmdb-test")
	t.Setenv("PORT", "")
	t.Setenv("CINECHAT_CATALOG", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	setKeys(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "CineChatCSV_cleaned_new.csv", cfg.Catalog.Path)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, "gpt-4", cfg.OpenAI.ChatModel)
	assert.InDelta(t, 0.7, cfg.OpenAI.Temperature, 1e-6)
	assert.Equal(t, 4, cfg.Retriever.TopK)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/", cfg.TMDB.PosterBaseURL)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "tmdb-test", cfg.TMDB.APIKey)
}

func TestLoad_MissingSecret(t *testing.T) {
	setKeys(t)
	t.Setenv("TMDB_API_KEY", "")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TMDB_API_KEY")
}

func TestLoad_EnvOverrides(t *testing.T) {
	setKeys(t)
	t.Setenv("PORT", "8080")
	t.Setenv("CINECHAT_CATALOG", "/data/movies.csv")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/data/movies.csv", cfg.Catalog.Path)
}

func TestLoad_InvalidPort(t *testing.T) {
	setKeys(t)
	t.Setenv("PORT", "http")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_YAMLFile(t *testing.T) {
	setKeys(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
vector_store:
  type: qdrant
  qdrant:
    url: http://localhost:6333
retriever:
  top_k: 6
embedder:
  type: tfidf
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "qdrant", cfg.VectorStore.Type)
	require.NotNil(t, cfg.VectorStore.Qdrant)
	assert.Equal(t, "movies", cfg.VectorStore.Qdrant.Collection)
	assert.Equal(t, 15, cfg.VectorStore.Qdrant.TimeoutSecs)
	assert.Equal(t, 6, cfg.Retriever.TopK)
	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, 32, cfg.Embedder.BatchSize)
}

func TestLoad_RejectsUnknownStore(t *testing.T) {
	setKeys(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vector_store:\n  type: chroma\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_PGVectorRequiresSection(t *testing.T) {
	setKeys(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vector_store:\n  type: pgvector\n"), 0o644))

	_, err := Load(path)
	require.EqualError(t, err, "pgvector config missing")
}

func TestSave_RoundTrip(t *testing.T) {
	setKeys(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Server.Port = 9000
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, loaded.Server.Port)
}
