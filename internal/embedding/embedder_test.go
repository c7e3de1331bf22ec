package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinechat/internal/config"
)

func TestNew(t *testing.T) {
	cfg := &config.AppConfig{}
	cfg.OpenAI.APIKey = "sk-test"

	cfg.Embedder.Type = "tfidf"
	e, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "tfidf", e.Name())

	cfg.Embedder.Type = "openai"
	e, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", e.Name())

	cfg.Embedder.Type = "word2vec"
	_, err = New(cfg)
	require.Error(t, err)
}
