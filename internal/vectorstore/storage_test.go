package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinechat/internal/config"
	"cinechat/internal/vectorstore/memory"
	"cinechat/internal/vectorstore/pgvector"
	"cinechat/internal/vectorstore/qdrant"
)

func TestNew(t *testing.T) {
	st, err := New(config.VectorStoreConfig{})
	require.NoError(t, err)
	assert.IsType(t, &memory.Storage{}, st)

	st, err = New(config.VectorStoreConfig{Type: "qdrant", Qdrant: &config.QdrantConfig{URL: "http://localhost:6333", Collection: "movies"}})
	require.NoError(t, err)
	assert.IsType(t, &qdrant.Storage{}, st)

	// sql.Open does not dial, so no database is needed here
	st, err = New(config.VectorStoreConfig{Type: "pgvector", PGVector: &config.PGVectorConfig{DSN: "postgres://localhost/cinechat?sslmode=disable", Table: "movies"}})
	require.NoError(t, err)
	assert.IsType(t, &pgvector.Storage{}, st)
	assert.NoError(t, st.Close())
}

func TestNew_Errors(t *testing.T) {
	_, err := New(config.VectorStoreConfig{Type: "qdrant"})
	assert.Error(t, err)
	_, err = New(config.VectorStoreConfig{Type: "pgvector"})
	assert.Error(t, err)
	_, err = New(config.VectorStoreConfig{Type: "pgvector", PGVector: &config.PGVectorConfig{Table: "movies; drop"}})
	assert.Error(t, err)
	_, err = New(config.VectorStoreConfig{Type: "faiss"})
	assert.Error(t, err)
}
