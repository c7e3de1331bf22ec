package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float64 {
	s := 0.0
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestEmbedder_RanksRelatedText(t *testing.T) {
	e := NewEmbedder()
	corpus := []string{
		"Title: The Matrix\nSummary: A hacker discovers reality is a simulation",
		"Title: Finding Nemo\nSummary: A clownfish searches the ocean for his son",
		"Title: Heat\nSummary: A detective hunts a crew of bank robbers",
	}
	require.NoError(t, e.Prepare(corpus))
	assert.Equal(t, "tfidf", e.Name())
	assert.Positive(t, e.Dimension())

	ctx := context.Background()
	docs, err := e.EmbedBatch(ctx, corpus)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	q, err := e.Embed(ctx, "ocean clownfish")
	require.NoError(t, err)
	assert.Greater(t, dot(q, docs[1]), dot(q, docs[0]))
	assert.Greater(t, dot(q, docs[1]), dot(q, docs[2]))

	assert.InDelta(t, 1.0, math.Sqrt(dot(docs[0], docs[0])), 1e-5)
}

func TestEmbedder_UnknownTermsGiveZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"space opera"}))
	v, err := e.Embed(context.Background(), "zzz")
	require.NoError(t, err)
	for _, x := range v {
		assert.Zero(t, x)
	}
}

func TestEmbedder_RequiresPrepare(t *testing.T) {
	_, err := NewEmbedder().Embed(context.Background(), "anything")
	require.Error(t, err)
	require.Error(t, NewEmbedder().Prepare(nil))
}
