package domain

import "context"

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever turns a free-text query into ranked documents, applying any
// metadata filters inferable from the text.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]RetrievalResult, error)
}

// MetadataSource looks up live movie metadata by IMDb id.
type MetadataSource interface {
	Lookup(ctx context.Context, imdbID string) (LiveMetadata, error)
}

// Enricher merges retrieval results with live metadata.
type Enricher interface {
	Enrich(ctx context.Context, results []RetrievalResult) []EnrichedMovie
}

// Recommender asks a completion model for further suggestions.
type Recommender interface {
	Recommend(ctx context.Context, query string, titles []string) (string, error)
}

// MovieService defines the operations exposed by the application core.
type MovieService interface {
	BuildIndex(ctx context.Context, documents []IndexedDocument) error
	Handle(ctx context.Context, message string) Response
}
