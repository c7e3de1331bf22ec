package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"cinechat/internal/domain"
	"cinechat/internal/metrics"
)

// NoResultsMessage is the notice returned when retrieval finds nothing.
const NoResultsMessage = "No results found for your query."

var _ domain.MovieService = (*MovieServiceImpl)(nil)

// IndexStore is the write side of the vector store used at startup.
type IndexStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, docs []domain.IndexedDocument, vectors [][]float32) error
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// MovieServiceImpl builds the index once and then answers chat messages.
// It holds no per-request state.
type MovieServiceImpl struct {
	embedder    domain.Embedder
	store       IndexStore
	retriever   domain.Retriever
	enricher    domain.Enricher
	recommender domain.Recommender
}

// NewMovieService wires the collaborators of the chat pipeline.
func NewMovieService(embedder domain.Embedder, store IndexStore, retriever domain.Retriever, enricher domain.Enricher, recommender domain.Recommender) *MovieServiceImpl {
	return &MovieServiceImpl{embedder: embedder, store: store, retriever: retriever, enricher: enricher, recommender: recommender}
}

// BuildIndex embeds every document and replaces the store contents with them.
func (s *MovieServiceImpl) BuildIndex(ctx context.Context, documents []domain.IndexedDocument) error {
	if len(documents) == 0 {
		return fmt.Errorf("no documents to index")
	}
	start := time.Now()
	bodies := make([]string, len(documents))
	for i, d := range documents {
		bodies[i] = d.Body
	}
	if err := s.embedder.Prepare(bodies); err != nil {
		return err
	}
	vectors, err := s.embedder.EmbedBatch(ctx, bodies)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(documents) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(documents))
	}
	dim := s.embedder.Dimension()
	if dim == 0 {
		dim = len(vectors[0])
	}
	// Clear drops the collection, so Init must follow it.
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	if err := s.store.Init(ctx, dim); err != nil {
		return err
	}
	if err := s.store.Upsert(ctx, documents, vectors); err != nil {
		return err
	}
	n, err := s.store.Count(ctx)
	if err != nil {
		return err
	}
	if n != len(documents) {
		return fmt.Errorf("index holds %d documents, expected %d", n, len(documents))
	}
	metrics.IndexedDocuments.Set(float64(n))
	log.Info().Int("documents", n).Str("embedder", s.embedder.Name()).Dur("elapsed", time.Since(start)).Msg("index built")
	return nil
}

// Handle answers one chat message. It never returns a Go error; failures
// are reported in the response payload.
func (s *MovieServiceImpl) Handle(ctx context.Context, message string) domain.Response {
	query := TitleCase(message)
	logger := log.Ctx(ctx)
	logger.Info().Str("query", query).Msg("chat query")

	results, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		return s.fail(ctx, err)
	}
	if len(results) == 0 {
		metrics.Queries.WithLabelValues("empty").Inc()
		return domain.Notice(NoResultsMessage)
	}
	movies := s.enricher.Enrich(ctx, results)
	titles := make([]string, len(results))
	for i, r := range results {
		titles[i] = r.Document.Metadata.Title
	}
	text, err := s.recommender.Recommend(ctx, query, titles)
	if err != nil {
		return s.fail(ctx, err)
	}
	metrics.Queries.WithLabelValues("recommended").Inc()
	return domain.Recommendation(text, movies)
}

func (s *MovieServiceImpl) fail(ctx context.Context, err error) domain.Response {
	metrics.Queries.WithLabelValues("error").Inc()
	log.Ctx(ctx).Error().Err(err).Msg("chat query failed")
	return domain.Failure(err)
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
