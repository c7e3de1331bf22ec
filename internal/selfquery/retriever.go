package selfquery

import (
	"context"

	"github.com/rs/zerolog/log"

	"cinechat/internal/domain"
)

// Searcher is the read side of the vector store.
type Searcher interface {
	Search(ctx context.Context, vector []float32, topK int, filter *domain.Filter) ([]domain.RetrievalResult, error)
}

// Retriever runs translated queries against the vector store. It holds no
// per-request state and is safe for concurrent use.
type Retriever struct {
	translator Translator
	embedder   domain.Embedder
	store      Searcher
	topK       int
	allowLimit bool
}

// Options tunes result counts.
type Options struct {
	TopK       int
	AllowLimit bool
}

func NewRetriever(translator Translator, embedder domain.Embedder, store Searcher, opts Options) *Retriever {
	if opts.TopK <= 0 {
		opts.TopK = 4
	}
	return &Retriever{translator: translator, embedder: embedder, store: store, topK: opts.TopK, allowLimit: opts.AllowLimit}
}

// Retrieve returns ranked documents for query; no match is an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.RetrievalResult, error) {
	sq, err := r.translator.Translate(ctx, query)
	if err != nil {
		return nil, err
	}
	text := sq.Query
	if text == "" {
		text = query
	}
	k := r.topK
	if r.allowLimit && sq.Limit > 0 {
		k = sq.Limit
	}
	ev := log.Ctx(ctx).Debug().Str("semantic_query", text).Int("k", k)
	if sq.Filter != nil {
		ev = ev.Stringer("filter", sq.Filter)
	}
	ev.Msg("structured query")

	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	results, err := r.store.Search(ctx, vec, k, sq.Filter)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []domain.RetrievalResult{}
	}
	return results, nil
}
