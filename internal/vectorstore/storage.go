package vectorstore

import (
	"context"
	"fmt"
	"time"

	"cinechat/internal/config"
	"cinechat/internal/domain"
	"cinechat/internal/vectorstore/memory"
	"cinechat/internal/vectorstore/pgvector"
	"cinechat/internal/vectorstore/qdrant"
)

// Storage persists document vectors keyed by document id and supports
// filtered similarity search.
type Storage interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, docs []domain.IndexedDocument, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, topK int, filter *domain.Filter) ([]domain.RetrievalResult, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Close() error
}

// New builds the store selected by configuration.
func New(cfg config.VectorStoreConfig) (Storage, error) {
	switch cfg.Type {
	case "memory", "":
		return memory.NewStorage(), nil
	case "qdrant":
		if cfg.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	case "pgvector":
		if cfg.PGVector == nil {
			return nil, fmt.Errorf("pgvector config missing")
		}
		return pgvector.NewStorage(pgvector.Config{DSN: cfg.PGVector.DSN, Table: cfg.PGVector.Table})
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Type)
	}
}
