package embedding

import (
	"fmt"
	"time"

	"cinechat/internal/config"
	"cinechat/internal/domain"
	"cinechat/internal/embedding/openai"
	"cinechat/internal/embedding/tfidf"
)

// Embedder converts free text into a numeric vector representation.
type Embedder = domain.Embedder

// New builds the embedder selected by configuration.
func New(cfg *config.AppConfig) (Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf":
		return tfidf.NewEmbedder(), nil
	case "openai", "":
		return openai.NewClient(openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKey:    cfg.OpenAI.APIKey,
			Model:     cfg.OpenAI.EmbeddingModel,
			Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			BatchSize: cfg.Embedder.BatchSize,
		})
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}
