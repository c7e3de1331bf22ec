package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// OpenAIConfig holds settings shared by the OpenAI-compatible clients.
type OpenAIConfig struct {
	BaseURL        string  `yaml:"base_url"`
	APIKeyEnv      string  `yaml:"api_key_env" validate:"required"`
	APIKey         string  `yaml:"-" validate:"required"`
	EmbeddingModel string  `yaml:"embedding_model"`
	ChatModel      string  `yaml:"chat_model" validate:"required"`
	QueryModel     string  `yaml:"query_model" validate:"required"`
	Temperature    float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	TimeoutSecs    int     `yaml:"timeout_secs" validate:"gt=0"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string `yaml:"type" validate:"oneof=openai tfidf"`
	BatchSize int    `yaml:"batch_size" validate:"gt=0"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type     string          `yaml:"type" validate:"oneof=memory qdrant pgvector"`
	Qdrant   *QdrantConfig   `yaml:"qdrant,omitempty"`
	PGVector *PGVectorConfig `yaml:"pgvector,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url" validate:"required,url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection" validate:"required"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// PGVectorConfig contains connection details for a Postgres+pgvector store.
type PGVectorConfig struct {
	DSN   string `yaml:"dsn" validate:"required"`
	Table string `yaml:"table" validate:"required,alphanum"`
}

// CatalogConfig points at the movie dataset.
type CatalogConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// RetrieverConfig configures the self-querying retriever.
type RetrieverConfig struct {
	TopK       int  `yaml:"top_k" validate:"gt=0"`
	AllowLimit bool `yaml:"allow_limit"`
}

// TMDBConfig configures the movie metadata service.
type TMDBConfig struct {
	BaseURL       string  `yaml:"base_url" validate:"required,url"`
	PosterBaseURL string  `yaml:"poster_base_url" validate:"required"`
	APIKeyEnv     string  `yaml:"api_key_env" validate:"required"`
	APIKey        string  `yaml:"-" validate:"required"`
	TimeoutSecs   int     `yaml:"timeout_secs" validate:"gt=0"`
	Concurrency   int     `yaml:"concurrency" validate:"gt=0"`
	RatePerSecond float64 `yaml:"rate_per_second" validate:"gt=0"`
	Burst         int     `yaml:"burst" validate:"gt=0"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int      `yaml:"port" validate:"gt=0,lte=65535"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	RequestsPerMin  int      `yaml:"requests_per_minute" validate:"gte=0"`
	ShutdownTimeout int      `yaml:"shutdown_timeout_secs" validate:"gt=0"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Catalog     CatalogConfig     `yaml:"catalog"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retriever   RetrieverConfig   `yaml:"retriever"`
	TMDB        TMDBConfig        `yaml:"tmdb"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
}

// Load reads a config from a specified path, applies defaults and environment
// overrides, and validates the result. If the file does not exist, defaults are used.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}
	applyConfigDefaults(cfg)
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks struct constraints and reports missing secrets by env var name.
func Validate(cfg *AppConfig) error {
	if cfg.TMDB.APIKey == "" {
		return fmt.Errorf("missing API key in env %s", cfg.TMDB.APIKeyEnv)
	}
	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("missing API key in env %s", cfg.OpenAI.APIKeyEnv)
	}
	switch cfg.VectorStore.Type {
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return errors.New("qdrant config missing")
		}
	case "pgvector":
		if cfg.VectorStore.PGVector == nil {
			return errors.New("pgvector config missing")
		}
	}
	return validator.New().Struct(cfg)
}

// Defaults returns the configuration used when no file is present.
func Defaults() *AppConfig { return defaultConfig() }

func defaultConfig() *AppConfig {
	return &AppConfig{
		Catalog: CatalogConfig{Path: "CineChatCSV_cleaned_new.csv"},
		OpenAI: OpenAIConfig{
			BaseURL:        "https://api.openai.com/v1",
			APIKeyEnv:      "OPENAI_API_KEY",
			EmbeddingModel: "text-embedding-3-small",
			ChatModel:      "gpt-4",
			QueryModel:     "gpt-3.5-turbo",
			Temperature:    0.7,
			TimeoutSecs:    60,
		},
		Embedder:    EmbedderConfig{Type: "openai", BatchSize: 32},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Retriever:   RetrieverConfig{TopK: 4},
		TMDB: TMDBConfig{
			BaseURL:       "https://api.themoviedb.org/3",
			PosterBaseURL: "https://image.tmdb.org/t/p/w500/",
			APIKeyEnv:     "TMDB_API_KEY",
			TimeoutSecs:   10,
			Concurrency:   4,
			RatePerSecond: 20,
			Burst:         10,
		},
		Server: ServerConfig{Port: 5000, RequestsPerMin: 60, ShutdownTimeout: 10},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = 32
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = 4
	}
	if q := cfg.VectorStore.Qdrant; q != nil {
		if q.Collection == "" {
			q.Collection = "movies"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}
	if p := cfg.VectorStore.PGVector; p != nil && p.Table == "" {
		p.Table = "movies"
	}
	if cfg.TMDB.Concurrency == 0 {
		cfg.TMDB.Concurrency = 1
	}
}

func applyEnv(cfg *AppConfig) error {
	cfg.OpenAI.APIKey = os.Getenv(cfg.OpenAI.APIKeyEnv)
	cfg.TMDB.APIKey = os.Getenv(cfg.TMDB.APIKeyEnv)
	if p := os.Getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", p, err)
		}
		cfg.Server.Port = port
	}
	if path := os.Getenv("CINECHAT_CATALOG"); path != "" {
		cfg.Catalog.Path = path
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if f := os.Getenv("LOG_FORMAT"); f != "" {
		cfg.Log.Format = f
	}
	return nil
}
