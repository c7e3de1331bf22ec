package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"cinechat/internal/catalog"
	"cinechat/internal/config"
	"cinechat/internal/embedding"
	"cinechat/internal/enrich"
	"cinechat/internal/logging"
	"cinechat/internal/recommend"
	"cinechat/internal/selfquery"
	"cinechat/internal/server"
	"cinechat/internal/service"
	"cinechat/internal/tmdb"
	"cinechat/internal/vectorstore"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the movie index and start the HTTP service",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "config.yaml", "Path to YAML config file (defaults apply if it does not exist)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	records, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", cfg.Catalog.Path, err)
	}
	docs := catalog.Documents(records)

	emb, err := embedding.New(cfg)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}
	store, err := vectorstore.New(cfg.VectorStore)
	if err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}
	defer store.Close()

	openaiTimeout := time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second
	translator := selfquery.NewOpenAITranslator(selfquery.TranslatorConfig{
		BaseURL: cfg.OpenAI.BaseURL,
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.QueryModel,
		Timeout: openaiTimeout,
	}, selfquery.MovieSchema())
	retriever := selfquery.NewRetriever(translator, emb, store, selfquery.Options{
		TopK:       cfg.Retriever.TopK,
		AllowLimit: cfg.Retriever.AllowLimit,
	})

	meta := tmdb.NewClient(tmdb.Config{
		BaseURL:       cfg.TMDB.BaseURL,
		APIKey:        cfg.TMDB.APIKey,
		Timeout:       time.Duration(cfg.TMDB.TimeoutSecs) * time.Second,
		RatePerSecond: cfg.TMDB.RatePerSecond,
		Burst:         cfg.TMDB.Burst,
	})
	enricher := enrich.New(meta, cfg.TMDB.PosterBaseURL, cfg.TMDB.Concurrency)
	composer := recommend.NewComposer(recommend.Config{
		BaseURL:     cfg.OpenAI.BaseURL,
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.ChatModel,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     openaiTimeout,
	})

	svc := service.NewMovieService(emb, store, retriever, enricher, composer)
	if err := svc.BuildIndex(ctx, docs); err != nil {
		log.Error().Err(err).Msg("index build failed")
		return err
	}

	srv := server.New(svc, server.Options{
		Port:            cfg.Server.Port,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		RequestsPerMin:  cfg.Server.RequestsPerMin,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeout) * time.Second,
		Documents:       len(docs),
	})
	return srv.ListenAndServe(ctx)
}
