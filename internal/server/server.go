// Package server exposes the chat pipeline over HTTP.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cinechat/internal/domain"
)

//go:embed static/chat.html
var static embed.FS

// ChatHandler answers a single chat message.
type ChatHandler interface {
	Handle(ctx context.Context, message string) domain.Response
}

// Options configures the HTTP server.
type Options struct {
	Port            int
	AllowedOrigins  []string
	RequestsPerMin  int
	ShutdownTimeout time.Duration
	Documents       int
	Logger          *zerolog.Logger
}

type Server struct {
	chat   ChatHandler
	opts   Options
	router chi.Router
}

func New(chat ChatHandler, opts Options) *Server {
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{chat: chat, opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	logger := log.Logger
	if s.opts.Logger != nil {
		logger = *s.opts.Logger
	}
	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(prometheusMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/", s.index)
	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(r chi.Router) {
		if s.opts.RequestsPerMin > 0 {
			r.Use(httprate.LimitByIP(s.opts.RequestsPerMin, time.Minute))
		}
		r.Get("/get", s.get)
		r.Post("/get", s.get)
	})
	return r
}

func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	page, err := static.ReadFile("static/chat.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "documents": s.opts.Documents})
}

// get reads the msg form field (body or query string). Pipeline failures are
// reported inside a 200 payload; only a missing field is a client error.
func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, domain.Failure(err))
		return
	}
	values, ok := r.Form["msg"]
	if !ok || len(values) == 0 {
		writeJSON(w, http.StatusBadRequest, domain.Failure(errors.New("missing form field: msg")))
		return
	}
	writeJSON(w, http.StatusOK, s.chat.Handle(r.Context(), values[0]))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
