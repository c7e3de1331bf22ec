// Package tmdb is a small client for The Movie Database API.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"cinechat/internal/domain"
	"cinechat/internal/metrics"
)

const (
	NoSummary   = "No summary available."
	UnknownYear = "Unknown"
)

// ErrNotFound means the IMDb id has no TMDB movie.
var ErrNotFound = errors.New("tmdb: movie not found")

// StatusError is a non-2xx TMDB response.
type StatusError struct {
	Status int
	Path   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: %s returned %d", e.Path, e.Status)
}

// Client looks up movie details by IMDb id.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[domain.LiveMetadata]
}

type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.themoviedb.org/3"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := max(cfg.Burst, 1)
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		cb:      newBreaker("tmdb"),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[domain.LiveMetadata] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[domain.LiveMetadata](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// a missing movie is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
}

// Lookup resolves an IMDb id to a TMDB movie and returns its details.
// Absent fields come back as nil rating, NoSummary and UnknownYear.
func (c *Client) Lookup(ctx context.Context, imdbID string) (domain.LiveMetadata, error) {
	return c.cb.Execute(func() (domain.LiveMetadata, error) {
		return c.lookup(ctx, imdbID)
	})
}

func (c *Client) lookup(ctx context.Context, imdbID string) (domain.LiveMetadata, error) {
	var found struct {
		MovieResults []struct {
			ID *int64 `json:"id"`
		} `json:"movie_results"`
	}
	q := url.Values{"external_source": {"imdb_id"}}
	if err := c.get(ctx, "/find/"+url.PathEscape(imdbID), q, &found); err != nil {
		return domain.LiveMetadata{}, err
	}
	if len(found.MovieResults) == 0 || found.MovieResults[0].ID == nil {
		return domain.LiveMetadata{}, ErrNotFound
	}

	var details struct {
		VoteAverage *float64 `json:"vote_average"`
		Overview    *string  `json:"overview"`
		ReleaseDate string   `json:"release_date"`
	}
	path := fmt.Sprintf("/movie/%d", *found.MovieResults[0].ID)
	if err := c.get(ctx, path, nil, &details); err != nil {
		return domain.LiveMetadata{}, err
	}
	meta := domain.LiveMetadata{Rating: details.VoteAverage, Summary: NoSummary, Year: UnknownYear}
	if details.Overview != nil && *details.Overview != "" {
		meta.Summary = *details.Overview
	}
	if details.ReleaseDate != "" {
		meta.Year = prefix(details.ReleaseDate, 4)
	}
	return meta, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Status: resp.StatusCode, Path: path}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) < n {
		return s
	}
	return string(r[:n])
}
