// Package enrich merges retrieval results with live movie metadata.
package enrich

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"cinechat/internal/domain"
	"cinechat/internal/metrics"
	"cinechat/internal/tmdb"
)

const (
	// DefaultPosterBase is prefixed to TMDB poster paths.
	DefaultPosterBase = "https://image.tmdb.org/t/p/w500/"
	// UnknownGenre is shown when a movie has no genres.
	UnknownGenre      = "Unknown"
	maxActors         = 3
)

// Enricher looks up every retrieved movie and builds display records.
type Enricher struct {
	source      domain.MetadataSource
	posterBase  string
	concurrency int
}

// New creates an enricher; empty posterBase and non-positive concurrency fall back to defaults.
func New(source domain.MetadataSource, posterBase string, concurrency int) *Enricher {
	if posterBase == "" {
		posterBase = DefaultPosterBase
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Enricher{source: source, posterBase: posterBase, concurrency: concurrency}
}

// Enrich returns one record per result in input order. Lookup failures
// degrade to fallback values and never drop a record.
func (e *Enricher) Enrich(ctx context.Context, results []domain.RetrievalResult) []domain.EnrichedMovie {
	out := make([]domain.EnrichedMovie, len(results))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, r := range results {
		i, r := i, r
		g.Go(func() error {
			out[i] = e.enrichOne(gctx, r.Document.Metadata)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (e *Enricher) enrichOne(ctx context.Context, md domain.MovieMetadata) domain.EnrichedMovie {
	live, err := e.source.Lookup(ctx, md.IMDbID)
	switch {
	case err == nil:
		metrics.MetadataLookups.WithLabelValues("hit").Inc()
	case errors.Is(err, tmdb.ErrNotFound):
		metrics.MetadataLookups.WithLabelValues("miss").Inc()
		live = Fallback()
	default:
		metrics.MetadataLookups.WithLabelValues("error").Inc()
		log.Ctx(ctx).Warn().Err(err).Str("imdb_id", md.IMDbID).Msg("metadata lookup failed")
		live = Fallback()
	}
	genre := md.Genres
	if genre == "" {
		genre = UnknownGenre
	}
	return domain.EnrichedMovie{
		Title:     md.Title,
		PosterURL: e.posterBase + md.PosterPath,
		Rating:    live.Rating,
		Summary:   live.Summary,
		Year:      live.Year,
		Genre:     genre,
		Actors:    LeadActors(md.Actors),
	}
}

// Fallback is the metadata used when a lookup fails.
func Fallback() domain.LiveMetadata {
	return domain.LiveMetadata{Summary: tmdb.NoSummary, Year: tmdb.UnknownYear}
}

// LeadActors keeps the first three comma separated names.
func LeadActors(actors string) string {
	parts := strings.Split(actors, ",")
	if len(parts) > maxActors {
		parts = parts[:maxActors]
	}
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return strings.Join(names, ", ")
}
